package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/kitline/kitline-backend/api/middleware"
	"github.com/kitline/kitline-backend/api/responses"
	"github.com/kitline/kitline-backend/api/validators"
	"github.com/kitline/kitline-backend/internal/catalog"
	"github.com/kitline/kitline-backend/internal/composer"
	pkgerrors "github.com/kitline/kitline-backend/pkg/errors"
	"github.com/kitline/kitline-backend/pkg/logger"
)

// CartFetch serves the club's current order list.
func CartFetch(mgr *composer.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clubID, err := requireClub(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mgr.Cart(clubID).Snapshot())
	}
}

type bufferSelectionRequest struct {
	Size            *string  `json:"size,omitempty"`
	Quantity        *int     `json:"quantity,omitempty"`
	Personalization []string `json:"personalization,omitempty"`
}

// CartBufferSelection merges fields into the club's in-progress pick for
// one product without committing anything to the order list.
func CartBufferSelection(mgr *composer.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clubID, err := requireClub(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := validators.ParsePathUUID(chi.URLParam(r, "productID"), "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bufferSelectionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		buffer := mgr.Selections(clubID)
		if payload.Size != nil {
			buffer.SetSize(productID, *payload.Size)
		}
		if payload.Quantity != nil {
			buffer.SetQuantity(productID, *payload.Quantity)
		}
		if payload.Personalization != nil {
			buffer.SetSlots(productID, payload.Personalization)
		}

		sel, _ := buffer.Get(productID)
		responses.WriteSuccess(w, selectionResponse{
			ProductID:       productID,
			Size:            sel.Size,
			Quantity:        sel.Quantity,
			Personalization: sel.Personalization,
		})
	}
}

type selectionResponse struct {
	ProductID       uuid.UUID `json:"product_id"`
	Size            *string   `json:"size,omitempty"`
	Quantity        *int      `json:"quantity,omitempty"`
	Personalization []string  `json:"personalization,omitempty"`
}

type addItemRequest struct {
	ProductID       string   `json:"product_id" validate:"required,uuid"`
	Size            *string  `json:"size,omitempty"`
	Quantity        *int     `json:"quantity,omitempty"`
	Personalization []string `json:"personalization,omitempty"`
}

type cartMutationResponse struct {
	Line *composer.LineItem `json:"line,omitempty"`
	Cart composer.Snapshot  `json:"cart"`
}

// CartAddItem commits a product to the order list on the simple path.
// Fields sent here merge with anything already buffered for the product,
// so a client can stage a pick across requests and commit with the last
// one.
func CartAddItem(catalogSvc catalog.Service, mgr *composer.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clubID, err := requireClub(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := catalogSvc.LoadProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		buffer := mgr.Selections(clubID)
		if payload.Size != nil {
			buffer.SetSize(productID, *payload.Size)
		}
		if payload.Quantity != nil {
			buffer.SetQuantity(productID, *payload.Quantity)
		}
		if payload.Personalization != nil {
			buffer.SetSlots(productID, payload.Personalization)
		}

		sel, _ := buffer.Get(productID)
		line, err := composer.CommitSelection(product, sel)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart := mgr.Cart(clubID)
		stored := cart.Add(line)
		buffer.Clear(productID)

		responses.WriteSuccessStatus(w, http.StatusCreated, cartMutationResponse{
			Line: &stored,
			Cart: cart.Snapshot(),
		})
	}
}

type allocationRequest struct {
	ProductID    string                  `json:"product_id" validate:"required,uuid"`
	Quantity     int                     `json:"quantity" validate:"required,gt=0"`
	Distribution []allocationSizeRequest `json:"distribution" validate:"required,min=1,dive"`
}

type allocationSizeRequest struct {
	Size            string   `json:"size" validate:"required"`
	Count           int      `json:"count" validate:"required,gt=0"`
	Personalization []string `json:"personalization" validate:"required,min=1,dive,required"`
}

// CartAllocate runs the multi-size flow in one request: total quantity,
// per-size distribution, one name per unit. The whole allocation commits
// or nothing does.
func CartAllocate(catalogSvc catalog.Service, mgr *composer.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clubID, err := requireClub(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload allocationRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		productID, err := uuid.Parse(payload.ProductID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid product id"))
			return
		}

		product, err := catalogSvc.LoadProduct(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		alloc, err := composer.NewAllocation(product)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := alloc.SetRequestedQuantity(payload.Quantity); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		for _, entry := range payload.Distribution {
			if err := alloc.SetSizeCount(entry.Size, entry.Count); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if err := alloc.Proceed(); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		for _, entry := range payload.Distribution {
			for i, name := range entry.Personalization {
				if err := alloc.SetSlot(entry.Size, i, name); err != nil {
					responses.WriteError(r.Context(), logg, w, err)
					return
				}
			}
		}

		lines, err := alloc.Commit()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart := mgr.Cart(clubID)
		added := make([]composer.LineItem, 0, len(lines))
		for _, line := range lines {
			added = append(added, cart.Add(line))
		}
		mgr.Selections(clubID).Clear(productID)

		responses.WriteSuccessStatus(w, http.StatusCreated, struct {
			Lines []composer.LineItem `json:"lines"`
			Cart  composer.Snapshot   `json:"cart"`
		}{Lines: added, Cart: cart.Snapshot()})
	}
}

type updateItemRequest struct {
	Quantity *int               `json:"quantity,omitempty"`
	Size     *string            `json:"size,omitempty"`
	Slot     *updateSlotRequest `json:"slot,omitempty"`
}

type updateSlotRequest struct {
	Index int    `json:"index" validate:"min=0"`
	Value string `json:"value"`
}

// CartUpdateItem edits one line in place: quantity, size or a single
// personalization slot. Edits apply in that order within one request.
func CartUpdateItem(mgr *composer.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clubID, err := requireClub(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParsePathInt(chi.URLParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if payload.Quantity == nil && payload.Size == nil && payload.Slot == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "nothing to update"))
			return
		}

		cart := mgr.Cart(clubID)
		var line composer.LineItem
		if payload.Quantity != nil {
			if line, err = cart.UpdateQuantity(itemID, *payload.Quantity); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if payload.Size != nil {
			if line, err = cart.UpdateSize(itemID, *payload.Size); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}
		if payload.Slot != nil {
			if line, err = cart.UpdateSlot(itemID, payload.Slot.Index, payload.Slot.Value); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		responses.WriteSuccess(w, cartMutationResponse{
			Line: &line,
			Cart: cart.Snapshot(),
		})
	}
}

// CartRemoveItem deletes one line from the order list.
func CartRemoveItem(mgr *composer.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clubID, err := requireClub(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		itemID, err := validators.ParsePathInt(chi.URLParam(r, "itemID"), "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		cart := mgr.Cart(clubID)
		if err := cart.Remove(itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cartMutationResponse{Cart: cart.Snapshot()})
	}
}

func requireClub(r *http.Request) (uuid.UUID, error) {
	clubID := middleware.ClubIDFromContext(r.Context())
	if clubID == uuid.Nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "club context missing")
	}
	return clubID, nil
}
