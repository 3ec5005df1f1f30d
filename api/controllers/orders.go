package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kitline/kitline-backend/api/responses"
	"github.com/kitline/kitline-backend/api/validators"
	"github.com/kitline/kitline-backend/internal/composer"
	"github.com/kitline/kitline-backend/internal/orders"
	"github.com/kitline/kitline-backend/pkg/logger"
	"github.com/kitline/kitline-backend/pkg/pagination"
	"github.com/kitline/kitline-backend/pkg/types"
)

type submitOrderRequest struct {
	DeliveryAddress submitAddressRequest `json:"delivery_address" validate:"required"`
}

type submitAddressRequest struct {
	Name       string  `json:"name" validate:"required"`
	Line1      string  `json:"line1" validate:"required"`
	Line2      *string `json:"line2,omitempty"`
	City       string  `json:"city" validate:"required"`
	PostalCode string  `json:"postal_code" validate:"required"`
	Country    string  `json:"country,omitempty"`
	Phone      *string `json:"phone,omitempty"`
}

// OrdersSubmit turns the club's cart into a persisted order. The cart is
// cleared only after the order lands.
func OrdersSubmit(mgr *composer.Manager, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clubID, err := requireClub(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload submitOrderRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := mgr.Submit(r.Context(), clubID, types.Address{
			Name:       payload.DeliveryAddress.Name,
			Line1:      payload.DeliveryAddress.Line1,
			Line2:      payload.DeliveryAddress.Line2,
			City:       payload.DeliveryAddress.City,
			PostalCode: payload.DeliveryAddress.PostalCode,
			Country:    payload.DeliveryAddress.Country,
			Phone:      payload.DeliveryAddress.Phone,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, order)
	}
}

// OrdersList serves the club's order history, newest first.
func OrdersList(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clubID, err := requireClub(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), clubID, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// OrdersDetail serves one order scoped to the requesting club.
func OrdersDetail(svc orders.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clubID, err := requireClub(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		orderID, err := validators.ParsePathUUID(chi.URLParam(r, "orderID"), "orderID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := svc.Get(r.Context(), clubID, orderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
