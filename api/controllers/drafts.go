package controllers

import (
	"net/http"

	"github.com/kitline/kitline-backend/api/responses"
	"github.com/kitline/kitline-backend/internal/composer"
	"github.com/kitline/kitline-backend/internal/drafts"
	pkgerrors "github.com/kitline/kitline-backend/pkg/errors"
	"github.com/kitline/kitline-backend/pkg/logger"
)

// CartDraftSave parks the current order list in the club's draft slot so
// a confirmation surface can pick it up later. The cart itself stays
// untouched; only a successful submission clears it.
func CartDraftSave(mgr *composer.Manager, store *drafts.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clubID, err := requireClub(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items := mgr.Cart(clubID).Items()
		if err := store.Save(r.Context(), clubID, items); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"saved": true,
			"items": len(items),
		})
	}
}

// CartDraftClaim pulls the parked snapshot into the club's cart. The
// slot is read-once; a second claim finds nothing.
func CartDraftClaim(mgr *composer.Manager, store *drafts.Store, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clubID, err := requireClub(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, ok, err := store.Claim(r.Context(), clubID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if !ok {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeNotFound, "no draft to claim"))
			return
		}

		snapshot := mgr.Cart(clubID).Restore(items)
		responses.WriteSuccess(w, snapshot)
	}
}
