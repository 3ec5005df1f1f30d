package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/kitline/kitline-backend/api/responses"
	pkgerrors "github.com/kitline/kitline-backend/pkg/errors"
	"github.com/kitline/kitline-backend/pkg/logger"
)

const clubIDHeader = "X-Club-Id"

// ClubContext resolves the acting club from the X-Club-Id header and
// stores it on the request context. Composer and order routes refuse to
// run without it; the catalog stays open.
func ClubContext(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw := strings.TrimSpace(r.Header.Get(clubIDHeader))
			if raw == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "X-Club-Id header required"))
				return
			}
			clubID, err := uuid.Parse(raw)
			if err != nil || clubID == uuid.Nil {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "X-Club-Id header must be a uuid"))
				return
			}

			ctx := WithClubID(r.Context(), clubID)
			if logg != nil {
				ctx = logg.WithClubID(ctx, clubID.String())
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
