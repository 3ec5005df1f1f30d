package middleware

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const ctxClubID contextKey = "club_id"

// ClubIDFromContext returns the club acting on this request, or uuid.Nil.
func ClubIDFromContext(ctx context.Context) uuid.UUID {
	if ctx == nil {
		return uuid.Nil
	}
	if v, ok := ctx.Value(ctxClubID).(uuid.UUID); ok {
		return v
	}
	return uuid.Nil
}

// WithClubID injects the club identifier into the context.
func WithClubID(ctx context.Context, clubID uuid.UUID) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClubID, clubID)
}
