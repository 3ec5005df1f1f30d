package drafts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kitline/kitline-backend/internal/composer"
	pkgerrors "github.com/kitline/kitline-backend/pkg/errors"
)

// kv is the slice of the redis client the store needs.
type kv interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	DraftKey(clubID string) string
}

// draft is the stored handoff payload.
type draft struct {
	ClubID  uuid.UUID           `json:"club_id"`
	Items   []composer.LineItem `json:"items"`
	SavedAt time.Time           `json:"saved_at"`
}

// Store holds one draft slot per club: a cart snapshot parked between
// composing and confirming an order. Each save overwrites the previous
// slot; a claim is read-once and clears the slot.
type Store struct {
	kv  kv
	ttl time.Duration
}

// NewStore builds a draft store with the configured slot TTL.
func NewStore(kv kv, ttl time.Duration) (*Store, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Store{kv: kv, ttl: ttl}, nil
}

// Save parks the cart snapshot in the club's draft slot.
func (s *Store) Save(ctx context.Context, clubID uuid.UUID, items []composer.LineItem) error {
	if clubID == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "club id is required")
	}
	if len(items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "draft must contain at least one item")
	}

	payload, err := json.Marshal(draft{
		ClubID:  clubID,
		Items:   items,
		SavedAt: time.Now().UTC(),
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode draft")
	}
	if err := s.kv.Set(ctx, s.kv.DraftKey(clubID.String()), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save draft")
	}
	return nil
}

// Claim returns the parked snapshot and clears the slot so a second
// claim finds nothing. A missing or expired slot reports ok=false.
func (s *Store) Claim(ctx context.Context, clubID uuid.UUID) ([]composer.LineItem, bool, error) {
	if clubID == uuid.Nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "club id is required")
	}

	key := s.kv.DraftKey(clubID.String())
	raw, err := s.kv.Get(ctx, key)
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, false, nil
		}
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load draft")
	}

	var stored draft
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		_ = s.kv.Del(ctx, key)
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode draft")
	}
	if err := s.kv.Del(ctx, key); err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear draft")
	}
	return stored.Items, true, nil
}
