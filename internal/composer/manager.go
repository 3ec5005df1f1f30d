package composer

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/kitline/kitline-backend/internal/orders"
	pkgerrors "github.com/kitline/kitline-backend/pkg/errors"
	"github.com/kitline/kitline-backend/pkg/types"
)

// OrderPlacer is the slice of the orders service the manager needs to
// hand a finished cart off for persistence.
type OrderPlacer interface {
	Submit(ctx context.Context, input orders.SubmitInput) (*orders.OrderDTO, error)
}

type session struct {
	cart       *Cart
	selections *SelectionBuffer
}

// Manager owns one cart and one selection buffer per club session and
// orchestrates submission. Sessions are created lazily on first touch.
type Manager struct {
	mu       sync.Mutex
	placer   OrderPlacer
	sessions map[uuid.UUID]*session
}

// NewManager builds a manager backed by the provided order placer.
func NewManager(placer OrderPlacer) (*Manager, error) {
	if placer == nil {
		return nil, fmt.Errorf("order placer required")
	}
	return &Manager{
		placer:   placer,
		sessions: make(map[uuid.UUID]*session),
	}, nil
}

// Cart returns the club's order list, creating the session if needed.
func (m *Manager) Cart(clubID uuid.UUID) *Cart {
	return m.session(clubID).cart
}

// Selections returns the club's selection buffer.
func (m *Manager) Selections(clubID uuid.UUID) *SelectionBuffer {
	return m.session(clubID).selections
}

// Submit hands the club's cart to the orders service. The cart and
// selection buffer are cleared only after the order is persisted; any
// failure leaves both exactly as they were so the club can retry.
func (m *Manager) Submit(ctx context.Context, clubID uuid.UUID, address types.Address) (*orders.OrderDTO, error) {
	sess := m.session(clubID)
	items := sess.cart.Items()
	if len(items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	input := orders.SubmitInput{
		ClubID:  clubID,
		Address: address,
		Items:   make([]orders.SubmitItem, 0, len(items)),
	}
	for _, item := range items {
		input.Items = append(input.Items, orders.SubmitItem{
			ProductID:       item.ProductID,
			Name:            item.Name,
			UnitPriceCents:  item.UnitPriceCents,
			Size:            item.Size,
			Quantity:        item.Quantity,
			Customizable:    item.Customizable,
			Personalization: item.Personalization,
		})
	}

	dto, err := m.placer.Submit(ctx, input)
	if err != nil {
		return nil, err
	}

	sess.cart.Clear()
	sess.selections.Reset()
	return dto, nil
}

func (m *Manager) session(clubID uuid.UUID) *session {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[clubID]
	if !ok {
		sess = &session{
			cart:       NewCart(),
			selections: NewSelectionBuffer(),
		}
		m.sessions[clubID] = sess
	}
	return sess
}
