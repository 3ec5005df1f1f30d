package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kitline/kitline-backend/pkg/db/models"
	"github.com/kitline/kitline-backend/pkg/enums"
	pkgerrors "github.com/kitline/kitline-backend/pkg/errors"
	"github.com/kitline/kitline-backend/pkg/logger"
	"github.com/kitline/kitline-backend/pkg/pagination"
	"github.com/kitline/kitline-backend/pkg/types"
)

// SubmitItem is one cart line handed over for persistence.
type SubmitItem struct {
	ProductID       uuid.UUID
	Name            string
	UnitPriceCents  int
	Size            string
	Quantity        int
	Customizable    bool
	Personalization []string
}

// SubmitInput carries a finished cart plus delivery details.
type SubmitInput struct {
	ClubID  uuid.UUID
	Address types.Address
	Items   []SubmitItem
}

// Service persists submitted orders and serves order history.
type Service interface {
	Submit(ctx context.Context, input SubmitInput) (*OrderDTO, error)
	List(ctx context.Context, clubID uuid.UUID, params pagination.Params) (*OrderListResult, error)
	Get(ctx context.Context, clubID, orderID uuid.UUID) (*OrderDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     OrderRepository
	tx       txRunner
	logg     *logger.Logger
	currency string
}

// NewService builds the orders service.
func NewService(repo OrderRepository, tx txRunner, logg *logger.Logger, currency string) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if currency == "" {
		currency = "DKK"
	}
	return &service{repo: repo, tx: tx, logg: logg, currency: currency}, nil
}

// Submit validates the handed-over cart, derives the order aggregates and
// persists the order with its lines in one transaction. The item count is
// the unit sum across lines; the player count is the number of filled
// personalization slots.
func (s *service) Submit(ctx context.Context, input SubmitInput) (*OrderDTO, error) {
	if input.ClubID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "club id is required")
	}
	if len(input.Items) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order must contain at least one item")
	}
	address := input.Address.Normalized()
	if field := address.Validate(); field != "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("delivery address is missing %s", field))
	}

	order := models.Order{
		ClubID:          input.ClubID,
		Status:          enums.OrderStatusPending,
		Currency:        s.currency,
		DeliveryAddress: &address,
	}
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %d has a non-positive quantity", i))
		}
		if item.Name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("item %d has no product name", i))
		}
		if item.Customizable && len(item.Personalization) != item.Quantity {
			return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "personalization out of step with quantity").
				WithDetails(map[string]any{
					"item":     i,
					"quantity": item.Quantity,
					"slots":    len(item.Personalization),
				})
		}

		lineTotal := item.UnitPriceCents * item.Quantity
		order.ItemCount += item.Quantity
		order.TotalCents += lineTotal
		for _, slot := range item.Personalization {
			if strings.TrimSpace(slot) != "" {
				order.PlayerCount++
			}
		}
		order.Products = append(order.Products, models.OrderProduct{
			ProductID:       item.ProductID,
			Name:            item.Name,
			UnitPriceCents:  item.UnitPriceCents,
			Size:            item.Size,
			Quantity:        item.Quantity,
			Personalization: item.Personalization,
			LineTotalCents:  lineTotal,
		})
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		return s.repo.WithTx(tx).Create(ctx, &order)
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist order")
	}

	if s.logg != nil {
		ctx = s.logg.WithOrderID(ctx, order.ID.String())
		s.logg.Info(ctx, "order submitted")
	}
	return newOrderDTO(&order), nil
}

// List returns one cursor page of the club's order history, newest first.
func (s *service) List(ctx context.Context, clubID uuid.UUID, params pagination.Params) (*OrderListResult, error) {
	if clubID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "club id is required")
	}
	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListByClub(ctx, clubID, cursor, pagination.LimitWithBuffer(params.Limit))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}

	result := &OrderListResult{Orders: make([]OrderDTO, 0, len(rows))}
	if len(rows) > limit {
		rows = rows[:limit]
		result.HasMore = true
		last := rows[len(rows)-1]
		result.NextCursor = pagination.EncodeCursor(pagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	for i := range rows {
		result.Orders = append(result.Orders, *newOrderDTO(&rows[i]))
	}
	return result, nil
}

// Get loads one order scoped to the requesting club.
func (s *service) Get(ctx context.Context, clubID, orderID uuid.UUID) (*OrderDTO, error) {
	if clubID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "club id is required")
	}
	if orderID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	row, err := s.repo.FindByIDAndClub(ctx, orderID, clubID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load order")
	}
	return newOrderDTO(row), nil
}
