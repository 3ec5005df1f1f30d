package orders

import (
	"time"

	"github.com/google/uuid"

	"github.com/kitline/kitline-backend/pkg/db/models"
	"github.com/kitline/kitline-backend/pkg/enums"
	"github.com/kitline/kitline-backend/pkg/types"
)

// OrderDTO is the order payload returned to clients.
type OrderDTO struct {
	ID              uuid.UUID         `json:"id"`
	Status          enums.OrderStatus `json:"status"`
	ItemCount       int               `json:"item_count"`
	PlayerCount     int               `json:"player_count"`
	Total           types.Money       `json:"total"`
	TotalCents      int               `json:"total_cents"`
	Currency        string            `json:"currency"`
	DeliveryAddress *types.Address    `json:"delivery_address,omitempty"`
	Products        []OrderProductDTO `json:"products"`
	CreatedAt       time.Time         `json:"created_at"`
}

// OrderProductDTO is one order line in the response payload.
type OrderProductDTO struct {
	ID              uuid.UUID   `json:"id"`
	ProductID       uuid.UUID   `json:"product_id"`
	Name            string      `json:"name"`
	UnitPrice       types.Money `json:"unit_price"`
	UnitPriceCents  int         `json:"unit_price_cents"`
	Size            string      `json:"size,omitempty"`
	Quantity        int         `json:"quantity"`
	Personalization []string    `json:"personalization,omitempty"`
	LineTotalCents  int         `json:"line_total_cents"`
}

// OrderListResult is one cursor page of orders.
type OrderListResult struct {
	Orders     []OrderDTO `json:"orders"`
	NextCursor string     `json:"next_cursor,omitempty"`
	HasMore    bool       `json:"has_more"`
}

func newOrderDTO(o *models.Order) *OrderDTO {
	products := make([]OrderProductDTO, 0, len(o.Products))
	for i := range o.Products {
		line := &o.Products[i]
		products = append(products, OrderProductDTO{
			ID:              line.ID,
			ProductID:       line.ProductID,
			Name:            line.Name,
			UnitPrice:       types.NewMoney(int64(line.UnitPriceCents), o.Currency),
			UnitPriceCents:  line.UnitPriceCents,
			Size:            line.Size,
			Quantity:        line.Quantity,
			Personalization: line.Personalization,
			LineTotalCents:  line.LineTotalCents,
		})
	}
	return &OrderDTO{
		ID:              o.ID,
		Status:          o.Status,
		ItemCount:       o.ItemCount,
		PlayerCount:     o.PlayerCount,
		Total:           types.NewMoney(int64(o.TotalCents), o.Currency),
		TotalCents:      o.TotalCents,
		Currency:        o.Currency,
		DeliveryAddress: o.DeliveryAddress,
		Products:        products,
		CreatedAt:       o.CreatedAt,
	}
}
