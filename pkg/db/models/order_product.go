package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// OrderProduct is one normalized line of a submitted order. Name and unit
// price are denormalized copies taken when the line item was committed, so
// later catalog edits never rewrite order history. Personalization entries
// stay raw strings end to end.
type OrderProduct struct {
	ID              uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID         uuid.UUID      `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID       uuid.UUID      `gorm:"column:product_id;type:uuid;not null"`
	Name            string         `gorm:"column:name;not null"`
	UnitPriceCents  int            `gorm:"column:unit_price_cents;not null"`
	Size            string         `gorm:"column:size;not null;default:''"`
	Quantity        int            `gorm:"column:quantity;not null"`
	Personalization pq.StringArray `gorm:"column:personalization;type:text[]"`
	LineTotalCents  int            `gorm:"column:line_total_cents;not null"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime"`
}
