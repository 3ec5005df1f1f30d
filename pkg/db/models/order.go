package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/kitline/kitline-backend/pkg/enums"
	"github.com/kitline/kitline-backend/pkg/types"
)

// Order is the immutable snapshot produced by submission. The composer
// never mutates it afterward.
type Order struct {
	ID              uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ClubID          uuid.UUID         `gorm:"column:club_id;type:uuid;not null;index"`
	Status          enums.OrderStatus `gorm:"column:status;not null;default:'pending'"`
	ItemCount       int               `gorm:"column:item_count;not null"`
	PlayerCount     int               `gorm:"column:player_count;not null"`
	TotalCents      int               `gorm:"column:total_cents;not null"`
	Currency        string            `gorm:"column:currency;not null;default:'DKK'"`
	DeliveryAddress *types.Address    `gorm:"column:delivery_address;type:jsonb;serializer:json"`
	Products        []OrderProduct    `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt       time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
