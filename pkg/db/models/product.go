package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Product is a catalog entry. Immutable for the duration of a session;
// the composer denormalizes name and price at add-time.
type Product struct {
	ID           uuid.UUID      `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string         `gorm:"column:name;not null"`
	Slug         string         `gorm:"column:slug;not null;uniqueIndex"`
	PriceCents   int            `gorm:"column:price_cents;not null"`
	Currency     string         `gorm:"column:currency;not null;default:'DKK'"`
	Sizes        pq.StringArray `gorm:"column:sizes;type:text[]"`
	Customizable bool           `gorm:"column:customizable;not null;default:false"`
	IsActive     bool           `gorm:"column:is_active;not null;default:true"`
	Position     int            `gorm:"column:position;not null;default:0"`
	Images       []ProductImage `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time      `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time      `gorm:"column:updated_at;autoUpdateTime"`
}

// HasSizes reports whether the product declares a size range.
func (p Product) HasSizes() bool {
	return len(p.Sizes) > 0
}

// HasSize reports whether the given size label is declared on the product.
func (p Product) HasSize(size string) bool {
	for _, s := range p.Sizes {
		if s == size {
			return true
		}
	}
	return false
}
