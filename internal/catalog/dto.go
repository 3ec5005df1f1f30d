package catalog

import (
	"github.com/google/uuid"

	"github.com/kitline/kitline-backend/pkg/db/models"
	"github.com/kitline/kitline-backend/pkg/types"
)

// ProductDTO is the catalog payload returned to clients.
type ProductDTO struct {
	ID           uuid.UUID   `json:"id"`
	Name         string      `json:"name"`
	Slug         string      `json:"slug"`
	Price        types.Money `json:"price"`
	PriceCents   int         `json:"price_cents"`
	Images       []string    `json:"images"`
	Sizes        []string    `json:"sizes"`
	Customizable bool        `json:"customizable"`
}

func newProductDTO(p *models.Product) *ProductDTO {
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img.URL)
	}
	sizes := make([]string, 0, len(p.Sizes))
	sizes = append(sizes, p.Sizes...)
	return &ProductDTO{
		ID:           p.ID,
		Name:         p.Name,
		Slug:         p.Slug,
		Price:        types.NewMoney(int64(p.PriceCents), p.Currency),
		PriceCents:   p.PriceCents,
		Images:       images,
		Sizes:        sizes,
		Customizable: p.Customizable,
	}
}
