package orders

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kitline/kitline-backend/pkg/db/models"
	"github.com/kitline/kitline-backend/pkg/pagination"
)

// OrderRepository defines the persistence surface for submitted orders.
type OrderRepository interface {
	WithTx(tx *gorm.DB) OrderRepository
	Create(ctx context.Context, order *models.Order) error
	ListByClub(ctx context.Context, clubID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error)
	FindByIDAndClub(ctx context.Context, id, clubID uuid.UUID) (*models.Order, error)
}

// Repository is the GORM-backed order store.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the given transaction handle.
func (r *Repository) WithTx(tx *gorm.DB) OrderRepository {
	return &Repository{db: tx}
}

// Create persists the order and its lines in one insert chain.
func (r *Repository) Create(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

// ListByClub returns the club's orders newest-first. The cursor pins the
// page boundary on (created_at, id) so pages stay stable under inserts.
func (r *Repository) ListByClub(ctx context.Context, clubID uuid.UUID, cursor *pagination.Cursor, limit int) ([]models.Order, error) {
	query := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("club_id = ?", clubID)

	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	var rows []models.Order
	err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindByIDAndClub loads one order scoped to its owning club.
func (r *Repository) FindByIDAndClub(ctx context.Context, id, clubID uuid.UUID) (*models.Order, error) {
	var row models.Order
	err := r.db.WithContext(ctx).
		Preload("Products", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC, id ASC")
		}).
		Where("id = ? AND club_id = ?", id, clubID).
		First(&row).Error
	if err != nil {
		return nil, err
	}
	return &row, nil
}
