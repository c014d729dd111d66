package stocks

import (
	"context"

	"github.com/bankdki/stock-api/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes stock persistence operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a stocks repo bound to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts a new stock row.
func (r *Repository) Create(ctx context.Context, stock *models.Stock) error {
	return r.db.WithContext(ctx).Create(stock).Error
}

// FindByID loads a stock by its UUID.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Stock, error) {
	var stock models.Stock
	if err := r.db.WithContext(ctx).First(&stock, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

// List returns every stock row. There is no pagination surface.
func (r *Repository) List(ctx context.Context) ([]models.Stock, error) {
	var all []models.Stock
	if err := r.db.WithContext(ctx).Find(&all).Error; err != nil {
		return nil, err
	}
	return all, nil
}

// Update persists the full row state of an already-loaded stock.
func (r *Repository) Update(ctx context.Context, stock *models.Stock) error {
	return r.db.WithContext(ctx).Save(stock).Error
}

// Delete removes the stock row.
func (r *Repository) Delete(ctx context.Context, stock *models.Stock) error {
	return r.db.WithContext(ctx).Delete(stock).Error
}
