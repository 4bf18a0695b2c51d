package entities

import (
	"context"

	"github.com/angelmondragon/carbon-ledger/pkg/db/models"
	"gorm.io/gorm"
)

// Repository reads and updates entity rows.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Entity, error) {
	var entity models.Entity
	if err := r.db.WithContext(ctx).First(&entity, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Entity{}).
		Where("id = ?", id).
		Count(&count).
		Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// UpdateCarbon overwrites both carbon totals of the entity.
func (r *Repository) UpdateCarbon(ctx context.Context, id int64, offset, cost float64) error {
	return r.db.WithContext(ctx).
		Model(&models.Entity{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"carbon_offset": offset,
			"carbon_cost":   cost,
		}).
		Error
}
