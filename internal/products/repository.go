package products

import (
	"context"

	"github.com/angelmondragon/carbon-ledger/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists products, per-company overrides, and the carbon_cost
// column of whichever row a cost update targets.
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

func (r *Repository) FindProduct(ctx context.Context, id int64) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) FindCompanyProduct(ctx context.Context, compID, prodID int64) (*models.CompanyProduct, error) {
	var row models.CompanyProduct
	if err := r.db.WithContext(ctx).
		Where("comp_id = ? AND prod_id = ?", compID, prodID).
		First(&row).
		Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// CreateCompanyProduct inserts a per-company override.
func (r *Repository) CreateCompanyProduct(ctx context.Context, row *models.CompanyProduct) error {
	return r.db.WithContext(ctx).Create(row).Error
}

// The Update* methods report how many rows matched; zero is not an error.

func (r *Repository) UpdateEntityCost(ctx context.Context, id int64, cost float64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Entity{}).
		Where("id = ?", id).
		Update("carbon_cost", cost)
	return res.RowsAffected, res.Error
}

func (r *Repository) UpdateProductCost(ctx context.Context, id int64, cost float64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("carbon_cost", cost)
	return res.RowsAffected, res.Error
}

func (r *Repository) UpdateCompanyProductCost(ctx context.Context, compID, prodID int64, cost float64) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&models.CompanyProduct{}).
		Where("comp_id = ? AND prod_id = ?", compID, prodID).
		Update("carbon_cost", cost)
	return res.RowsAffected, res.Error
}
