package purchases

import (
	"context"
	"time"

	"github.com/angelmondragon/carbon-ledger/pkg/db/models"
	"gorm.io/gorm"
)

// Repository persists purchase headers and their line items.
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

// FindByID loads the purchase header.
func (r *Repository) FindByID(ctx context.Context, id int64) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := r.db.WithContext(ctx).First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

// Exists reports whether a purchase header with id is present.
func (r *Repository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ?", id).
		Count(&count).
		Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts the header and fills in the generated id.
func (r *Repository) Create(ctx context.Context, purchase *models.Purchase) (*models.Purchase, error) {
	if err := r.db.WithContext(ctx).Create(purchase).Error; err != nil {
		return nil, err
	}
	return purchase, nil
}

// UpdateHeader overwrites buyer, seller, price and carbon cost. A nil carbon
// cost is written as NULL.
func (r *Repository) UpdateHeader(ctx context.Context, id int64, buyrID, selrID int64, price float64, carbonCost *float64) error {
	values := map[string]any{
		"buyr_id":     buyrID,
		"selr_id":     selrID,
		"price":       price,
		"carbon_cost": nil,
	}
	if carbonCost != nil {
		values["carbon_cost"] = *carbonCost
	}
	return r.db.WithContext(ctx).
		Model(&models.Purchase{}).
		Where("id = ?", id).
		Updates(values).
		Error
}

// ListByBuyerBetween returns the buyer's purchases stamped strictly between
// start and end.
func (r *Repository) ListByBuyerBetween(ctx context.Context, buyrID int64, start, end time.Time) ([]models.Purchase, error) {
	var rows []models.Purchase
	err := r.db.WithContext(ctx).
		Where("buyr_id = ? AND ts > ? AND ts < ?", buyrID, start, end).
		Order("ts ASC, id ASC").
		Find(&rows).
		Error
	return rows, err
}

// ListLineItems returns every products_purchased row of the purchase.
func (r *Repository) ListLineItems(ctx context.Context, prchID int64) ([]models.ProductsPurchased, error) {
	var rows []models.ProductsPurchased
	err := r.db.WithContext(ctx).
		Where("prch_id = ?", prchID).
		Order("prod_id ASC").
		Find(&rows).
		Error
	return rows, err
}

// InsertLineItems bulk-inserts items stamped with prchID.
func (r *Repository) InsertLineItems(ctx context.Context, prchID int64, items []models.ProductsPurchased) error {
	if len(items) == 0 {
		return nil
	}
	rows := make([]models.ProductsPurchased, len(items))
	for i, item := range items {
		item.PrchID = prchID
		rows[i] = item
	}
	return r.db.WithContext(ctx).Create(&rows).Error
}

// ReplaceLineItems deletes every line item of the purchase and inserts items.
// Nothing is diffed; resubmitting the same set rewrites it.
func (r *Repository) ReplaceLineItems(ctx context.Context, prchID int64, items []models.ProductsPurchased) error {
	if err := r.db.WithContext(ctx).
		Where("prch_id = ?", prchID).
		Delete(&models.ProductsPurchased{}).
		Error; err != nil {
		return err
	}
	return r.InsertLineItems(ctx, prchID, items)
}
