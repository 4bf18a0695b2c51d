package products

import "github.com/angelmondragon/carbon-ledger/pkg/db/models"

// CostDTO is the effective carbon cost of a product, optionally for one
// company. CompID is null when the base product row answered.
type CostDTO struct {
	CompID     *int64  `json:"comp_id"`
	ProdID     int64   `json:"prod_id"`
	CarbonCost float64 `json:"carbon_cost"`
}

// ProductDTO is a base product row.
type ProductDTO struct {
	ID         int64   `json:"id"`
	ItemName   string  `json:"item_name"`
	CarbonCost float64 `json:"carbon_cost"`
}

func NewProductDTO(p models.Product) *ProductDTO {
	return &ProductDTO{ID: p.ID, ItemName: p.ItemName, CarbonCost: p.CarbonCost}
}
