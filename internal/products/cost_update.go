package products

import (
	pkgerrors "github.com/angelmondragon/carbon-ledger/pkg/errors"
)

// CostUpdate is one of EntityCostUpdate, ProductCostUpdate or
// CompanyProductCostUpdate. Which row it targets is decided once, when the
// request is parsed.
type CostUpdate interface {
	isCostUpdate()
}

// EntityCostUpdate sets entity.carbon_cost (only comp_id given).
type EntityCostUpdate struct {
	ID   int64
	Cost float64
}

// ProductCostUpdate sets product.carbon_cost (only prod_id given).
type ProductCostUpdate struct {
	ID   int64
	Cost float64
}

// CompanyProductCostUpdate sets company_product.carbon_cost (both ids given).
type CompanyProductCostUpdate struct {
	CompID int64
	ProdID int64
	Cost   float64
}

func (EntityCostUpdate) isCostUpdate()         {}
func (ProductCostUpdate) isCostUpdate()        {}
func (CompanyProductCostUpdate) isCostUpdate() {}

// NewCostUpdate picks the update target from which ids are present.
func NewCostUpdate(compID, prodID *int64, cost float64) (CostUpdate, error) {
	switch {
	case compID != nil && prodID != nil:
		return CompanyProductCostUpdate{CompID: *compID, ProdID: *prodID, Cost: cost}, nil
	case compID != nil:
		return EntityCostUpdate{ID: *compID, Cost: cost}, nil
	case prodID != nil:
		return ProductCostUpdate{ID: *prodID, Cost: cost}, nil
	default:
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "comp_id or prod_id is required")
	}
}
