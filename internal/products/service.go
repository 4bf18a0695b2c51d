package products

import (
	"context"
	"fmt"

	"github.com/angelmondragon/carbon-ledger/pkg/db"
	"github.com/angelmondragon/carbon-ledger/pkg/db/models"
	pkgerrors "github.com/angelmondragon/carbon-ledger/pkg/errors"
	"gorm.io/gorm"
)

const (
	companyProductNotFound = "comp_id, prod_id not in database"
	productNotFound        = "product id not in database"
)

// Service exposes carbon cost lookups and writes for products.
type Service interface {
	Get(ctx context.Context, compID, prodID int64) (*CostDTO, error)
	GetBase(ctx context.Context, prodID int64) (*ProductDTO, error)
	Add(ctx context.Context, input AddInput) error
	UpdateCost(ctx context.Context, update CostUpdate) error
}

// AddInput holds a validated company_product row.
type AddInput struct {
	CompID     int64
	ProdID     int64
	CarbonCost float64
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a product service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("product repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

// Get returns the company override for (compID, prodID) when one exists and
// the base product cost otherwise.
func (s *service) Get(ctx context.Context, compID, prodID int64) (*CostDTO, error) {
	var dto *CostDTO
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		override, err := txRepo.FindCompanyProduct(ctx, compID, prodID)
		switch {
		case err == nil:
			dto = &CostDTO{CompID: &override.CompID, ProdID: override.ProdID, CarbonCost: override.CarbonCost}
			return nil
		case !db.IsNotFound(err):
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load company product")
		}

		product, err := txRepo.FindProduct(ctx, prodID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.NotFound(companyProductNotFound)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}
		dto = &CostDTO{ProdID: product.ID, CarbonCost: product.CarbonCost}
		return nil
	})
	if err != nil {
		return nil, wrapTxError(err, "get product cost")
	}
	return dto, nil
}

// GetBase returns the product row without any company override.
func (s *service) GetBase(ctx context.Context, prodID int64) (*ProductDTO, error) {
	var dto *ProductDTO
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		product, err := s.repo.WithTx(tx).FindProduct(ctx, prodID)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.NotFound(productNotFound)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load product")
		}
		dto = NewProductDTO(*product)
		return nil
	})
	if err != nil {
		return nil, wrapTxError(err, "get product")
	}
	return dto, nil
}

// Add inserts a company_product override. A second override for the same
// pair is a conflict.
func (s *service) Add(ctx context.Context, input AddInput) error {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		row := &models.CompanyProduct{
			CompID:     input.CompID,
			ProdID:     input.ProdID,
			CarbonCost: input.CarbonCost,
		}
		if err := s.repo.WithTx(tx).CreateCompanyProduct(ctx, row); err != nil {
			if db.IsUniqueViolation(err, "") {
				return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "comp_id, prod_id already in database")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert company product")
		}
		return nil
	})
	if err != nil {
		return wrapTxError(err, "add company product")
	}
	return nil
}

// UpdateCost writes carbon_cost on the row the update targets. No existence
// check is made; an update that matches nothing succeeds.
func (s *service) UpdateCost(ctx context.Context, update CostUpdate) error {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		var err error
		switch u := update.(type) {
		case EntityCostUpdate:
			_, err = txRepo.UpdateEntityCost(ctx, u.ID, u.Cost)
		case ProductCostUpdate:
			_, err = txRepo.UpdateProductCost(ctx, u.ID, u.Cost)
		case CompanyProductCostUpdate:
			_, err = txRepo.UpdateCompanyProductCost(ctx, u.CompID, u.ProdID, u.Cost)
		default:
			return pkgerrors.New(pkgerrors.CodeValidation, "comp_id or prod_id is required")
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update carbon cost")
		}
		return nil
	})
	if err != nil {
		return wrapTxError(err, "update carbon cost")
	}
	return nil
}

func wrapTxError(err error, action string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
