package entities

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/carbon-ledger/internal/purchases"
	"github.com/angelmondragon/carbon-ledger/pkg/db"
	pkgerrors "github.com/angelmondragon/carbon-ledger/pkg/errors"
	"gorm.io/gorm"
)

const notFoundReason = "entity id not in database"

// Service exposes entity reads, carbon total updates and the purchase history
// query.
type Service interface {
	Get(ctx context.Context, id int64) (*EntityDTO, error)
	Update(ctx context.Context, input UpdateInput) (int64, error)
	ListPurchases(ctx context.Context, id int64, start, end time.Time) (*PurchaseListDTO, error)
}

// UpdateInput holds the validated carbon totals for one entity.
type UpdateInput struct {
	ID           int64
	CarbonOffset float64
	CarbonCost   float64
}

type service struct {
	repo         *Repository
	purchaseRepo *purchases.Repository
	dbClient     *db.Client
}

// NewService constructs an entity service instance.
func NewService(repo *Repository, purchaseRepo *purchases.Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("entity repository required")
	}
	if purchaseRepo == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, purchaseRepo: purchaseRepo, dbClient: dbClient}, nil
}

func (s *service) Get(ctx context.Context, id int64) (*EntityDTO, error) {
	var dto *EntityDTO
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		entity, err := s.repo.WithTx(tx).FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.NotFound(notFoundReason)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load entity")
		}
		dto = NewEntityDTO(*entity)
		return nil
	})
	if err != nil {
		return nil, wrapTxError(err, "get entity")
	}
	return dto, nil
}

// Update overwrites carbon_offset and carbon_cost after checking the entity
// exists.
func (s *service) Update(ctx context.Context, input UpdateInput) (int64, error) {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		exists, err := txRepo.Exists(ctx, input.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check entity")
		}
		if !exists {
			return pkgerrors.NotFound(notFoundReason)
		}
		if err := txRepo.UpdateCarbon(ctx, input.ID, input.CarbonOffset, input.CarbonCost); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update entity")
		}
		return nil
	})
	if err != nil {
		return 0, wrapTxError(err, "update entity")
	}
	return input.ID, nil
}

// ListPurchases returns the purchases bought by id with a timestamp strictly
// inside (start, end). Unknown ids yield an empty list.
func (s *service) ListPurchases(ctx context.Context, id int64, start, end time.Time) (*PurchaseListDTO, error) {
	var dto *PurchaseListDTO
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		rows, err := s.purchaseRepo.WithTx(tx).ListByBuyerBetween(ctx, id, start.UTC(), end.UTC())
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list purchases")
		}
		dto = NewPurchaseListDTO(id, rows)
		return nil
	})
	if err != nil {
		return nil, wrapTxError(err, "list entity purchases")
	}
	return dto, nil
}

func wrapTxError(err error, action string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
