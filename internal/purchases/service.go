package purchases

import (
	"context"
	"fmt"
	"time"

	"github.com/angelmondragon/carbon-ledger/pkg/db"
	"github.com/angelmondragon/carbon-ledger/pkg/db/models"
	pkgerrors "github.com/angelmondragon/carbon-ledger/pkg/errors"
	"gorm.io/gorm"
)

const notFoundReason = "purchase id not in database"

// Service exposes purchase reads and the header + line item writes.
type Service interface {
	Get(ctx context.Context, id int64) (*PurchaseDTO, error)
	Add(ctx context.Context, input PurchaseInput) (int64, error)
	Update(ctx context.Context, id int64, input PurchaseInput) (int64, error)
}

// PurchaseInput holds a validated purchase payload.
type PurchaseInput struct {
	BuyrID     int64
	SelrID     int64
	Price      float64
	CarbonCost *float64
	Items      []LineItemInput
}

// LineItemInput is one purchased product, optionally attributed to a company.
type LineItemInput struct {
	ProdID int64
	CompID *int64
}

type service struct {
	repo     *Repository
	dbClient *db.Client
	now      func() time.Time
}

// NewService constructs a purchase service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchase repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{
		repo:     repo,
		dbClient: dbClient,
		now:      func() time.Time { return time.Now().UTC() },
	}, nil
}

// Get loads the header and its line items in one transaction.
func (s *service) Get(ctx context.Context, id int64) (*PurchaseDTO, error) {
	var dto *PurchaseDTO
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		purchase, err := txRepo.FindByID(ctx, id)
		if err != nil {
			if db.IsNotFound(err) {
				return pkgerrors.NotFound(notFoundReason)
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load purchase")
		}

		items, err := txRepo.ListLineItems(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list line items")
		}
		dto = NewPurchaseDTO(*purchase, items)
		return nil
	})
	if err != nil {
		return nil, wrapTxError(err, "get purchase")
	}
	return dto, nil
}

// Add inserts the header, stamps it with the current time and inserts the
// line items under the generated id.
func (s *service) Add(ctx context.Context, input PurchaseInput) (int64, error) {
	cost := 0.0
	if input.CarbonCost != nil {
		cost = *input.CarbonCost
	}

	var id int64
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		created, err := txRepo.Create(ctx, &models.Purchase{
			BuyrID:     input.BuyrID,
			SelrID:     input.SelrID,
			Price:      input.Price,
			CarbonCost: &cost,
			Ts:         s.now().Truncate(time.Microsecond),
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert purchase")
		}
		id = created.ID

		if err := txRepo.InsertLineItems(ctx, id, lineItemRows(input.Items)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert line items")
		}
		return nil
	})
	if err != nil {
		return 0, wrapTxError(err, "add purchase")
	}
	return id, nil
}

// Update overwrites the header and replaces the full line item set. The
// timestamp is left untouched.
func (s *service) Update(ctx context.Context, id int64, input PurchaseInput) (int64, error) {
	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		exists, err := txRepo.Exists(ctx, id)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: check purchase")
		}
		if !exists {
			return pkgerrors.NotFound(notFoundReason)
		}

		if err := txRepo.UpdateHeader(ctx, id, input.BuyrID, input.SelrID, input.Price, input.CarbonCost); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update purchase")
		}
		if err := txRepo.ReplaceLineItems(ctx, id, lineItemRows(input.Items)); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: replace line items")
		}
		return nil
	})
	if err != nil {
		return 0, wrapTxError(err, "update purchase")
	}
	return id, nil
}

func lineItemRows(items []LineItemInput) []models.ProductsPurchased {
	rows := make([]models.ProductsPurchased, 0, len(items))
	for _, item := range items {
		rows = append(rows, models.ProductsPurchased{
			ProdID: item.ProdID,
			CompID: item.CompID,
		})
	}
	return rows
}

func wrapTxError(err error, action string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	return pkgerrors.Wrap(pkgerrors.CodeDependency, err, action)
}
