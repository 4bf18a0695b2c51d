// Package dbtest opens throwaway sqlite databases carrying the service schema
// and seed rows for tests in other packages.
package dbtest

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/angelmondragon/carbon-ledger/pkg/db/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open returns an isolated in-memory database with every mapped table
// migrated. One connection is kept so a transaction owns the database while
// it is open.
func Open(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: func() time.Time {
			return time.Now().UTC()
		},
	})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("failed to get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := conn.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate sqlite: %v", err)
	}
	return conn
}

// Seed inserts the same rows as the seed migration set.
func Seed(t *testing.T, conn *gorm.DB) {
	t.Helper()

	entities := []models.Entity{
		{ID: 1, DisplayName: "Albert"},
		{ID: 2, DisplayName: "Beatrice"},
		{ID: 3, DisplayName: "Chidi"},
		{ID: 4, DisplayName: "Dana"},
		{ID: 5, DisplayName: "Green Grocer Co"},
		{ID: 6, DisplayName: "Acme Outfitters"},
	}
	products := []models.Product{
		{ID: 1, ItemName: "Apple", CarbonCost: 0.4},
		{ID: 2, ItemName: "Beef Mince 500g", CarbonCost: 13.5},
		{ID: 3, ItemName: "Oat Milk 1L", CarbonCost: 0.9},
		{ID: 4, ItemName: "Cotton T-Shirt", CarbonCost: 7},
	}
	overrides := []models.CompanyProduct{
		{CompID: 5, ProdID: 1, CarbonCost: 0.3},
		{CompID: 6, ProdID: 4, CarbonCost: 5.5},
	}

	for _, rows := range []any{&entities, &products, &overrides} {
		if err := conn.Create(rows).Error; err != nil {
			t.Fatalf("seed %T: %v", rows, err)
		}
	}
}
