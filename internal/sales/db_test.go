package sales

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stocktally-backend/pkg/db/models"
	"stocktally-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:sales_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Item{},
		&models.SaleGroup{},
		&models.Sale{},
		&models.ItemHistory{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	conn := newTestDB(t)
	svc, err := NewService(NewRepository(conn), testTxRunner{db: conn})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return svc, conn
}

func mustSeedItem(t *testing.T, conn *gorm.DB, userID uuid.UUID, name string, quantity int, price int64, currency enums.Currency) *models.Item {
	t.Helper()
	purchase := decimal.NewFromInt(price).Div(decimal.NewFromInt(2))
	item := &models.Item{
		ID:            uuid.New(),
		UserID:        userID,
		Name:          name,
		Quantity:      quantity,
		PricePerUnit:  decimal.NewFromInt(price),
		Currency:      currency,
		PurchasePrice: &purchase,
		Category:      enums.ItemCategoryInStock,
	}
	if err := conn.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}
