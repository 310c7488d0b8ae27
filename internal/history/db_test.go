package history

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"stocktally-backend/internal/items"
	"stocktally-backend/pkg/db/models"
	"stocktally-backend/pkg/enums"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := "file:history_" + uuid.NewString() + "?mode=memory&cache=shared"
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&models.User{},
		&models.Item{},
		&models.ItemHistory{},
		&models.ItemSnapshot{},
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
	svc, err := NewService(NewRepository(conn), items.NewRepository(conn), testTxRunner{db: conn})
	if err != nil {
		t.Fatalf("construct service: %v", err)
	}
	return svc, conn
}

func mustSeedItem(t *testing.T, conn *gorm.DB, userID uuid.UUID, name string, quantity int) *models.Item {
	t.Helper()
	item := &models.Item{
		ID:           uuid.New(),
		UserID:       userID,
		Name:         name,
		Quantity:     quantity,
		PricePerUnit: decimal.NewFromInt(10),
		Currency:     enums.CurrencyGEL,
		Category:     enums.ItemCategoryInStock,
	}
	if err := conn.Create(item).Error; err != nil {
		t.Fatalf("seed item: %v", err)
	}
	return item
}
