package sales

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stocktally-backend/pkg/db/models"
	"stocktally-backend/pkg/enums"
)

// Repository persists sale groups, sale lines, and the stock adjustments
// they imply.
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

// CreateGroup inserts a sale group.
func (r *Repository) CreateGroup(ctx context.Context, group *models.SaleGroup) error {
	return r.db.WithContext(ctx).Create(group).Error
}

// CreateSale inserts a sale line.
func (r *Repository) CreateSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Create(sale).Error
}

// FindSaleByID loads an owner-scoped sale line.
func (r *Repository) FindSaleByID(ctx context.Context, userID, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// lockForUpdate applies a SELECT ... FOR UPDATE clause on dialects that
// support it. Row locks are a postgres concern; sqlite serializes writers.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() != "postgres" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// FindSaleByIDForUpdate is FindSaleByID under a row lock.
func (r *Repository) FindSaleByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (*models.Sale, error) {
	var sale models.Sale
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		First(&sale, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &sale, nil
}

// FindGroupByID loads an owner-scoped sale group without lines.
func (r *Repository) FindGroupByID(ctx context.Context, userID, id uuid.UUID) (*models.SaleGroup, error) {
	var group models.SaleGroup
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&group, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &group, nil
}

// SaveSale persists all fields of the sale line.
func (r *Repository) SaveSale(ctx context.Context, sale *models.Sale) error {
	return r.db.WithContext(ctx).Save(sale).Error
}

// SaveGroup persists all fields of the sale group.
func (r *Repository) SaveGroup(ctx context.Context, group *models.SaleGroup) error {
	return r.db.WithContext(ctx).Save(group).Error
}

// DeleteSale hard-deletes the owner-scoped sale line.
func (r *Repository) DeleteSale(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Sale{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListGroupsByDateRange loads groups in [start, end] with their lines,
// newest group first, lines in insertion order.
func (r *Repository) ListGroupsByDateRange(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]models.SaleGroup, error) {
	var groups []models.SaleGroup
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND sale_date >= ? AND sale_date <= ?", userID, dateOnly(start), dateOnly(end)).
		Order("created_at DESC, id DESC").
		Preload("Sales", func(db *gorm.DB) *gorm.DB {
			// id breaks ties between lines created in the same instant.
			return db.Order("created_at ASC, id ASC")
		}).
		Find(&groups).Error; err != nil {
		return nil, err
	}
	return groups, nil
}

// StatRow is one currency bucket produced by the statistics aggregate.
type StatRow struct {
	Currency   enums.Currency
	SalesCount int
	ItemsSold  int
	Revenue    decimal.Decimal
	Cost       decimal.Decimal
}

// Statistics aggregates active sales per currency over [start, end]. Cost
// falls back to zero for lines whose inventory item no longer exists.
func (r *Repository) Statistics(ctx context.Context, userID uuid.UUID, start, end time.Time) ([]StatRow, error) {
	var rows []StatRow
	err := r.db.WithContext(ctx).Raw(`
SELECT s.currency AS currency,
       COUNT(*) AS sales_count,
       COALESCE(SUM(s.quantity_sold), 0) AS items_sold,
       COALESCE(SUM(s.total_amount), 0) AS revenue,
       COALESCE(SUM(s.quantity_sold * COALESCE(i.purchase_price, 0)), 0) AS cost
FROM sales s
LEFT JOIN items i ON i.id = s.item_id
WHERE s.user_id = ? AND s.status = ? AND s.sale_date >= ? AND s.sale_date <= ?
GROUP BY s.currency
ORDER BY s.currency`,
		userID, enums.SaleStatusActive, dateOnly(start), dateOnly(end),
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// FindItemForUpdate locks the owner-scoped inventory item row.
func (r *Repository) FindItemForUpdate(ctx context.Context, userID, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// SaveItem persists all fields of the inventory item.
func (r *Repository) SaveItem(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// AppendHistory records a quantity change row.
func (r *Repository) AppendHistory(ctx context.Context, entry *models.ItemHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
