package history

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stocktally-backend/pkg/db/models"
)

// Repository persists quantity history rows and daily item snapshots.
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

// ListItemHistory returns the quantity trail for one item, newest first.
func (r *Repository) ListItemHistory(ctx context.Context, userID, itemID uuid.UUID) ([]models.ItemHistory, error) {
	var entries []models.ItemHistory
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Order("changed_at DESC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// UpsertSnapshot inserts the snapshot or, when one already exists for the
// (item, day) pair, overwrites its values in place.
func (r *Repository) UpsertSnapshot(ctx context.Context, snapshot *models.ItemSnapshot) error {
	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "item_id"}, {Name: "snapshot_date"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "quantity", "price_per_unit", "currency", "category",
				"snapshot_type", "created_at",
			}),
		}).
		Create(snapshot).Error
}

// ListSnapshotsByItem returns every snapshot for one item, newest day first.
func (r *Repository) ListSnapshotsByItem(ctx context.Context, userID, itemID uuid.UUID) ([]models.ItemSnapshot, error) {
	var snapshots []models.ItemSnapshot
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND item_id = ?", userID, itemID).
		Order("snapshot_date DESC").
		Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

// ListSnapshotsByDate returns the user's snapshots for one calendar day.
func (r *Repository) ListSnapshotsByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]models.ItemSnapshot, error) {
	var snapshots []models.ItemSnapshot
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND snapshot_date = ?", userID, dateOnly(date)).
		Order("name ASC").
		Find(&snapshots).Error; err != nil {
		return nil, err
	}
	return snapshots, nil
}

// CountSnapshotsByDate reports how many snapshots the user has for the day.
func (r *Repository) CountSnapshotsByDate(ctx context.Context, userID uuid.UUID, date time.Time) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.ItemSnapshot{}).
		Where("user_id = ? AND snapshot_date = ?", userID, dateOnly(date)).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
