package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stocktally-backend/pkg/enums"
)

// ItemSnapshot captures an item's state for one calendar day. At most one
// snapshot exists per (item, day); re-snapshotting overwrites in place.
type ItemSnapshot struct {
	ID           uuid.UUID          `gorm:"type:uuid;primaryKey"`
	ItemID       *uuid.UUID         `gorm:"column:item_id;type:uuid;uniqueIndex:idx_item_snapshots_item_date,priority:1"`
	UserID       uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Name         string             `gorm:"type:text;not null"`
	Quantity     int                `gorm:"column:quantity;not null"`
	PricePerUnit decimal.Decimal    `gorm:"column:price_per_unit;type:numeric(12,2);not null"`
	Currency     enums.Currency     `gorm:"column:currency;type:text;not null"`
	Category     enums.ItemCategory `gorm:"column:category;type:text;not null"`
	SnapshotDate time.Time          `gorm:"column:snapshot_date;type:date;not null;uniqueIndex:idx_item_snapshots_item_date,priority:2;index"`
	SnapshotType enums.SnapshotType `gorm:"column:snapshot_type;type:text;not null;default:manual"`
	CreatedAt    time.Time          `gorm:"column:created_at;autoCreateTime"`
}
