package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemName is the per-user registry of distinct item names, maintained
// case-insensitively. Renaming an entry cascades to every item that shares
// the old name.
type ItemName struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;not null;uniqueIndex:idx_item_names_user_name,priority:1"`
	Name      string    `gorm:"type:text;not null;uniqueIndex:idx_item_names_user_name,priority:2"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
