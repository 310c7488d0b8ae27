package models

import (
	"time"

	"github.com/google/uuid"
)

// ItemHistory records one quantity change. Rows are written before the item
// update commits so the trail always leads up to the current quantity.
type ItemHistory struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey"`
	ItemID         *uuid.UUID `gorm:"column:item_id;type:uuid;index"`
	UserID         uuid.UUID  `gorm:"column:user_id;type:uuid;not null;index"`
	QuantityBefore int        `gorm:"column:quantity_before;not null"`
	QuantityAfter  int        `gorm:"column:quantity_after;not null"`
	ChangeAmount   int        `gorm:"column:change_amount;not null"`
	ChangedAt      time.Time  `gorm:"column:changed_at;autoCreateTime"`
}
