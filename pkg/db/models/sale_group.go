package models

import (
	"time"

	"github.com/google/uuid"
)

// SaleGroup is one buyer transaction; its sale lines reference it. Deleting
// every line leaves an empty group which the grouped readers filter out.
type SaleGroup struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID     uuid.UUID `gorm:"column:user_id;type:uuid;not null;index"`
	BuyerName  *string   `gorm:"column:buyer_name"`
	BuyerPhone *string   `gorm:"column:buyer_phone"`
	Notes      *string   `gorm:"column:notes"`
	SaleDate   time.Time `gorm:"column:sale_date;type:date;not null;index"`
	Sales      []Sale    `gorm:"foreignKey:SaleGroupID;constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
