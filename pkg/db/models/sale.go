package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stocktally-backend/pkg/enums"
)

// Sale is one line of a buyer transaction. ItemID is nullable: deleting the
// inventory item sets it to NULL while the sale record survives with the
// denormalized ItemName.
type Sale struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey"`
	UserID       uuid.UUID        `gorm:"column:user_id;type:uuid;not null;index"`
	SaleGroupID  uuid.UUID        `gorm:"column:sale_group_id;type:uuid;not null;index"`
	ItemID       *uuid.UUID       `gorm:"column:item_id;type:uuid;index"`
	ItemName     string           `gorm:"column:item_name;type:text;not null"`
	QuantitySold int              `gorm:"column:quantity_sold;not null"`
	SalePrice    decimal.Decimal  `gorm:"column:sale_price;type:numeric(12,2);not null"`
	TotalAmount  decimal.Decimal  `gorm:"column:total_amount;type:numeric(12,2);not null"`
	Currency     enums.Currency   `gorm:"column:currency;type:text;not null"`
	Notes        *string          `gorm:"column:notes"`
	Status       enums.SaleStatus `gorm:"column:status;type:text;not null;default:active"`
	ReturnedAt   *time.Time       `gorm:"column:returned_at"`
	SaleDate     time.Time        `gorm:"column:sale_date;type:date;not null;index"`
	CreatedAt    time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
