package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stocktally-backend/pkg/enums"
)

// Item represents a tracked inventory position in one lifecycle category.
// The same (user, name) pair may exist once per category; moving stock
// between categories merges into the existing row when present.
type Item struct {
	ID               uuid.UUID          `gorm:"type:uuid;primaryKey"`
	UserID           uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	Name             string             `gorm:"type:text;not null"`
	Description      *string            `gorm:"column:description"`
	Quantity         int                `gorm:"column:quantity;not null;default:0"`
	PricePerUnit     decimal.Decimal    `gorm:"column:price_per_unit;type:numeric(12,2);not null"`
	Currency         enums.Currency     `gorm:"column:currency;type:text;not null"`
	PurchasePrice    *decimal.Decimal   `gorm:"column:purchase_price;type:numeric(12,2)"`
	PurchaseCurrency *enums.Currency    `gorm:"column:purchase_currency;type:text"`
	Category         enums.ItemCategory `gorm:"column:category;type:text;not null;index"`
	Location         *string            `gorm:"column:location"`
	CreatedAt        time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
