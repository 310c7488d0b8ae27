package items

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stocktally-backend/pkg/db/models"
	"stocktally-backend/pkg/enums"
)

// ItemDTO is the transport representation of an inventory item.
type ItemDTO struct {
	ID               uuid.UUID          `json:"id"`
	Name             string             `json:"name"`
	Description      *string            `json:"description,omitempty"`
	Quantity         int                `json:"quantity"`
	PricePerUnit     decimal.Decimal    `json:"price_per_unit"`
	Currency         enums.Currency     `json:"currency"`
	PurchasePrice    *decimal.Decimal   `json:"purchase_price,omitempty"`
	PurchaseCurrency *enums.Currency    `json:"purchase_currency,omitempty"`
	Category         enums.ItemCategory `json:"category"`
	Location         *string            `json:"location,omitempty"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// ItemNameDTO is the transport representation of a registry entry.
type ItemNameDTO struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
}

// CreateItemInput holds the validated payload to create an item.
type CreateItemInput struct {
	Name               string
	Description        *string
	Quantity           int
	PricePerUnit       decimal.Decimal
	Currency           enums.Currency
	PurchasePrice      *decimal.Decimal
	PurchaseCurrency   *enums.Currency
	Category           enums.ItemCategory
	Location           *string
	SkipDuplicateCheck bool
}

// UpdateItemInput holds optional mutation values for an item.
type UpdateItemInput struct {
	Name             *string
	Description      *string
	Quantity         *int
	PricePerUnit     *decimal.Decimal
	Currency         *enums.Currency
	PurchasePrice    *decimal.Decimal
	PurchaseCurrency *enums.Currency
	Category         *enums.ItemCategory
	Location         *string
}

// MoveItemInput describes a cross-category stock move.
type MoveItemInput struct {
	TargetCategory enums.ItemCategory
	Quantity       int
}

func fromModel(m *models.Item) *ItemDTO {
	if m == nil {
		return nil
	}
	return &ItemDTO{
		ID:               m.ID,
		Name:             m.Name,
		Description:      m.Description,
		Quantity:         m.Quantity,
		PricePerUnit:     m.PricePerUnit,
		Currency:         m.Currency,
		PurchasePrice:    m.PurchasePrice,
		PurchaseCurrency: m.PurchaseCurrency,
		Category:         m.Category,
		Location:         m.Location,
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func fromModels(ms []models.Item) []ItemDTO {
	out := make([]ItemDTO, 0, len(ms))
	for i := range ms {
		out = append(out, *fromModel(&ms[i]))
	}
	return out
}

func nameFromModel(m *models.ItemName) *ItemNameDTO {
	if m == nil {
		return nil
	}
	return &ItemNameDTO{ID: m.ID, Name: m.Name}
}
