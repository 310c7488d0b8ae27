package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stocktally-backend/pkg/db/models"
	"stocktally-backend/pkg/enums"
)

// SaleDTO is one sale line of a buyer transaction.
type SaleDTO struct {
	ID           uuid.UUID        `json:"id"`
	SaleGroupID  uuid.UUID        `json:"sale_group_id"`
	ItemID       *uuid.UUID       `json:"item_id,omitempty"`
	ItemName     string           `json:"item_name"`
	QuantitySold int              `json:"quantity_sold"`
	SalePrice    decimal.Decimal  `json:"sale_price"`
	TotalAmount  decimal.Decimal  `json:"total_amount"`
	Currency     enums.Currency   `json:"currency"`
	Notes        *string          `json:"notes,omitempty"`
	Status       enums.SaleStatus `json:"status"`
	ReturnedAt   *time.Time       `json:"returned_at,omitempty"`
	SaleDate     time.Time        `json:"sale_date"`
	CreatedAt    time.Time        `json:"created_at"`
}

// SaleGroupDTO is a buyer transaction with its lines.
type SaleGroupDTO struct {
	ID         uuid.UUID `json:"id"`
	BuyerName  *string   `json:"buyer_name,omitempty"`
	BuyerPhone *string   `json:"buyer_phone,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	SaleDate   time.Time `json:"sale_date"`
	Items      []SaleDTO `json:"items"`
	CreatedAt  time.Time `json:"created_at"`
}

// SaleLineInput is one item line of a sale request.
type SaleLineInput struct {
	ItemID    uuid.UUID
	Quantity  int
	SalePrice decimal.Decimal
	Notes     *string
}

// CreateSaleInput records a single-item sale.
type CreateSaleInput struct {
	Line       SaleLineInput
	BuyerName  *string
	BuyerPhone *string
	Notes      *string
	SaleDate   *time.Time
}

// CreateMultiSaleInput records one buyer transaction covering several items.
type CreateMultiSaleInput struct {
	Lines      []SaleLineInput
	BuyerName  *string
	BuyerPhone *string
	Notes      *string
	SaleDate   *time.Time
}

// UpdateSaleInput holds optional mutation values for a sale line and its group.
type UpdateSaleInput struct {
	Quantity   *int
	SalePrice  *decimal.Decimal
	Notes      *string
	BuyerName  *string
	BuyerPhone *string
	SaleDate   *time.Time
}

// CurrencyStats aggregates active sales sharing one currency.
type CurrencyStats struct {
	SalesCount int             `json:"sales_count"`
	ItemsSold  int             `json:"items_sold"`
	Revenue    decimal.Decimal `json:"revenue"`
	Cost       decimal.Decimal `json:"cost"`
	Profit     decimal.Decimal `json:"profit"`
}

// StatisticsDTO groups revenue/cost/profit per currency. Totals sum the
// buckets without any exchange-rate conversion.
type StatisticsDTO struct {
	ByCurrency map[enums.Currency]CurrencyStats `json:"by_currency"`
	Totals     CurrencyStats                    `json:"totals"`
}

// RangeResult pairs the grouped sales of a date range with their statistics.
type RangeResult struct {
	Sales      []SaleGroupDTO `json:"sales"`
	Statistics StatisticsDTO  `json:"statistics"`
}

func saleFromModel(m *models.Sale) *SaleDTO {
	if m == nil {
		return nil
	}
	return &SaleDTO{
		ID:           m.ID,
		SaleGroupID:  m.SaleGroupID,
		ItemID:       m.ItemID,
		ItemName:     m.ItemName,
		QuantitySold: m.QuantitySold,
		SalePrice:    m.SalePrice,
		TotalAmount:  m.TotalAmount,
		Currency:     m.Currency,
		Notes:        m.Notes,
		Status:       m.Status,
		ReturnedAt:   m.ReturnedAt,
		SaleDate:     m.SaleDate,
		CreatedAt:    m.CreatedAt,
	}
}

func groupFromModel(m *models.SaleGroup) *SaleGroupDTO {
	if m == nil {
		return nil
	}
	items := make([]SaleDTO, 0, len(m.Sales))
	for i := range m.Sales {
		items = append(items, *saleFromModel(&m.Sales[i]))
	}
	return &SaleGroupDTO{
		ID:         m.ID,
		BuyerName:  m.BuyerName,
		BuyerPhone: m.BuyerPhone,
		Notes:      m.Notes,
		SaleDate:   m.SaleDate,
		Items:      items,
		CreatedAt:  m.CreatedAt,
	}
}
