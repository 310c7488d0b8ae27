package history

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stocktally-backend/pkg/db/models"
	"stocktally-backend/pkg/enums"
)

// HistoryEntryDTO is one quantity change on an item's trail.
type HistoryEntryDTO struct {
	ID             uuid.UUID  `json:"id"`
	ItemID         *uuid.UUID `json:"item_id,omitempty"`
	QuantityBefore int        `json:"quantity_before"`
	QuantityAfter  int        `json:"quantity_after"`
	ChangeAmount   int        `json:"change_amount"`
	ChangedAt      time.Time  `json:"changed_at"`
}

// SnapshotDTO is the transport shape of one daily item snapshot.
type SnapshotDTO struct {
	ID           uuid.UUID          `json:"id"`
	ItemID       *uuid.UUID         `json:"item_id,omitempty"`
	Name         string             `json:"name"`
	Quantity     int                `json:"quantity"`
	PricePerUnit decimal.Decimal    `json:"price_per_unit"`
	Currency     enums.Currency     `json:"currency"`
	Category     enums.ItemCategory `json:"category"`
	SnapshotDate time.Time          `json:"snapshot_date"`
	SnapshotType enums.SnapshotType `json:"snapshot_type"`
	CreatedAt    time.Time          `json:"created_at"`
}

// SnapshotBatchResult reports the outcome of snapshotting a user's inventory.
type SnapshotBatchResult struct {
	SnapshotCount int `json:"snapshot_count"`
}

func entryFromModel(m *models.ItemHistory) *HistoryEntryDTO {
	if m == nil {
		return nil
	}
	return &HistoryEntryDTO{
		ID:             m.ID,
		ItemID:         m.ItemID,
		QuantityBefore: m.QuantityBefore,
		QuantityAfter:  m.QuantityAfter,
		ChangeAmount:   m.ChangeAmount,
		ChangedAt:      m.ChangedAt,
	}
}

func snapshotFromModel(m *models.ItemSnapshot) *SnapshotDTO {
	if m == nil {
		return nil
	}
	return &SnapshotDTO{
		ID:           m.ID,
		ItemID:       m.ItemID,
		Name:         m.Name,
		Quantity:     m.Quantity,
		PricePerUnit: m.PricePerUnit,
		Currency:     m.Currency,
		Category:     m.Category,
		SnapshotDate: m.SnapshotDate,
		SnapshotType: m.SnapshotType,
		CreatedAt:    m.CreatedAt,
	}
}

func snapshotsFromModels(ms []models.ItemSnapshot) []SnapshotDTO {
	out := make([]SnapshotDTO, 0, len(ms))
	for i := range ms {
		out = append(out, *snapshotFromModel(&ms[i]))
	}
	return out
}
