package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stocktally-backend/pkg/db/models"
	"stocktally-backend/pkg/enums"
	pkgerrors "stocktally-backend/pkg/errors"
)

// Service exposes the snapshot and quantity-history read/write operations.
type Service interface {
	CreateUserSnapshots(ctx context.Context, userID uuid.UUID, snapshotType enums.SnapshotType) (*SnapshotBatchResult, error)
	GetItemHistory(ctx context.Context, userID, itemID uuid.UUID) ([]HistoryEntryDTO, error)
	GetItemSnapshots(ctx context.Context, userID, itemID uuid.UUID) ([]SnapshotDTO, error)
	GetSnapshotsByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]SnapshotDTO, error)
	HasSnapshotToday(ctx context.Context, userID uuid.UUID) (bool, error)
}

type itemLister interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.Item, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     *Repository
	items    itemLister
	dbClient txRunner
}

// NewService constructs a history service instance.
func NewService(repo *Repository, items itemLister, dbClient txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("history repository required")
	}
	if items == nil {
		return nil, fmt.Errorf("item lister required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, items: items, dbClient: dbClient}, nil
}

// CreateUserSnapshots snapshots every current item the user owns for today.
// Re-running on the same day overwrites the existing rows.
func (s *service) CreateUserSnapshots(ctx context.Context, userID uuid.UUID, snapshotType enums.SnapshotType) (*SnapshotBatchResult, error) {
	if !snapshotType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid snapshot type")
	}

	items, err := s.items.List(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list items")
	}

	now := time.Now().UTC()
	today := dateOnly(now)

	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		for i := range items {
			item := &items[i]
			itemID := item.ID
			snapshot := &models.ItemSnapshot{
				ID:           uuid.New(),
				ItemID:       &itemID,
				UserID:       userID,
				Name:         item.Name,
				Quantity:     item.Quantity,
				PricePerUnit: item.PricePerUnit,
				Currency:     item.Currency,
				Category:     item.Category,
				SnapshotDate: today,
				SnapshotType: snapshotType,
				CreatedAt:    now,
			}
			if err := repo.UpsertSnapshot(ctx, snapshot); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "upsert snapshot")
			}
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return &SnapshotBatchResult{SnapshotCount: len(items)}, nil
}

func (s *service) GetItemHistory(ctx context.Context, userID, itemID uuid.UUID) ([]HistoryEntryDTO, error) {
	entries, err := s.repo.ListItemHistory(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return []HistoryEntryDTO{}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list item history")
	}
	out := make([]HistoryEntryDTO, 0, len(entries))
	for i := range entries {
		out = append(out, *entryFromModel(&entries[i]))
	}
	return out, nil
}

func (s *service) GetItemSnapshots(ctx context.Context, userID, itemID uuid.UUID) ([]SnapshotDTO, error) {
	snapshots, err := s.repo.ListSnapshotsByItem(ctx, userID, itemID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list item snapshots")
	}
	return snapshotsFromModels(snapshots), nil
}

func (s *service) GetSnapshotsByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]SnapshotDTO, error) {
	snapshots, err := s.repo.ListSnapshotsByDate(ctx, userID, date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list snapshots by date")
	}
	return snapshotsFromModels(snapshots), nil
}

func (s *service) HasSnapshotToday(ctx context.Context, userID uuid.UUID) (bool, error) {
	count, err := s.repo.CountSnapshotsByDate(ctx, userID, time.Now().UTC())
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count snapshots")
	}
	return count > 0, nil
}
