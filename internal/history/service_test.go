package history

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"stocktally-backend/pkg/db/models"
	"stocktally-backend/pkg/enums"
)

func TestCreateUserSnapshotsCoversInventory(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	mustSeedItem(t, conn, userID, "Alpha", 5)
	mustSeedItem(t, conn, userID, "Beta", 2)
	mustSeedItem(t, conn, uuid.New(), "Other", 9)

	result, err := svc.CreateUserSnapshots(ctx, userID, enums.SnapshotTypeAuto)
	if err != nil {
		t.Fatalf("create snapshots: %v", err)
	}
	if result.SnapshotCount != 2 {
		t.Fatalf("expected 2 snapshots, got %d", result.SnapshotCount)
	}

	var snapshots []models.ItemSnapshot
	if err := conn.Where("user_id = ?", userID).Find(&snapshots).Error; err != nil {
		t.Fatalf("load snapshots: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(snapshots))
	}
	for _, snap := range snapshots {
		if snap.SnapshotType != enums.SnapshotTypeAuto {
			t.Fatalf("expected auto snapshot, got %s", snap.SnapshotType)
		}
	}
}

func TestCreateUserSnapshotsOverwritesSameDay(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	item := mustSeedItem(t, conn, userID, "Alpha", 5)

	if _, err := svc.CreateUserSnapshots(ctx, userID, enums.SnapshotTypeAuto); err != nil {
		t.Fatalf("first snapshot: %v", err)
	}

	if err := conn.Model(&models.Item{}).Where("id = ?", item.ID).
		Update("quantity", 42).Error; err != nil {
		t.Fatalf("update quantity: %v", err)
	}

	if _, err := svc.CreateUserSnapshots(ctx, userID, enums.SnapshotTypeManual); err != nil {
		t.Fatalf("second snapshot: %v", err)
	}

	var snapshots []models.ItemSnapshot
	if err := conn.Where("item_id = ?", item.ID).Find(&snapshots).Error; err != nil {
		t.Fatalf("load snapshots: %v", err)
	}
	if len(snapshots) != 1 {
		t.Fatalf("expected single row per item and day, got %d", len(snapshots))
	}
	if snapshots[0].Quantity != 42 {
		t.Fatalf("expected overwritten quantity 42, got %d", snapshots[0].Quantity)
	}
	if snapshots[0].SnapshotType != enums.SnapshotTypeManual {
		t.Fatalf("expected manual type after overwrite, got %s", snapshots[0].SnapshotType)
	}
}

func TestCreateUserSnapshotsRejectsInvalidType(t *testing.T) {
	svc, _ := newTestService(t)

	if _, err := svc.CreateUserSnapshots(context.Background(), uuid.New(), enums.SnapshotType("bogus")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestHasSnapshotToday(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	mustSeedItem(t, conn, userID, "Alpha", 5)

	taken, err := svc.HasSnapshotToday(ctx, userID)
	if err != nil {
		t.Fatalf("has snapshot: %v", err)
	}
	if taken {
		t.Fatal("expected no snapshot yet")
	}

	if _, err := svc.CreateUserSnapshots(ctx, userID, enums.SnapshotTypeManual); err != nil {
		t.Fatalf("create snapshots: %v", err)
	}

	taken, err = svc.HasSnapshotToday(ctx, userID)
	if err != nil {
		t.Fatalf("has snapshot: %v", err)
	}
	if !taken {
		t.Fatal("expected snapshot to be detected")
	}
}

func TestGetSnapshotsByDate(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	mustSeedItem(t, conn, userID, "Alpha", 5)
	mustSeedItem(t, conn, userID, "Beta", 1)

	if _, err := svc.CreateUserSnapshots(ctx, userID, enums.SnapshotTypeAuto); err != nil {
		t.Fatalf("create snapshots: %v", err)
	}

	today := time.Now().UTC()
	snapshots, err := svc.GetSnapshotsByDate(ctx, userID, today)
	if err != nil {
		t.Fatalf("get by date: %v", err)
	}
	if len(snapshots) != 2 {
		t.Fatalf("expected 2 snapshots, got %d", len(snapshots))
	}

	yesterday := today.AddDate(0, 0, -1)
	snapshots, err = svc.GetSnapshotsByDate(ctx, userID, yesterday)
	if err != nil {
		t.Fatalf("get by date: %v", err)
	}
	if len(snapshots) != 0 {
		t.Fatalf("expected no snapshots for yesterday, got %d", len(snapshots))
	}
}

func TestGetItemHistoryNewestFirst(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()
	item := mustSeedItem(t, conn, userID, "Alpha", 5)

	base := time.Now().UTC().Add(-time.Hour)
	for i, change := range []int{3, -1, 4} {
		entry := &models.ItemHistory{
			ID:             uuid.New(),
			ItemID:         &item.ID,
			UserID:         userID,
			QuantityBefore: 5,
			QuantityAfter:  5 + change,
			ChangeAmount:   change,
			ChangedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		if err := conn.Create(entry).Error; err != nil {
			t.Fatalf("seed history: %v", err)
		}
	}

	entries, err := svc.GetItemHistory(ctx, userID, item.ID)
	if err != nil {
		t.Fatalf("get history: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	if entries[0].ChangeAmount != 4 {
		t.Fatalf("expected newest entry first, got %+v", entries[0])
	}
}
