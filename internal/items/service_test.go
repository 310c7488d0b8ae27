package items

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stocktally-backend/pkg/db/models"
	"stocktally-backend/pkg/enums"
	pkgerrors "stocktally-backend/pkg/errors"
)

func TestCreateItemRegistersName(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	item, err := svc.CreateItem(ctx, userID, CreateItemInput{
		Name:         "Widget",
		Quantity:     10,
		PricePerUnit: decimal.NewFromInt(25),
		Currency:     enums.CurrencyGEL,
		Category:     enums.ItemCategoryInStock,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.ID == uuid.Nil {
		t.Fatal("expected item id to be generated")
	}

	var names []models.ItemName
	if err := conn.Where("user_id = ?", userID).Find(&names).Error; err != nil {
		t.Fatalf("load names: %v", err)
	}
	if len(names) != 1 || names[0].Name != "Widget" {
		t.Fatalf("expected registry entry for Widget, got %+v", names)
	}
}

func TestCreateItemDuplicateConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	input := CreateItemInput{
		Name:         "Widget",
		Quantity:     5,
		PricePerUnit: decimal.NewFromInt(10),
		Currency:     enums.CurrencyUSD,
		Category:     enums.ItemCategoryInStock,
	}
	if _, err := svc.CreateItem(ctx, userID, input); err != nil {
		t.Fatalf("create item: %v", err)
	}

	_, err := svc.CreateItem(ctx, userID, input)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}

	// Only exact names collide; a differently-cased name is a distinct item.
	input.Name = "widget"
	if _, err := svc.CreateItem(ctx, userID, input); err != nil {
		t.Fatalf("expected differently-cased name to create, got %v", err)
	}

	input.Name = "Widget"
	input.SkipDuplicateCheck = true
	if _, err := svc.CreateItem(ctx, userID, input); err != nil {
		t.Fatalf("expected duplicate to be allowed with skip flag: %v", err)
	}

	// Same name in another category is never a duplicate.
	input.SkipDuplicateCheck = false
	input.Category = enums.ItemCategoryOnTheWay
	if _, err := svc.CreateItem(ctx, userID, input); err != nil {
		t.Fatalf("expected cross-category create to succeed: %v", err)
	}
}

func TestUpdateItemQuantityWritesHistory(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	item, err := svc.CreateItem(ctx, userID, CreateItemInput{
		Name:         "Gadget",
		Quantity:     4,
		PricePerUnit: decimal.NewFromInt(7),
		Currency:     enums.CurrencyEUR,
		Category:     enums.ItemCategoryInStock,
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}

	qty := 9
	updated, err := svc.UpdateItem(ctx, userID, item.ID, UpdateItemInput{Quantity: &qty})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.Quantity != 9 {
		t.Fatalf("expected quantity 9, got %d", updated.Quantity)
	}

	var entries []models.ItemHistory
	if err := conn.Where("item_id = ?", item.ID).Find(&entries).Error; err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected one history row, got %d", len(entries))
	}
	if entries[0].QuantityBefore != 4 || entries[0].QuantityAfter != 9 || entries[0].ChangeAmount != 5 {
		t.Fatalf("unexpected history row: %+v", entries[0])
	}
}

func TestUpdateItemNotFound(t *testing.T) {
	svc, _ := newTestService(t)

	qty := 1
	_, err := svc.UpdateItem(context.Background(), uuid.New(), uuid.New(), UpdateItemInput{Quantity: &qty})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestMoveItemMergesIntoExistingTarget(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	source, err := svc.CreateItem(ctx, userID, CreateItemInput{
		Name:         "Cable",
		Quantity:     10,
		PricePerUnit: decimal.NewFromInt(3),
		Currency:     enums.CurrencyGEL,
		Category:     enums.ItemCategoryOnTheWay,
	})
	if err != nil {
		t.Fatalf("create source: %v", err)
	}
	target, err := svc.CreateItem(ctx, userID, CreateItemInput{
		Name:         "Cable",
		Quantity:     2,
		PricePerUnit: decimal.NewFromInt(3),
		Currency:     enums.CurrencyGEL,
		Category:     enums.ItemCategoryInStock,
	})
	if err != nil {
		t.Fatalf("create target: %v", err)
	}

	moved, err := svc.MoveItem(ctx, userID, source.ID, MoveItemInput{
		TargetCategory: enums.ItemCategoryInStock,
		Quantity:       4,
	})
	if err != nil {
		t.Fatalf("move item: %v", err)
	}
	if moved.ID != target.ID {
		t.Fatalf("expected merge into existing target %s, got %s", target.ID, moved.ID)
	}
	if moved.Quantity != 6 {
		t.Fatalf("expected merged quantity 6, got %d", moved.Quantity)
	}

	var src models.Item
	if err := conn.First(&src, "id = ?", source.ID).Error; err != nil {
		t.Fatalf("load source: %v", err)
	}
	if src.Quantity != 6 {
		t.Fatalf("expected source quantity 6, got %d", src.Quantity)
	}
}

func TestMoveItemFullMoveDeletesSource(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	source, err := svc.CreateItem(ctx, userID, CreateItemInput{
		Name:         "Charger",
		Quantity:     3,
		PricePerUnit: decimal.NewFromInt(15),
		Currency:     enums.CurrencyUSD,
		Category:     enums.ItemCategoryNeedToOrder,
	})
	if err != nil {
		t.Fatalf("create source: %v", err)
	}

	moved, err := svc.MoveItem(ctx, userID, source.ID, MoveItemInput{
		TargetCategory: enums.ItemCategoryOnTheWay,
		Quantity:       3,
	})
	if err != nil {
		t.Fatalf("move item: %v", err)
	}
	if moved.Category != enums.ItemCategoryOnTheWay || moved.Quantity != 3 {
		t.Fatalf("unexpected target state: %+v", moved)
	}

	var count int64
	if err := conn.Model(&models.Item{}).Where("id = ?", source.ID).Count(&count).Error; err != nil {
		t.Fatalf("count source: %v", err)
	}
	if count != 0 {
		t.Fatal("expected fully moved source row to be deleted")
	}
}

func TestMoveItemInsufficientStock(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	source, err := svc.CreateItem(ctx, userID, CreateItemInput{
		Name:         "Battery",
		Quantity:     2,
		PricePerUnit: decimal.NewFromInt(5),
		Currency:     enums.CurrencyGEL,
		Category:     enums.ItemCategoryInStock,
	})
	if err != nil {
		t.Fatalf("create source: %v", err)
	}

	_, err = svc.MoveItem(ctx, userID, source.ID, MoveItemInput{
		TargetCategory: enums.ItemCategoryOnTheWay,
		Quantity:       5,
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeInsufficientStock {
		t.Fatalf("expected insufficient stock, got %v", err)
	}
}

func TestSearchItemsMatchesNameAndLocation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	location := "Shelf B"
	for _, input := range []CreateItemInput{
		{Name: "Red Shirt", Quantity: 1, PricePerUnit: decimal.NewFromInt(20), Currency: enums.CurrencyGEL, Category: enums.ItemCategoryInStock},
		{Name: "Blue Shirt", Quantity: 1, PricePerUnit: decimal.NewFromInt(20), Currency: enums.CurrencyGEL, Category: enums.ItemCategoryInStock, Location: &location},
		{Name: "Hat", Quantity: 1, PricePerUnit: decimal.NewFromInt(8), Currency: enums.CurrencyGEL, Category: enums.ItemCategoryInStock},
	} {
		if _, err := svc.CreateItem(ctx, userID, input); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}

	byName, err := svc.SearchItems(ctx, userID, "shirt", 0)
	if err != nil {
		t.Fatalf("search by name: %v", err)
	}
	if len(byName) != 2 {
		t.Fatalf("expected 2 shirts, got %d", len(byName))
	}

	capped, err := svc.SearchItems(ctx, userID, "shirt", 1)
	if err != nil {
		t.Fatalf("search with limit: %v", err)
	}
	if len(capped) != 1 {
		t.Fatalf("expected limit to cap results, got %d", len(capped))
	}

	byLocation, err := svc.SearchItems(ctx, userID, "shelf", 0)
	if err != nil {
		t.Fatalf("search by location: %v", err)
	}
	if len(byLocation) != 1 || byLocation[0].Name != "Blue Shirt" {
		t.Fatalf("expected location match for Blue Shirt, got %+v", byLocation)
	}

	if _, err := svc.SearchItems(ctx, userID, "  ", 0); err == nil {
		t.Fatal("expected validation error for blank query")
	}
}

func TestRenameItemNameCascades(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	for _, category := range []enums.ItemCategory{enums.ItemCategoryInStock, enums.ItemCategoryOnTheWay} {
		if _, err := svc.CreateItem(ctx, userID, CreateItemInput{
			Name:               "Old Name",
			Quantity:           1,
			PricePerUnit:       decimal.NewFromInt(1),
			Currency:           enums.CurrencyGEL,
			Category:           category,
			SkipDuplicateCheck: true,
		}); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}

	names, err := svc.ListItemNames(ctx, userID)
	if err != nil {
		t.Fatalf("list names: %v", err)
	}
	if len(names) != 1 {
		t.Fatalf("expected single registry entry, got %d", len(names))
	}

	renamed, err := svc.RenameItemName(ctx, userID, names[0].ID, "New Name")
	if err != nil {
		t.Fatalf("rename: %v", err)
	}
	if renamed.Name != "New Name" {
		t.Fatalf("expected renamed entry, got %s", renamed.Name)
	}

	var count int64
	if err := conn.Model(&models.Item{}).
		Where("user_id = ? AND name = ?", userID, "New Name").
		Count(&count).Error; err != nil {
		t.Fatalf("count renamed items: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected rename to cascade to 2 items, got %d", count)
	}
}

func TestRenameItemNameConflict(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	for _, name := range []string{"First", "Second"} {
		if _, err := svc.CreateItem(ctx, userID, CreateItemInput{
			Name:         name,
			Quantity:     1,
			PricePerUnit: decimal.NewFromInt(1),
			Currency:     enums.CurrencyGEL,
			Category:     enums.ItemCategoryInStock,
		}); err != nil {
			t.Fatalf("seed item: %v", err)
		}
	}

	names, err := svc.ListItemNames(ctx, userID)
	if err != nil {
		t.Fatalf("list names: %v", err)
	}

	var firstID uuid.UUID
	for _, n := range names {
		if n.Name == "First" {
			firstID = n.ID
		}
	}

	_, err = svc.RenameItemName(ctx, userID, firstID, "second")
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestDeleteItemName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	userID := uuid.New()

	if _, err := svc.CreateItem(ctx, userID, CreateItemInput{
		Name:         "Ephemeral",
		Quantity:     1,
		PricePerUnit: decimal.NewFromInt(1),
		Currency:     enums.CurrencyGEL,
		Category:     enums.ItemCategoryInStock,
	}); err != nil {
		t.Fatalf("seed item: %v", err)
	}

	names, err := svc.ListItemNames(ctx, userID)
	if err != nil {
		t.Fatalf("list names: %v", err)
	}
	if err := svc.DeleteItemName(ctx, userID, names[0].ID); err != nil {
		t.Fatalf("delete name: %v", err)
	}

	// Items keep their names; only the registry entry goes away.
	items, err := svc.ListItems(ctx, userID)
	if err != nil {
		t.Fatalf("list items: %v", err)
	}
	if len(items) != 1 || items[0].Name != "Ephemeral" {
		t.Fatalf("expected item to survive registry deletion, got %+v", items)
	}

	if err := svc.DeleteItemName(ctx, userID, names[0].ID); err == nil {
		t.Fatal("expected not found on second delete")
	}
}

func TestListByCategoryScopesToOwner(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()
	owner := uuid.New()
	other := uuid.New()

	if _, err := svc.CreateItem(ctx, owner, CreateItemInput{
		Name:         "Mine",
		Quantity:     1,
		PricePerUnit: decimal.NewFromInt(1),
		Currency:     enums.CurrencyGEL,
		Category:     enums.ItemCategoryInStock,
	}); err != nil {
		t.Fatalf("seed owner item: %v", err)
	}
	if _, err := svc.CreateItem(ctx, other, CreateItemInput{
		Name:         "Theirs",
		Quantity:     1,
		PricePerUnit: decimal.NewFromInt(1),
		Currency:     enums.CurrencyGEL,
		Category:     enums.ItemCategoryInStock,
	}); err != nil {
		t.Fatalf("seed other item: %v", err)
	}

	mine, err := svc.ListByCategory(ctx, owner, enums.ItemCategoryInStock)
	if err != nil {
		t.Fatalf("list by category: %v", err)
	}
	if len(mine) != 1 || mine[0].Name != "Mine" {
		t.Fatalf("expected owner scoping, got %+v", mine)
	}

	if _, err := svc.ListByCategory(ctx, owner, enums.ItemCategory("bogus")); err == nil {
		t.Fatal("expected validation error for invalid category")
	}
}
