package items

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"stocktally-backend/pkg/db/models"
	"stocktally-backend/pkg/enums"
	pkgerrors "stocktally-backend/pkg/errors"
)

// Service exposes inventory item management operations.
type Service interface {
	CreateItem(ctx context.Context, userID uuid.UUID, input CreateItemInput) (*ItemDTO, error)
	UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error
	GetItem(ctx context.Context, userID, itemID uuid.UUID) (*ItemDTO, error)
	ListItems(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error)
	ListByCategory(ctx context.Context, userID uuid.UUID, category enums.ItemCategory) ([]ItemDTO, error)
	SearchItems(ctx context.Context, userID uuid.UUID, query string, limit int) ([]ItemDTO, error)
	MoveItem(ctx context.Context, userID, itemID uuid.UUID, input MoveItemInput) (*ItemDTO, error)

	ListItemNames(ctx context.Context, userID uuid.UUID) ([]ItemNameDTO, error)
	RenameItemName(ctx context.Context, userID, nameID uuid.UUID, newName string) (*ItemNameDTO, error)
	DeleteItemName(ctx context.Context, userID, nameID uuid.UUID) error
}

const defaultSearchLimit = 50

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     *Repository
	dbClient txRunner
}

// NewService constructs an item service instance.
func NewService(repo *Repository, dbClient txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) CreateItem(ctx context.Context, userID uuid.UUID, input CreateItemInput) (*ItemDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
	}
	if !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid item category")
	}
	if !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}
	if input.PurchaseCurrency != nil && !input.PurchaseCurrency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid purchase currency")
	}

	if !input.SkipDuplicateCheck {
		existing, err := s.repo.FindDuplicate(ctx, userID, name, input.Category)
		if err == nil {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "item already exists in this category").
				WithDetails(map[string]any{"duplicate": fromModel(existing)})
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check duplicate item")
		}
	}

	item := &models.Item{
		ID:               uuid.New(),
		UserID:           userID,
		Name:             name,
		Description:      trimPtr(input.Description),
		Quantity:         input.Quantity,
		PricePerUnit:     input.PricePerUnit,
		Currency:         input.Currency,
		PurchasePrice:    input.PurchasePrice,
		PurchaseCurrency: input.PurchaseCurrency,
		Category:         input.Category,
		Location:         trimPtr(input.Location),
	}

	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.Create(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create item")
		}
		if err := upsertName(ctx, repo, userID, name); err != nil {
			return err
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return fromModel(item), nil
}

func (s *service) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	if input.Currency != nil && !input.Currency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid currency")
	}
	if input.PurchaseCurrency != nil && !input.PurchaseCurrency.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid purchase currency")
	}
	if input.Category != nil && !input.Category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid item category")
	}
	if input.Quantity != nil && *input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	var updated *models.Item
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		item, err := repo.FindByIDForUpdate(ctx, userID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load item")
		}

		if input.Name != nil {
			name := strings.TrimSpace(*input.Name)
			if name == "" {
				return pkgerrors.New(pkgerrors.CodeValidation, "item name is required")
			}
			if !strings.EqualFold(name, item.Name) {
				if err := upsertName(ctx, repo, userID, name); err != nil {
					return err
				}
			}
			item.Name = name
		}
		if input.Description != nil {
			item.Description = trimPtr(input.Description)
		}
		if input.PricePerUnit != nil {
			item.PricePerUnit = *input.PricePerUnit
		}
		if input.Currency != nil {
			item.Currency = *input.Currency
		}
		if input.PurchasePrice != nil {
			item.PurchasePrice = input.PurchasePrice
		}
		if input.PurchaseCurrency != nil {
			item.PurchaseCurrency = input.PurchaseCurrency
		}
		if input.Category != nil {
			item.Category = *input.Category
		}
		if input.Location != nil {
			item.Location = trimPtr(input.Location)
		}

		if input.Quantity != nil && *input.Quantity != item.Quantity {
			// The history row lands before the quantity update so a failed
			// save never leaves an unexplained quantity.
			if err := repo.AppendHistory(ctx, &models.ItemHistory{
				ID:             uuid.New(),
				ItemID:         &item.ID,
				UserID:         userID,
				QuantityBefore: item.Quantity,
				QuantityAfter:  *input.Quantity,
				ChangeAmount:   *input.Quantity - item.Quantity,
				ChangedAt:      time.Now().UTC(),
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record quantity change")
			}
			item.Quantity = *input.Quantity
		}

		if err := repo.Save(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save item")
		}
		updated = item
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return fromModel(updated), nil
}

func (s *service) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	if err := s.repo.Delete(ctx, userID, itemID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete item")
	}
	return nil
}

func (s *service) GetItem(ctx context.Context, userID, itemID uuid.UUID) (*ItemDTO, error) {
	item, err := s.repo.FindByID(ctx, userID, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load item")
	}
	return fromModel(item), nil
}

func (s *service) ListItems(ctx context.Context, userID uuid.UUID) ([]ItemDTO, error) {
	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list items")
	}
	return fromModels(items), nil
}

func (s *service) ListByCategory(ctx context.Context, userID uuid.UUID, category enums.ItemCategory) ([]ItemDTO, error) {
	if !category.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid item category")
	}
	items, err := s.repo.ListByCategory(ctx, userID, category)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list items by category")
	}
	return fromModels(items), nil
}

func (s *service) SearchItems(ctx context.Context, userID uuid.UUID, query string, limit int) ([]ItemDTO, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "search query is required")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	items, err := s.repo.Search(ctx, userID, query, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search items")
	}
	return fromModels(items), nil
}

// MoveItem shifts quantity into another lifecycle category. Stock merges into
// an existing (name, category) row when one exists; a full move deletes the
// source row.
func (s *service) MoveItem(ctx context.Context, userID, itemID uuid.UUID, input MoveItemInput) (*ItemDTO, error) {
	if !input.TargetCategory.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid target category")
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "move quantity must be positive")
	}

	var result *models.Item
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		source, err := repo.FindByIDForUpdate(ctx, userID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load item")
		}
		if source.Category == input.TargetCategory {
			return pkgerrors.New(pkgerrors.CodeValidation, "item is already in the target category")
		}
		if input.Quantity > source.Quantity {
			return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock to move").
				WithDetails(map[string]any{"available": source.Quantity, "requested": input.Quantity})
		}

		now := time.Now().UTC()

		dest, err := repo.FindDuplicateForUpdate(ctx, userID, source.Name, input.TargetCategory)
		switch {
		case err == nil:
			before := dest.Quantity
			dest.Quantity += input.Quantity
			if err := repo.AppendHistory(ctx, &models.ItemHistory{
				ID:             uuid.New(),
				ItemID:         &dest.ID,
				UserID:         userID,
				QuantityBefore: before,
				QuantityAfter:  dest.Quantity,
				ChangeAmount:   input.Quantity,
				ChangedAt:      now,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record merge history")
			}
			if err := repo.Save(ctx, dest); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "merge into target item")
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			dest = &models.Item{
				ID:               uuid.New(),
				UserID:           userID,
				Name:             source.Name,
				Description:      source.Description,
				Quantity:         input.Quantity,
				PricePerUnit:     source.PricePerUnit,
				Currency:         source.Currency,
				PurchasePrice:    source.PurchasePrice,
				PurchaseCurrency: source.PurchaseCurrency,
				Category:         input.TargetCategory,
				Location:         source.Location,
			}
			if _, err := repo.Create(ctx, dest); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create target item")
			}
		default:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find target item")
		}

		if err := repo.AppendHistory(ctx, &models.ItemHistory{
			ID:             uuid.New(),
			ItemID:         &source.ID,
			UserID:         userID,
			QuantityBefore: source.Quantity,
			QuantityAfter:  source.Quantity - input.Quantity,
			ChangeAmount:   -input.Quantity,
			ChangedAt:      now,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record move history")
		}

		if input.Quantity == source.Quantity {
			if err := repo.Delete(ctx, userID, source.ID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete emptied item")
			}
		} else {
			source.Quantity -= input.Quantity
			if err := repo.Save(ctx, source); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement source item")
			}
		}

		result = dest
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return fromModel(result), nil
}

func (s *service) ListItemNames(ctx context.Context, userID uuid.UUID) ([]ItemNameDTO, error) {
	entries, err := s.repo.ListNames(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list item names")
	}
	out := make([]ItemNameDTO, 0, len(entries))
	for i := range entries {
		out = append(out, *nameFromModel(&entries[i]))
	}
	return out, nil
}

// RenameItemName renames the registry entry and cascades to every item that
// still carries the old name.
func (s *service) RenameItemName(ctx context.Context, userID, nameID uuid.UUID, newName string) (*ItemNameDTO, error) {
	newName = strings.TrimSpace(newName)
	if newName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}

	var renamed *models.ItemName
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		entry, err := repo.FindNameByID(ctx, userID, nameID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item name not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load item name")
		}

		if !strings.EqualFold(entry.Name, newName) {
			if _, err := repo.FindName(ctx, userID, newName); err == nil {
				return pkgerrors.New(pkgerrors.CodeConflict, "item name already exists")
			} else if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check item name")
			}
		}

		oldName := entry.Name
		entry.Name = newName
		if err := repo.SaveName(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rename registry entry")
		}
		if _, err := repo.RenameAll(ctx, userID, oldName, newName); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "rename items")
		}
		renamed = entry
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return nameFromModel(renamed), nil
}

func (s *service) DeleteItemName(ctx context.Context, userID, nameID uuid.UUID) error {
	if err := s.repo.DeleteName(ctx, userID, nameID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item name not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete item name")
	}
	return nil
}

func upsertName(ctx context.Context, repo *Repository, userID uuid.UUID, name string) error {
	if _, err := repo.FindName(ctx, userID, name); err == nil {
		return nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check item name")
	}
	if err := repo.CreateName(ctx, &models.ItemName{
		ID:     uuid.New(),
		UserID: userID,
		Name:   name,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "register item name")
	}
	return nil
}

func trimPtr(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
