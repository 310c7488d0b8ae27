package items

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"stocktally-backend/pkg/db/models"
	"stocktally-backend/pkg/enums"
)

// Repository wires together item and item-name persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

// Create inserts the item.
func (r *Repository) Create(ctx context.Context, item *models.Item) (*models.Item, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// FindByID loads an item scoped to its owner.
func (r *Repository) FindByID(ctx context.Context, userID, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// lockForUpdate applies a SELECT ... FOR UPDATE clause on dialects that
// support it. Row locks are a postgres concern; sqlite serializes writers.
func lockForUpdate(db *gorm.DB) *gorm.DB {
	if db.Dialector.Name() != "postgres" {
		return db
	}
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// FindByIDForUpdate loads an owner-scoped item under a row lock. Only
// meaningful inside a transaction.
func (r *Repository) FindByIDForUpdate(ctx context.Context, userID, id uuid.UUID) (*models.Item, error) {
	var item models.Item
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("user_id = ?", userID).
		First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindDuplicate returns the item with exactly the same (name, category), or
// gorm.ErrRecordNotFound. Only the name registry dedupes case-insensitively;
// item rows themselves match exact.
func (r *Repository) FindDuplicate(ctx context.Context, userID uuid.UUID, name string, category enums.ItemCategory) (*models.Item, error) {
	var item models.Item
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND name = ? AND category = ?", userID, name, category).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// FindDuplicateForUpdate is FindDuplicate under a row lock.
func (r *Repository) FindDuplicateForUpdate(ctx context.Context, userID uuid.UUID, name string, category enums.ItemCategory) (*models.Item, error) {
	var item models.Item
	if err := lockForUpdate(r.db.WithContext(ctx)).
		Where("user_id = ? AND name = ? AND category = ?", userID, name, category).
		First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// List returns every item owned by the user, newest first.
func (r *Repository) List(ctx context.Context, userID uuid.UUID) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListByCategory returns the user's items in one lifecycle category.
func (r *Repository) ListByCategory(ctx context.Context, userID uuid.UUID, category enums.ItemCategory) ([]models.Item, error) {
	var items []models.Item
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND category = ?", userID, category).
		Order("created_at DESC").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Search matches name, description, category, and location case-insensitively.
func (r *Repository) Search(ctx context.Context, userID uuid.UUID, query string, limit int) ([]models.Item, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	var items []models.Item
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Where(
			"lower(name) LIKE ? OR lower(COALESCE(description, '')) LIKE ? OR lower(category) LIKE ? OR lower(COALESCE(location, '')) LIKE ?",
			pattern, pattern, pattern, pattern,
		).
		Order("created_at DESC").
		Limit(limit).
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Save persists all fields of the item.
func (r *Repository) Save(ctx context.Context, item *models.Item) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// Delete removes the owner-scoped item.
func (r *Repository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Item{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// RenameAll updates the name of every item sharing oldName case-insensitively
// and returns the number of rows touched.
func (r *Repository) RenameAll(ctx context.Context, userID uuid.UUID, oldName, newName string) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("user_id = ? AND lower(name) = lower(?)", userID, oldName).
		Update("name", newName)
	return result.RowsAffected, result.Error
}

// AppendHistory records a quantity change row.
func (r *Repository) AppendHistory(ctx context.Context, entry *models.ItemHistory) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindName returns the registry entry matching name case-insensitively.
func (r *Repository) FindName(ctx context.Context, userID uuid.UUID, name string) (*models.ItemName, error) {
	var entry models.ItemName
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND lower(name) = lower(?)", userID, name).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// FindNameByID loads a registry entry scoped to its owner.
func (r *Repository) FindNameByID(ctx context.Context, userID, id uuid.UUID) (*models.ItemName, error) {
	var entry models.ItemName
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// CreateName inserts a registry entry.
func (r *Repository) CreateName(ctx context.Context, entry *models.ItemName) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// SaveName persists a registry entry.
func (r *Repository) SaveName(ctx context.Context, entry *models.ItemName) error {
	return r.db.WithContext(ctx).Save(entry).Error
}

// ListNames returns the user's registry entries alphabetically.
func (r *Repository) ListNames(ctx context.Context, userID uuid.UUID) ([]models.ItemName, error) {
	var entries []models.ItemName
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("lower(name) ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

// DeleteName removes the owner-scoped registry entry.
func (r *Repository) DeleteName(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.ItemName{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
