package sales

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"stocktally-backend/pkg/db/models"
	"stocktally-backend/pkg/enums"
	pkgerrors "stocktally-backend/pkg/errors"
)

// Service exposes sale recording, mutation, and reporting operations.
type Service interface {
	CreateSale(ctx context.Context, userID uuid.UUID, input CreateSaleInput) (*SaleGroupDTO, error)
	CreateMultiItemSale(ctx context.Context, userID uuid.UUID, input CreateMultiSaleInput) (*SaleGroupDTO, error)
	UpdateSale(ctx context.Context, userID, saleID uuid.UUID, input UpdateSaleInput) (*SaleDTO, error)
	ReturnSale(ctx context.Context, userID, saleID uuid.UUID, addToStock bool) (*SaleDTO, error)
	DeleteSale(ctx context.Context, userID, saleID uuid.UUID) error
	ListGroupedByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]SaleGroupDTO, error)
	ListGroupedByRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (*RangeResult, error)
	Statistics(ctx context.Context, userID uuid.UUID, start, end time.Time) (*StatisticsDTO, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type service struct {
	repo     *Repository
	dbClient txRunner
}

// NewService constructs a sales service instance.
func NewService(repo *Repository, dbClient txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sales repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) CreateSale(ctx context.Context, userID uuid.UUID, input CreateSaleInput) (*SaleGroupDTO, error) {
	return s.createGroup(ctx, userID, CreateMultiSaleInput{
		Lines:      []SaleLineInput{input.Line},
		BuyerName:  input.BuyerName,
		BuyerPhone: input.BuyerPhone,
		Notes:      input.Notes,
		SaleDate:   input.SaleDate,
	})
}

func (s *service) CreateMultiItemSale(ctx context.Context, userID uuid.UUID, input CreateMultiSaleInput) (*SaleGroupDTO, error) {
	if len(input.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "at least one sale line is required")
	}
	return s.createGroup(ctx, userID, input)
}

// createGroup validates every line against locked stock before any write,
// then inserts the group and lines and decrements stock in one transaction.
func (s *service) createGroup(ctx context.Context, userID uuid.UUID, input CreateMultiSaleInput) (*SaleGroupDTO, error) {
	for _, line := range input.Lines {
		if line.Quantity <= 0 {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
		}
		if line.SalePrice.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price cannot be negative")
		}
	}

	saleDate := dateOnly(time.Now().UTC())
	if input.SaleDate != nil {
		saleDate = dateOnly(*input.SaleDate)
	}

	// Lines are locked in item-id order so two concurrent sales touching the
	// same items cannot deadlock.
	lines := make([]SaleLineInput, len(input.Lines))
	copy(lines, input.Lines)
	sort.Slice(lines, func(i, j int) bool {
		return lines[i].ItemID.String() < lines[j].ItemID.String()
	})

	var group *models.SaleGroup
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		lockedItems := make(map[uuid.UUID]*models.Item, len(lines))
		requested := make(map[uuid.UUID]int, len(lines))
		for _, line := range lines {
			if _, seen := lockedItems[line.ItemID]; !seen {
				item, err := repo.FindItemForUpdate(ctx, userID, line.ItemID)
				if err != nil {
					if errors.Is(err, gorm.ErrRecordNotFound) {
						return pkgerrors.New(pkgerrors.CodeNotFound, "item not found").
							WithDetails(map[string]any{"item_id": line.ItemID})
					}
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock item")
				}
				lockedItems[line.ItemID] = item
			}
			requested[line.ItemID] += line.Quantity
		}

		for itemID, item := range lockedItems {
			if item.Category != enums.ItemCategoryInStock {
				return pkgerrors.New(pkgerrors.CodeValidation, "item is not in stock").
					WithDetails(map[string]any{"item_id": itemID, "category": item.Category})
			}
			if requested[itemID] > item.Quantity {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock to sell").
					WithDetails(map[string]any{
						"item_id":   itemID,
						"item_name": item.Name,
						"available": item.Quantity,
						"requested": requested[itemID],
					})
			}
		}

		now := time.Now().UTC()
		group = &models.SaleGroup{
			ID:         uuid.New(),
			UserID:     userID,
			BuyerName:  trimPtr(input.BuyerName),
			BuyerPhone: trimPtr(input.BuyerPhone),
			Notes:      trimPtr(input.Notes),
			SaleDate:   saleDate,
		}
		if err := repo.CreateGroup(ctx, group); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create sale group")
		}

		for _, line := range input.Lines {
			item := lockedItems[line.ItemID]
			itemID := item.ID
			sale := &models.Sale{
				ID:           uuid.New(),
				UserID:       userID,
				SaleGroupID:  group.ID,
				ItemID:       &itemID,
				ItemName:     item.Name,
				QuantitySold: line.Quantity,
				SalePrice:    line.SalePrice,
				TotalAmount:  lineTotal(line.Quantity, line.SalePrice),
				Currency:     item.Currency,
				Notes:        trimPtr(line.Notes),
				Status:       enums.SaleStatusActive,
				SaleDate:     saleDate,
			}
			if err := repo.CreateSale(ctx, sale); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create sale line")
			}
			group.Sales = append(group.Sales, *sale)
		}

		for _, item := range sortedItems(lockedItems) {
			sold := requested[item.ID]
			if err := repo.AppendHistory(ctx, &models.ItemHistory{
				ID:             uuid.New(),
				ItemID:         &item.ID,
				UserID:         userID,
				QuantityBefore: item.Quantity,
				QuantityAfter:  item.Quantity - sold,
				ChangeAmount:   -sold,
				ChangedAt:      now,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record stock change")
			}
			item.Quantity -= sold
			if err := repo.SaveItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decrement stock")
			}
		}

		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return groupFromModel(group), nil
}

func (s *service) UpdateSale(ctx context.Context, userID, saleID uuid.UUID, input UpdateSaleInput) (*SaleDTO, error) {
	if input.Quantity != nil && *input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if input.SalePrice != nil && input.SalePrice.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "sale price cannot be negative")
	}

	var updated *models.Sale
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := repo.FindSaleByIDForUpdate(ctx, userID, saleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale")
		}
		if sale.Status == enums.SaleStatusReturned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "returned sales cannot be edited")
		}

		// The quantity delta is checked against stock under the same lock
		// that applies it, so no concurrent sale can slip between. A sale
		// whose item is gone cannot change quantity: there is no stock row
		// left to keep honest.
		if input.Quantity != nil && *input.Quantity != sale.QuantitySold {
			if sale.ItemID == nil {
				return pkgerrors.New(pkgerrors.CodeNotFound, "associated item not found")
			}
			item, err := repo.FindItemForUpdate(ctx, userID, *sale.ItemID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeNotFound, "associated item not found")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock item")
			}
			delta := *input.Quantity - sale.QuantitySold
			if delta > item.Quantity {
				return pkgerrors.New(pkgerrors.CodeInsufficientStock, "not enough stock for the new quantity").
					WithDetails(map[string]any{"available": item.Quantity, "requested_delta": delta})
			}
			if err := repo.AppendHistory(ctx, &models.ItemHistory{
				ID:             uuid.New(),
				ItemID:         &item.ID,
				UserID:         userID,
				QuantityBefore: item.Quantity,
				QuantityAfter:  item.Quantity - delta,
				ChangeAmount:   -delta,
				ChangedAt:      time.Now().UTC(),
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record stock change")
			}
			item.Quantity -= delta
			if err := repo.SaveItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "adjust stock")
			}
		}

		if input.Quantity != nil {
			sale.QuantitySold = *input.Quantity
		}
		if input.SalePrice != nil {
			sale.SalePrice = *input.SalePrice
		}
		if input.Notes != nil {
			sale.Notes = trimPtr(input.Notes)
		}
		sale.TotalAmount = lineTotal(sale.QuantitySold, sale.SalePrice)

		if input.BuyerName != nil || input.BuyerPhone != nil || input.SaleDate != nil {
			group, err := repo.FindGroupByID(ctx, userID, sale.SaleGroupID)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale group")
			}
			if input.BuyerName != nil {
				group.BuyerName = trimPtr(input.BuyerName)
			}
			if input.BuyerPhone != nil {
				group.BuyerPhone = trimPtr(input.BuyerPhone)
			}
			if input.SaleDate != nil {
				group.SaleDate = dateOnly(*input.SaleDate)
				sale.SaleDate = group.SaleDate
			}
			if err := repo.SaveGroup(ctx, group); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save sale group")
			}
		}

		if err := repo.SaveSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save sale")
		}
		updated = sale
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return saleFromModel(updated), nil
}

// ReturnSale marks the sale returned and optionally restocks the item. The
// restock is skipped silently when the item no longer exists.
func (s *service) ReturnSale(ctx context.Context, userID, saleID uuid.UUID, addToStock bool) (*SaleDTO, error) {
	var returned *models.Sale
	txErr := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		sale, err := repo.FindSaleByIDForUpdate(ctx, userID, saleID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load sale")
		}
		if sale.Status == enums.SaleStatusReturned {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "sale is already returned")
		}

		now := time.Now().UTC()
		sale.Status = enums.SaleStatusReturned
		sale.ReturnedAt = &now

		if addToStock && sale.ItemID != nil {
			item, err := repo.FindItemForUpdate(ctx, userID, *sale.ItemID)
			switch {
			case err == nil:
				if err := repo.AppendHistory(ctx, &models.ItemHistory{
					ID:             uuid.New(),
					ItemID:         &item.ID,
					UserID:         userID,
					QuantityBefore: item.Quantity,
					QuantityAfter:  item.Quantity + sale.QuantitySold,
					ChangeAmount:   sale.QuantitySold,
					ChangedAt:      now,
				}); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "record restock")
				}
				item.Quantity += sale.QuantitySold
				if err := repo.SaveItem(ctx, item); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "restock item")
				}
			case errors.Is(err, gorm.ErrRecordNotFound):
				// item deleted since the sale; nothing to restock
			default:
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock item")
			}
		}

		if err := repo.SaveSale(ctx, sale); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "save sale")
		}
		returned = sale
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	return saleFromModel(returned), nil
}

// DeleteSale removes the record outright. Stock is never adjusted; returns
// are the operation that restocks.
func (s *service) DeleteSale(ctx context.Context, userID, saleID uuid.UUID) error {
	if err := s.repo.DeleteSale(ctx, userID, saleID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "sale not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete sale")
	}
	return nil
}

func (s *service) ListGroupedByDate(ctx context.Context, userID uuid.UUID, date time.Time) ([]SaleGroupDTO, error) {
	groups, err := s.repo.ListGroupsByDateRange(ctx, userID, date, date)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sales")
	}
	return nonEmptyGroups(groups), nil
}

func (s *service) ListGroupedByRange(ctx context.Context, userID uuid.UUID, start, end time.Time) (*RangeResult, error) {
	if end.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date is before start date")
	}
	groups, err := s.repo.ListGroupsByDateRange(ctx, userID, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list sales")
	}
	stats, err := s.Statistics(ctx, userID, start, end)
	if err != nil {
		return nil, err
	}
	return &RangeResult{
		Sales:      nonEmptyGroups(groups),
		Statistics: *stats,
	}, nil
}

func (s *service) Statistics(ctx context.Context, userID uuid.UUID, start, end time.Time) (*StatisticsDTO, error) {
	if end.Before(start) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "end date is before start date")
	}
	rows, err := s.repo.Statistics(ctx, userID, start, end)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "aggregate statistics")
	}

	stats := &StatisticsDTO{ByCurrency: make(map[enums.Currency]CurrencyStats, len(rows))}
	for _, row := range rows {
		bucket := CurrencyStats{
			SalesCount: row.SalesCount,
			ItemsSold:  row.ItemsSold,
			Revenue:    row.Revenue,
			Cost:       row.Cost,
			Profit:     row.Revenue.Sub(row.Cost),
		}
		stats.ByCurrency[row.Currency] = bucket

		stats.Totals.SalesCount += bucket.SalesCount
		stats.Totals.ItemsSold += bucket.ItemsSold
		stats.Totals.Revenue = stats.Totals.Revenue.Add(bucket.Revenue)
		stats.Totals.Cost = stats.Totals.Cost.Add(bucket.Cost)
		stats.Totals.Profit = stats.Totals.Profit.Add(bucket.Profit)
	}
	return stats, nil
}

func nonEmptyGroups(groups []models.SaleGroup) []SaleGroupDTO {
	out := make([]SaleGroupDTO, 0, len(groups))
	for i := range groups {
		if len(groups[i].Sales) == 0 {
			continue
		}
		out = append(out, *groupFromModel(&groups[i]))
	}
	return out
}

func sortedItems(items map[uuid.UUID]*models.Item) []*models.Item {
	out := make([]*models.Item, 0, len(items))
	for _, item := range items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID.String() < out[j].ID.String()
	})
	return out
}

func lineTotal(quantity int, price decimal.Decimal) decimal.Decimal {
	return price.Mul(decimal.NewFromInt(int64(quantity)))
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
