package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"stocktally-backend/api/responses"
	"stocktally-backend/api/validators"
	itemsvc "stocktally-backend/internal/items"
	"stocktally-backend/pkg/enums"
	pkgerrors "stocktally-backend/pkg/errors"
	"stocktally-backend/pkg/logger"
)

// ItemCreate handles inventory item creation.
func ItemCreate(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.CreateItem(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ItemUpdate handles partial updates of an inventory item.
func ItemUpdate(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toUpdateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.UpdateItem(r.Context(), userID, itemID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// ItemDelete removes an inventory item.
func ItemDelete(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItem(r.Context(), userID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ItemDetail loads one inventory item.
func ItemDetail(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetItem(r.Context(), userID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

// ItemList returns the user's items, optionally filtered by category.
func ItemList(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if raw := strings.TrimSpace(r.URL.Query().Get("category")); raw != "" {
			category, err := enums.ParseItemCategory(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category"))
				return
			}
			items, err := svc.ListByCategory(r.Context(), userID, category)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
			responses.WriteSuccess(w, items)
			return
		}

		items, err := svc.ListItems(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// ItemSearch matches items against a free-text query.
func ItemSearch(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 200)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := validators.SanitizeString(r.URL.Query().Get("q"), 128)
		items, err := svc.SearchItems(r.Context(), userID, query, limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, items)
	}
}

// ItemMove shifts stock between category buckets.
func ItemMove(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "item service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := parseIDParam(r, "itemId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload moveItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		category, err := enums.ParseItemCategory(strings.TrimSpace(payload.TargetCategory))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid target category"))
			return
		}

		item, err := svc.MoveItem(r.Context(), userID, itemID, itemsvc.MoveItemInput{
			TargetCategory: category,
			Quantity:       payload.Quantity,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}

type createItemRequest struct {
	Name               string           `json:"name" validate:"required"`
	Description        *string          `json:"description,omitempty"`
	Quantity           int              `json:"quantity" validate:"min=0"`
	PricePerUnit       decimal.Decimal  `json:"price_per_unit"`
	Currency           string           `json:"currency" validate:"required"`
	PurchasePrice      *decimal.Decimal `json:"purchase_price,omitempty"`
	PurchaseCurrency   *string          `json:"purchase_currency,omitempty"`
	Category           string           `json:"category" validate:"required"`
	Location           *string          `json:"location,omitempty"`
	SkipDuplicateCheck bool             `json:"skip_duplicate_check,omitempty"`
}

func (r createItemRequest) toCreateInput() (itemsvc.CreateItemInput, error) {
	currency, err := enums.ParseCurrency(strings.TrimSpace(r.Currency))
	if err != nil {
		return itemsvc.CreateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
	}
	category, err := enums.ParseItemCategory(strings.TrimSpace(r.Category))
	if err != nil {
		return itemsvc.CreateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
	}
	purchaseCurrency, err := parseOptionalCurrency(r.PurchaseCurrency)
	if err != nil {
		return itemsvc.CreateItemInput{}, err
	}
	return itemsvc.CreateItemInput{
		Name:               r.Name,
		Description:        r.Description,
		Quantity:           r.Quantity,
		PricePerUnit:       r.PricePerUnit,
		Currency:           currency,
		PurchasePrice:      r.PurchasePrice,
		PurchaseCurrency:   purchaseCurrency,
		Category:           category,
		Location:           r.Location,
		SkipDuplicateCheck: r.SkipDuplicateCheck,
	}, nil
}

type updateItemRequest struct {
	Name             *string          `json:"name,omitempty"`
	Description      *string          `json:"description,omitempty"`
	Quantity         *int             `json:"quantity,omitempty" validate:"omitempty,min=0"`
	PricePerUnit     *decimal.Decimal `json:"price_per_unit,omitempty"`
	Currency         *string          `json:"currency,omitempty"`
	PurchasePrice    *decimal.Decimal `json:"purchase_price,omitempty"`
	PurchaseCurrency *string          `json:"purchase_currency,omitempty"`
	Category         *string          `json:"category,omitempty"`
	Location         *string          `json:"location,omitempty"`
}

func (r updateItemRequest) toUpdateInput() (itemsvc.UpdateItemInput, error) {
	currency, err := parseOptionalCurrency(r.Currency)
	if err != nil {
		return itemsvc.UpdateItemInput{}, err
	}
	purchaseCurrency, err := parseOptionalCurrency(r.PurchaseCurrency)
	if err != nil {
		return itemsvc.UpdateItemInput{}, err
	}

	var category *enums.ItemCategory
	if r.Category != nil {
		parsed, err := enums.ParseItemCategory(strings.TrimSpace(*r.Category))
		if err != nil {
			return itemsvc.UpdateItemInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid category")
		}
		category = &parsed
	}

	return itemsvc.UpdateItemInput{
		Name:             r.Name,
		Description:      r.Description,
		Quantity:         r.Quantity,
		PricePerUnit:     r.PricePerUnit,
		Currency:         currency,
		PurchasePrice:    r.PurchasePrice,
		PurchaseCurrency: purchaseCurrency,
		Category:         category,
		Location:         r.Location,
	}, nil
}

type moveItemRequest struct {
	TargetCategory string `json:"target_category" validate:"required"`
	Quantity       int    `json:"quantity" validate:"required,min=1"`
}

func parseOptionalCurrency(raw *string) (*enums.Currency, error) {
	if raw == nil {
		return nil, nil
	}
	parsed, err := enums.ParseCurrency(strings.TrimSpace(*raw))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid currency")
	}
	return &parsed, nil
}
