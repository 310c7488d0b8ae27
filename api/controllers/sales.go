package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"stocktally-backend/api/responses"
	"stocktally-backend/api/validators"
	salesvc "stocktally-backend/internal/sales"
	pkgerrors "stocktally-backend/pkg/errors"
	"stocktally-backend/pkg/logger"
)

// SaleCreate records a single-item sale.
func SaleCreate(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.CreateSale(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, group)
	}
}

// MultiSaleCreate records one buyer transaction spanning several items.
func MultiSaleCreate(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload createMultiSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		group, err := svc.CreateMultiItemSale(r.Context(), userID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, group)
	}
}

// SaleUpdate mutates an active sale line and its group fields.
func SaleUpdate(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saleID, err := parseIDParam(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.UpdateSale(r.Context(), userID, saleID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sale)
	}
}

// SaleReturn marks a sale line returned, optionally restocking the item.
func SaleReturn(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saleID, err := parseIDParam(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload returnSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		sale, err := svc.ReturnSale(r.Context(), userID, saleID, payload.AddToStock)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, sale)
	}
}

// SaleDelete removes a sale line without touching stock.
func SaleDelete(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		saleID, err := parseIDParam(r, "saleId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteSale(r.Context(), userID, saleID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SalesByDate lists a single day's buyer transactions.
func SalesByDate(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		date, err := parseDateQuery(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		groups, err := svc.ListGroupedByDate(r.Context(), userID, date)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, groups)
	}
}

// SalesByRange lists transactions over a date range with their statistics.
func SalesByRange(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start, end, err := dateRangeQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListGroupedByRange(r.Context(), userID, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// SalesStatistics aggregates revenue, cost, and profit per currency.
func SalesStatistics(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		start, end, err := dateRangeQuery(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		stats, err := svc.Statistics(r.Context(), userID, start, end)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, stats)
	}
}

type saleLineRequest struct {
	ItemID    string          `json:"item_id" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,min=1"`
	SalePrice decimal.Decimal `json:"sale_price"`
	Notes     *string         `json:"notes,omitempty"`
}

func (l saleLineRequest) toInput() (salesvc.SaleLineInput, error) {
	itemID, err := uuid.Parse(l.ItemID)
	if err != nil {
		return salesvc.SaleLineInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid item_id")
	}
	return salesvc.SaleLineInput{
		ItemID:    itemID,
		Quantity:  l.Quantity,
		SalePrice: l.SalePrice,
		Notes:     l.Notes,
	}, nil
}

type createSaleRequest struct {
	saleLineRequest
	BuyerName  *string `json:"buyer_name,omitempty"`
	BuyerPhone *string `json:"buyer_phone,omitempty"`
	SaleNotes  *string `json:"sale_notes,omitempty"`
	SaleDate   *string `json:"sale_date,omitempty"`
}

func (r createSaleRequest) toInput() (salesvc.CreateSaleInput, error) {
	line, err := r.saleLineRequest.toInput()
	if err != nil {
		return salesvc.CreateSaleInput{}, err
	}
	saleDate, err := parseOptionalDate(r.SaleDate)
	if err != nil {
		return salesvc.CreateSaleInput{}, err
	}
	return salesvc.CreateSaleInput{
		Line:       line,
		BuyerName:  r.BuyerName,
		BuyerPhone: r.BuyerPhone,
		Notes:      r.SaleNotes,
		SaleDate:   saleDate,
	}, nil
}

type createMultiSaleRequest struct {
	Items      []saleLineRequest `json:"items" validate:"required,min=1,dive"`
	BuyerName  *string           `json:"buyer_name,omitempty"`
	BuyerPhone *string           `json:"buyer_phone,omitempty"`
	Notes      *string           `json:"notes,omitempty"`
	SaleDate   *string           `json:"sale_date,omitempty"`
}

func (r createMultiSaleRequest) toInput() (salesvc.CreateMultiSaleInput, error) {
	lines := make([]salesvc.SaleLineInput, 0, len(r.Items))
	for _, item := range r.Items {
		line, err := item.toInput()
		if err != nil {
			return salesvc.CreateMultiSaleInput{}, err
		}
		lines = append(lines, line)
	}
	saleDate, err := parseOptionalDate(r.SaleDate)
	if err != nil {
		return salesvc.CreateMultiSaleInput{}, err
	}
	return salesvc.CreateMultiSaleInput{
		Lines:      lines,
		BuyerName:  r.BuyerName,
		BuyerPhone: r.BuyerPhone,
		Notes:      r.Notes,
		SaleDate:   saleDate,
	}, nil
}

type updateSaleRequest struct {
	Quantity   *int             `json:"quantity,omitempty" validate:"omitempty,min=1"`
	SalePrice  *decimal.Decimal `json:"sale_price,omitempty"`
	Notes      *string          `json:"notes,omitempty"`
	BuyerName  *string          `json:"buyer_name,omitempty"`
	BuyerPhone *string          `json:"buyer_phone,omitempty"`
	SaleDate   *string          `json:"sale_date,omitempty"`
}

func (r updateSaleRequest) toInput() (salesvc.UpdateSaleInput, error) {
	saleDate, err := parseOptionalDate(r.SaleDate)
	if err != nil {
		return salesvc.UpdateSaleInput{}, err
	}
	return salesvc.UpdateSaleInput{
		Quantity:   r.Quantity,
		SalePrice:  r.SalePrice,
		Notes:      r.Notes,
		BuyerName:  r.BuyerName,
		BuyerPhone: r.BuyerPhone,
		SaleDate:   saleDate,
	}, nil
}

type returnSaleRequest struct {
	AddToStock bool `json:"add_to_stock"`
}

func parseOptionalDate(raw *string) (*time.Time, error) {
	if raw == nil {
		return nil, nil
	}
	date, err := time.Parse(dateLayout, *raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "sale_date must be YYYY-MM-DD")
	}
	return &date, nil
}
