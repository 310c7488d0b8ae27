package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stocktally-backend/api/middleware"
	itemsvc "stocktally-backend/internal/items"
	"stocktally-backend/pkg/enums"
	pkgerrors "stocktally-backend/pkg/errors"
	"stocktally-backend/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("debug"), Output: io.Discard})
}

func TestItemCreate(t *testing.T) {
	logg := testLogger()
	userID := uuid.New()

	makeRequest := func(ctx context.Context, body string, stub itemsvc.Service) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/items", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req = req.WithContext(ctx)
		rec := httptest.NewRecorder()
		ItemCreate(stub, logg).ServeHTTP(rec, req)
		return rec
	}

	validBody := `{"name":"Widget","quantity":3,"price_per_unit":"10","currency":"GEL","category":"in_stock"}`

	t.Run("missing user", func(t *testing.T) {
		rec := makeRequest(context.Background(), validBody, &stubItemService{})
		if rec.Code != http.StatusUnauthorized {
			t.Fatalf("expected 401 without user, got %d", rec.Code)
		}
	})

	t.Run("invalid currency", func(t *testing.T) {
		ctx := middleware.WithUserID(context.Background(), userID.String())
		body := `{"name":"Widget","quantity":3,"price_per_unit":"10","currency":"XXX","category":"in_stock"}`
		rec := makeRequest(ctx, body, &stubItemService{})
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("expected 400 for bad currency, got %d", rec.Code)
		}
	})

	t.Run("duplicate conflict", func(t *testing.T) {
		ctx := middleware.WithUserID(context.Background(), userID.String())
		stub := &stubItemService{
			createErr: pkgerrors.New(pkgerrors.CodeConflict, "duplicate item in category"),
		}
		rec := makeRequest(ctx, validBody, stub)
		if rec.Code != http.StatusConflict {
			t.Fatalf("expected 409 for duplicate, got %d", rec.Code)
		}
	})

	t.Run("success", func(t *testing.T) {
		ctx := middleware.WithUserID(context.Background(), userID.String())
		stub := &stubItemService{}
		rec := makeRequest(ctx, validBody, stub)
		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201 on create, got %d: %s", rec.Code, rec.Body.String())
		}
		if !stub.createCalled {
			t.Fatal("expected CreateItem to be invoked")
		}
	})
}

func TestItemMoveInvalidID(t *testing.T) {
	logg := testLogger()

	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add("itemId", "not-a-uuid")
	ctx := context.WithValue(context.Background(), chi.RouteCtxKey, routeCtx)
	ctx = middleware.WithUserID(ctx, uuid.NewString())

	body := `{"target_category":"on_the_way","quantity":1}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/items/not-a-uuid/move", strings.NewReader(body))
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	ItemMove(&stubItemService{}, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid id, got %d", rec.Code)
	}
}

func TestItemSearchLimitOutOfRange(t *testing.T) {
	logg := testLogger()

	ctx := middleware.WithUserID(context.Background(), uuid.NewString())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/items/search?q=widget&limit=9999", nil)
	req = req.WithContext(ctx)
	rec := httptest.NewRecorder()
	ItemSearch(&stubItemService{}, logg).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for oversized limit, got %d", rec.Code)
	}
}

type stubItemService struct {
	createCalled bool
	createErr    error
}

func (s *stubItemService) CreateItem(ctx context.Context, userID uuid.UUID, input itemsvc.CreateItemInput) (*itemsvc.ItemDTO, error) {
	s.createCalled = true
	if s.createErr != nil {
		return nil, s.createErr
	}
	return &itemsvc.ItemDTO{
		ID:        uuid.New(),
		Name:      input.Name,
		Quantity:  input.Quantity,
		Currency:  input.Currency,
		Category:  input.Category,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (s *stubItemService) UpdateItem(ctx context.Context, userID, itemID uuid.UUID, input itemsvc.UpdateItemInput) (*itemsvc.ItemDTO, error) {
	panic("unimplemented")
}

func (s *stubItemService) DeleteItem(ctx context.Context, userID, itemID uuid.UUID) error {
	panic("unimplemented")
}

func (s *stubItemService) GetItem(ctx context.Context, userID, itemID uuid.UUID) (*itemsvc.ItemDTO, error) {
	panic("unimplemented")
}

func (s *stubItemService) ListItems(ctx context.Context, userID uuid.UUID) ([]itemsvc.ItemDTO, error) {
	panic("unimplemented")
}

func (s *stubItemService) ListByCategory(ctx context.Context, userID uuid.UUID, category enums.ItemCategory) ([]itemsvc.ItemDTO, error) {
	panic("unimplemented")
}

func (s *stubItemService) SearchItems(ctx context.Context, userID uuid.UUID, query string, limit int) ([]itemsvc.ItemDTO, error) {
	return nil, nil
}

func (s *stubItemService) MoveItem(ctx context.Context, userID, itemID uuid.UUID, input itemsvc.MoveItemInput) (*itemsvc.ItemDTO, error) {
	panic("unimplemented")
}

func (s *stubItemService) ListItemNames(ctx context.Context, userID uuid.UUID) ([]itemsvc.ItemNameDTO, error) {
	panic("unimplemented")
}

func (s *stubItemService) RenameItemName(ctx context.Context, userID, nameID uuid.UUID, newName string) (*itemsvc.ItemNameDTO, error) {
	panic("unimplemented")
}

func (s *stubItemService) DeleteItemName(ctx context.Context, userID, nameID uuid.UUID) error {
	panic("unimplemented")
}
