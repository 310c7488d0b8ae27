package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"stocktally-backend/api/middleware"
	pkgerrors "stocktally-backend/pkg/errors"
)

const dateLayout = "2006-01-02"

func requireUserID(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id")
	}
	return id, nil
}

func parseIDParam(r *http.Request, name string) (uuid.UUID, error) {
	raw := strings.TrimSpace(chi.URLParam(r, name))
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid "+name)
	}
	return id, nil
}

func parseDateQuery(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, name+" is required")
	}
	date, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, name+" must be YYYY-MM-DD")
	}
	return date, nil
}

func dateRangeQuery(r *http.Request) (time.Time, time.Time, error) {
	start, err := parseDateQuery(r, "start_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseDateQuery(r, "end_date")
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, pkgerrors.New(pkgerrors.CodeValidation, "end_date must not precede start_date")
	}
	return start, end, nil
}
