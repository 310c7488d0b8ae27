package controllers

import (
	"net/http"

	"stocktally-backend/api/responses"
	"stocktally-backend/api/validators"
	itemsvc "stocktally-backend/internal/items"
	pkgerrors "stocktally-backend/pkg/errors"
	"stocktally-backend/pkg/logger"
)

// ItemNameList returns the user's item name registry.
func ItemNameList(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		names, err := svc.ListItemNames(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, names)
	}
}

// ItemNameRename renames a registry entry and cascades to matching items.
func ItemNameRename(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		nameID, err := parseIDParam(r, "nameId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload renameItemNameRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		name, err := svc.RenameItemName(r.Context(), userID, nameID, payload.Name)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, name)
	}
}

// ItemNameDelete removes a registry entry. Items keep their current names.
func ItemNameDelete(svc itemsvc.Service, logg *logger.Logger) http.HandlerFunc {
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

		nameID, err := parseIDParam(r, "nameId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteItemName(r.Context(), userID, nameID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type renameItemNameRequest struct {
	Name string `json:"name" validate:"required"`
}
