package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"stocktrail/internal/model"
	"stocktrail/internal/store"
)

// ItemsHandler handles item endpoints.
type ItemsHandler struct {
	DB *sql.DB
}

// updateItemRequest is a partial update: absent fields are left unchanged.
type updateItemRequest struct {
	Name      *string `json:"name"`
	Quantity  *int    `json:"quantity"`
	Location  *string `json:"location"`
	SKU       *string `json:"sku"`
	SectionID *int64  `json:"section_id"`
}

// Get handles GET /api/items/{id}. The response bundles the item with its
// section and the ten most recent audit and transaction entries.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	section, err := store.GetSection(r.Context(), h.DB, item.SectionID)
	if err != nil {
		slog.Error("getting item section", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch item")
		return
	}

	logs, err := store.ListItemAuditLogs(r.Context(), h.DB, id, 10)
	if err != nil {
		slog.Error("listing audit logs", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch item")
		return
	}
	if logs == nil {
		logs = []model.AuditLog{}
	}

	txns, err := store.ListItemTransactions(r.Context(), h.DB, id, 10)
	if err != nil {
		slog.Error("listing stock transactions", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch item")
		return
	}
	if txns == nil {
		txns = []model.StockTransaction{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"item":         item,
		"section":      section,
		"audit_logs":   logs,
		"transactions": txns,
	})
}

// Update handles PATCH /api/items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	var req updateItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	patch := store.ItemPatch{
		Name:      req.Name,
		Quantity:  req.Quantity,
		Location:  req.Location,
		SKU:       req.SKU,
		SectionID: req.SectionID,
	}

	item, err := store.UpdateItem(r.Context(), h.DB, id, patch)
	if err != nil {
		slog.Error("updating item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update item")
		return
	}
	if item == nil {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Delete handles DELETE /api/items/{id}.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	deleted, err := store.DeleteItem(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("deleting item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete item")
		return
	}
	if !deleted {
		jsonError(w, http.StatusNotFound, "item not found")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}
