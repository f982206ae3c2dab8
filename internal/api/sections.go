package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"strconv"

	"stocktrail/internal/model"
	"stocktrail/internal/store"
)

// SectionsHandler handles section hierarchy endpoints.
type SectionsHandler struct {
	DB *sql.DB
}

type createSectionRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	ParentID    *int64 `json:"parent_id"`
}

type createItemRequest struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
	Location string `json:"location"`
	SKU      string `json:"sku"`
}

// sectionEntryRequest is the combined create request for POST
// /api/sections/{id}: the type tag is decoded once, then dispatched to the
// item or subsection create operation.
type sectionEntryRequest struct {
	Type        string `json:"type"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Location    string `json:"location"`
	SKU         string `json:"sku"`
}

// List handles GET /api/sections, returning the caller's organization
// sections as a flat list.
func (h *SectionsHandler) List(w http.ResponseWriter, r *http.Request) {
	user, err := currentUser(r, h.DB)
	if err != nil {
		slog.Error("getting current user", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if user.OrganizationID == nil {
		jsonError(w, http.StatusBadRequest, "organization not found")
		return
	}

	sections, err := store.ListOrganizationSections(r.Context(), h.DB, *user.OrganizationID)
	if err != nil {
		slog.Error("listing sections", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch sections")
		return
	}
	if sections == nil {
		sections = []model.Section{}
	}
	jsonResponse(w, http.StatusOK, sections)
}

// Create handles POST /api/sections.
func (h *SectionsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createSectionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	user, err := currentUser(r, h.DB)
	if err != nil {
		slog.Error("getting current user", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if user.OrganizationID == nil {
		jsonError(w, http.StatusBadRequest, "organization not found")
		return
	}

	section, err := store.CreateSection(r.Context(), h.DB, req.Name, req.Description, req.ParentID, *user.OrganizationID)
	if err != nil {
		slog.Error("creating section", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create section")
		return
	}
	jsonResponse(w, http.StatusCreated, section)
}

// Get handles GET /api/sections/{id}, returning the section with its direct
// items and subsections.
func (h *SectionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid section id")
		return
	}

	section, err := store.GetSection(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting section", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch section")
		return
	}
	if section == nil {
		jsonError(w, http.StatusNotFound, "section not found")
		return
	}

	items, err := store.ListSectionItems(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("listing section items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch section")
		return
	}
	if items == nil {
		items = []model.Item{}
	}

	subsections, err := store.ListSubsections(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("listing subsections", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch section")
		return
	}
	if subsections == nil {
		subsections = []model.Section{}
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"section":     section,
		"items":       items,
		"subsections": subsections,
	})
}

// Update handles PATCH /api/sections/{id}.
func (h *SectionsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid section id")
		return
	}

	var req createSectionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	section, err := store.GetSection(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting section", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update section")
		return
	}
	if section == nil {
		jsonError(w, http.StatusNotFound, "section not found")
		return
	}

	if err := store.UpdateSection(r.Context(), h.DB, id, req.Name, req.Description); err != nil {
		slog.Error("updating section", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update section")
		return
	}

	updated, _ := store.GetSection(r.Context(), h.DB, id)
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/sections/{id}, removing the subtree.
func (h *SectionsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid section id")
		return
	}

	section, err := store.GetSection(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("getting section", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete section")
		return
	}
	if section == nil {
		jsonError(w, http.StatusNotFound, "section not found")
		return
	}

	if err := store.DeleteSection(r.Context(), h.DB, id); err != nil {
		slog.Error("deleting section", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete section")
		return
	}

	jsonResponse(w, http.StatusOK, map[string]bool{"success": true})
}

// CreateEntry handles POST /api/sections/{id}: a tagged request creating
// either an item or a subsection under the section.
func (h *SectionsHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid section id")
		return
	}

	var req sectionEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	switch req.Type {
	case "item":
		h.createItemIn(w, r, id, createItemRequest{
			Name:     req.Name,
			Quantity: req.Quantity,
			Location: req.Location,
			SKU:      req.SKU,
		})
	case "subsection":
		h.createSubsectionIn(w, r, id, createSectionRequest{
			Name:        req.Name,
			Description: req.Description,
		})
	default:
		jsonError(w, http.StatusBadRequest, "invalid type")
	}
}

// ListItems handles GET /api/sections/{id}/items.
func (h *SectionsHandler) ListItems(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid section id")
		return
	}

	items, err := store.ListSectionItems(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("listing section items", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch items")
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// CreateItem handles POST /api/sections/{id}/items.
func (h *SectionsHandler) CreateItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid section id")
		return
	}

	var req createItemRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.createItemIn(w, r, id, req)
}

// ListSubsections handles GET /api/sections/{id}/subsections.
func (h *SectionsHandler) ListSubsections(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid section id")
		return
	}

	subsections, err := store.ListSubsections(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("listing subsections", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to fetch subsections")
		return
	}
	if subsections == nil {
		subsections = []model.Section{}
	}
	jsonResponse(w, http.StatusOK, subsections)
}

// CreateSubsection handles POST /api/sections/{id}/subsections.
func (h *SectionsHandler) CreateSubsection(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid section id")
		return
	}

	var req createSectionRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.createSubsectionIn(w, r, id, req)
}

func (h *SectionsHandler) createItemIn(w http.ResponseWriter, r *http.Request, sectionID int64, req createItemRequest) {
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	user, err := currentUser(r, h.DB)
	if err != nil {
		slog.Error("getting current user", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if user.OrganizationID == nil {
		jsonError(w, http.StatusBadRequest, "organization not found")
		return
	}

	section, err := store.GetSection(r.Context(), h.DB, sectionID)
	if err != nil {
		slog.Error("getting section", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}
	if section == nil {
		jsonError(w, http.StatusNotFound, "section not found")
		return
	}

	item, err := store.CreateItem(r.Context(), h.DB, req.Name, req.Quantity, req.Location, req.SKU,
		sectionID, *user.OrganizationID, user.ID)
	if err != nil {
		slog.Error("creating item", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create item")
		return
	}
	jsonResponse(w, http.StatusCreated, item)
}

func (h *SectionsHandler) createSubsectionIn(w http.ResponseWriter, r *http.Request, parentID int64, req createSectionRequest) {
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	user, err := currentUser(r, h.DB)
	if err != nil {
		slog.Error("getting current user", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if user == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if user.OrganizationID == nil {
		jsonError(w, http.StatusBadRequest, "organization not found")
		return
	}

	subsection, err := store.CreateSection(r.Context(), h.DB, req.Name, req.Description, &parentID, *user.OrganizationID)
	if err != nil {
		slog.Error("creating subsection", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create subsection")
		return
	}
	jsonResponse(w, http.StatusCreated, subsection)
}
