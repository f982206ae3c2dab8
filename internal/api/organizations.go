package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"stocktrail/internal/store"
)

// OrganizationsHandler handles organization membership endpoints.
type OrganizationsHandler struct {
	DB *sql.DB
}

type createOrganizationRequest struct {
	Name string `json:"name"`
}

type joinOrganizationRequest struct {
	OrgCode string `json:"orgCode"`
}

// Create handles POST /api/organization/create: it creates an organization
// with a generated join code and attaches the caller as its first member.
// Authentication is verified by the middleware before anything is written,
// so an unauthenticated request can never leave an orphaned organization
// behind.
func (h *OrganizationsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrganizationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "organization name is required")
		return
	}

	claims := GetClaims(r.Context())
	if claims == nil {
		jsonError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	org, err := store.CreateOrganization(r.Context(), h.DB, req.Name)
	if err != nil {
		slog.Error("creating organization", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create organization")
		return
	}

	if err := store.SetUserOrganization(r.Context(), h.DB, claims.UserID, org.ID); err != nil {
		slog.Error("attaching creator to organization", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create organization")
		return
	}

	slog.Info("organization created", "organization", org.Name, "code", org.Code, "user", claims.Email)
	jsonResponse(w, http.StatusCreated, map[string]any{"organization": org})
}

// Join handles POST /api/organization/join: it resolves an organization by
// join code and attaches the caller, enforcing single membership.
func (h *OrganizationsHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req joinOrganizationRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
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

	org, err := store.GetOrganizationByCode(r.Context(), h.DB, req.OrgCode)
	if err != nil {
		slog.Error("getting organization by code", "error", err)
		jsonError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if org == nil {
		jsonError(w, http.StatusNotFound, "organization not found")
		return
	}

	if user.OrganizationID != nil {
		jsonError(w, http.StatusBadRequest, "user is already part of an organization")
		return
	}

	if err := store.SetUserOrganization(r.Context(), h.DB, user.ID, org.ID); err != nil {
		slog.Error("joining organization", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to join organization")
		return
	}

	slog.Info("user joined organization", "organization", org.Name, "user", user.Email)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "successfully joined the organization"})
}
