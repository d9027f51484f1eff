package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/geostacks/sitehost/internal/domain"
	"github.com/geostacks/sitehost/internal/service"
)

// SiteHandler handles site lifecycle endpoints.
type SiteHandler struct {
	sites *service.SiteService
}

// NewSiteHandler creates a new SiteHandler.
func NewSiteHandler(sites *service.SiteService) *SiteHandler {
	return &SiteHandler{sites: sites}
}

// Create provisions a new site. The response blocks until the engine has
// finished applying the resource graph.
func (h *SiteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateSiteRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.ID == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	site, err := h.sites.Create(r.Context(), req.ID, req.Params)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, site)
}

// List lists all site IDs.
func (h *SiteHandler) List(w http.ResponseWriter, r *http.Request) {
	ids, err := h.sites.List(r.Context())
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &domain.ListSitesResponse{IDs: ids})
}

// Get gets a site by ID.
func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	site, err := h.sites.Get(r.Context(), id)
	if err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, site)
}

// Delete tears down a site and frees its ID for reuse.
func (h *SiteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		respondError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.sites.Delete(r.Context(), id); err != nil {
		handleError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, &domain.DeleteSiteResponse{
		Message: fmt.Sprintf("site '%s' resources successfully removed", id),
	})
}
