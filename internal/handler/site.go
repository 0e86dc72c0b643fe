package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/batala/site-server-go/internal/audit"
	"github.com/batala/site-server-go/internal/model"
	"github.com/batala/site-server-go/internal/service"
)

type SiteHandler struct {
	siteService *service.SiteService
	protect     func(http.Handler) http.Handler
}

// NewSiteHandler takes protect, the chain applied to write routes
// (bearer authentication followed by the admin role check).
func NewSiteHandler(siteService *service.SiteService, protect func(http.Handler) http.Handler) *SiteHandler {
	return &SiteHandler{siteService: siteService, protect: protect}
}

func (h *SiteHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.Get)

	r.Group(func(r chi.Router) {
		r.Use(h.protect)
		r.Patch("/sections/{id}", h.UpdateSection)
		r.Post("/sections/{id}/reorder", h.Reorder)
	})

	return r
}

// GET /api/site
func (h *SiteHandler) Get(w http.ResponseWriter, r *http.Request) {
	site, err := h.siteService.Get(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, site)
}

// PATCH /api/site/sections/{id}
func (h *SiteHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Settings json.RawMessage `json:"settings"`
		Visible  *bool           `json:"visible"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sectionID := chi.URLParam(r, "id")
	section, err := h.siteService.UpdateSection(r.Context(), sectionID, model.UpdateSectionParams{
		Settings: req.Settings,
		Visible:  req.Visible,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventSiteSectionWrite,
		AdminID: actorID(r),
		Details: map[string]interface{}{"section": sectionID, "action": "update"},
	})
	writeJSON(w, http.StatusOK, section)
}

// POST /api/site/sections/{id}/reorder
func (h *SiteHandler) Reorder(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FromID model.ItemID `json:"fromId"`
		ToID   model.ItemID `json:"toId"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	sectionID := chi.URLParam(r, "id")
	section, err := h.siteService.ReorderItems(r.Context(), sectionID, req.FromID, req.ToID)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventSiteSectionWrite,
		AdminID: actorID(r),
		Details: map[string]interface{}{"section": sectionID, "action": "reorder"},
	})
	writeJSON(w, http.StatusOK, section)
}
