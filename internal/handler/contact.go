package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/batala/site-server-go/internal/service"
)

type ContactHandler struct {
	contactService *service.ContactService
	limiter        func(http.Handler) http.Handler
}

func NewContactHandler(contactService *service.ContactService, limiter func(http.Handler) http.Handler) *ContactHandler {
	return &ContactHandler{contactService: contactService, limiter: limiter}
}

func (h *ContactHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.With(h.limiter).Post("/", h.Send)
	return r
}

// POST /api/contact
func (h *ContactHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req service.ContactRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.contactService.Send(r.Context(), req); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Message sent",
	})
}
