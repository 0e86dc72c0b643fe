package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/batala/site-server-go/internal/audit"
	apperrors "github.com/batala/site-server-go/internal/errors"
	"github.com/batala/site-server-go/internal/middleware"
	"github.com/batala/site-server-go/internal/service"
)

type AdminsHandler struct {
	adminService  *service.AdminService
	authService   *service.AuthService
	jwtMiddleware func(http.Handler) http.Handler
	// manageGate guards invite, toggle and resend: RequireAdmin by default,
	// RequireSuperAdmin when strict admin management is enabled.
	manageGate    func(http.Handler) http.Handler
	publicLimiter func(http.Handler) http.Handler
}

func NewAdminsHandler(
	adminService *service.AdminService,
	authService *service.AuthService,
	jwtMiddleware func(http.Handler) http.Handler,
	manageGate func(http.Handler) http.Handler,
	publicLimiter func(http.Handler) http.Handler,
) *AdminsHandler {
	return &AdminsHandler{
		adminService:  adminService,
		authService:   authService,
		jwtMiddleware: jwtMiddleware,
		manageGate:    manageGate,
		publicLimiter: publicLimiter,
	}
}

func (h *AdminsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(h.publicLimiter).Post("/verify-token", h.VerifyToken)
	r.With(h.publicLimiter).Patch("/set-password", h.SetPassword)

	r.Group(func(r chi.Router) {
		r.Use(h.jwtMiddleware)

		r.With(middleware.RequireAdmin).Get("/", h.List)
		r.With(h.manageGate).Post("/", h.Invite)
		r.With(h.manageGate).Patch("/{id}/toggle-active", h.ToggleActive)
		r.With(h.manageGate).Post("/{id}/resend-invite", h.ResendInvite)

		// self-only, enforced by the service
		r.Patch("/{id}/password", h.ChangePassword)
	})

	return r
}

// GET /api/admins
func (h *AdminsHandler) List(w http.ResponseWriter, r *http.Request) {
	p := parsePage(r)
	admins, err := h.adminService.List(r.Context(), p.Limit, p.Offset)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, admins)
}

// POST /api/admins
func (h *AdminsHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	admin, err := h.adminService.Invite(r.Context(), req.Email)
	if admin != nil {
		audit.LogFromRequest(r, audit.Event{
			Type:    audit.EventAdminInvite,
			AdminID: actorID(r),
			Email:   admin.Email,
			Details: map[string]interface{}{"mailed": err == nil},
		})
	}
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"message": "Invitation sent",
		"admin":   admin,
	})
}

// PATCH /api/admins/{id}/toggle-active
func (h *AdminsHandler) ToggleActive(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	admin, err := h.adminService.ToggleActive(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventAdminToggle,
		AdminID: actorID(r),
		Email:   admin.Email,
		Details: map[string]interface{}{"target_id": admin.ID, "is_active": admin.IsActive},
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"id":       admin.ID,
		"email":    admin.Email,
		"isActive": admin.IsActive,
	})
}

// POST /api/admins/{id}/resend-invite
func (h *AdminsHandler) ResendInvite(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	admin, err := h.adminService.ResendInvitation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventInviteResend, AdminID: actorID(r), Email: admin.Email})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Invitation sent",
	})
}

// POST /api/admins/verify-token
func (h *AdminsHandler) VerifyToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	admin, err := h.adminService.VerifyResetToken(r.Context(), req.Token)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"valid": true,
		"admin": map[string]any{"id": admin.ID, "email": admin.Email},
	})
}

// PATCH /api/admins/set-password
func (h *AdminsHandler) SetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token    string `json:"token"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	if err := h.adminService.SetPassword(r.Context(), req.Token, req.Password); err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventPasswordSet})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Password set",
	})
}

// PATCH /api/admins/{id}/password
func (h *AdminsHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaims(r.Context())
	if claims == nil {
		writeError(w, apperrors.Unauthorized("Token required"))
		return
	}

	id, err := parseIDParam(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req struct {
		CurrentPassword string `json:"currentPassword"`
		NewPassword     string `json:"newPassword"`
	}
	if id == claims.ID {
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, err)
			return
		}
	}

	if err := h.authService.ChangePassword(r.Context(), claims.Identity(), id, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventPasswordChange, AdminID: claims.ID})
	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Password updated",
	})
}

func actorID(r *http.Request) int64 {
	if claims := middleware.GetClaims(r.Context()); claims != nil {
		return claims.ID
	}
	return 0
}
