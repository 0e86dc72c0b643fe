package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/batala/site-server-go/internal/audit"
	apperrors "github.com/batala/site-server-go/internal/errors"
	"github.com/batala/site-server-go/internal/middleware"
	"github.com/batala/site-server-go/internal/service"
)

type AuthHandler struct {
	authService  *service.AuthService
	cookie       *middleware.RefreshCookie
	loginLimiter func(http.Handler) http.Handler
}

func NewAuthHandler(
	authService *service.AuthService,
	cookie *middleware.RefreshCookie,
	loginLimiter func(http.Handler) http.Handler,
) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		cookie:       cookie,
		loginLimiter: loginLimiter,
	}
}

func (h *AuthHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.With(h.loginLimiter).Post("/login", h.Login)
	r.Post("/refresh", h.Refresh)
	r.Post("/logout", h.Logout)

	return r
}

// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if apperrors.GetCode(err) == apperrors.ErrCodeInvalidCredentials {
			audit.LogFromRequest(r, audit.Event{Type: audit.EventLoginFailure, Email: req.Email})
		}
		writeError(w, err)
		return
	}

	h.cookie.Set(w, result.RefreshToken)
	audit.LogFromRequest(r, audit.Event{
		Type:    audit.EventLoginSuccess,
		AdminID: result.Admin.ID,
		Email:   result.Admin.Email,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"token": result.AccessToken,
		"admin": result.Admin,
	})
}

// POST /api/auth/refresh
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	access, identity, err := h.authService.Refresh(middleware.RefreshTokenFromRequest(r))
	if err != nil {
		audit.LogFromRequest(r, audit.Event{
			Type:    audit.EventAuthFailure,
			Details: map[string]interface{}{"path": r.URL.Path, "reason": string(apperrors.GetCode(err))},
		})
		writeError(w, err)
		return
	}

	audit.LogFromRequest(r, audit.Event{Type: audit.EventTokenRefresh, AdminID: identity.ID})
	writeJSON(w, http.StatusOK, map[string]string{"token": access})
}

// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.cookie.Clear(w)
	audit.LogFromRequest(r, audit.Event{Type: audit.EventLogout})
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}
