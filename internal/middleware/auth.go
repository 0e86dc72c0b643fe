package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/batala/site-server-go/internal/audit"
	apperrors "github.com/batala/site-server-go/internal/errors"
	"github.com/batala/site-server-go/internal/model"
	"github.com/batala/site-server-go/internal/token"
)

type contextKey string

const ClaimsContextKey contextKey = "claims"

// GetClaims returns the verified access-token claims, or nil on
// unauthenticated routes.
func GetClaims(ctx context.Context) *token.Claims {
	if claims, ok := ctx.Value(ClaimsContextKey).(*token.Claims); ok {
		return claims
	}
	return nil
}

// WithClaims is used by tests and by handlers mounted behind the middleware.
func WithClaims(ctx context.Context, claims *token.Claims) context.Context {
	return context.WithValue(ctx, ClaimsContextKey, claims)
}

type AccessTokenVerifier interface {
	VerifyAccessToken(tokenStr string) (*token.Claims, error)
}

type JWTAuthMiddleware struct {
	verifier AccessTokenVerifier
}

func NewJWTAuthMiddleware(verifier AccessTokenVerifier) *JWTAuthMiddleware {
	return &JWTAuthMiddleware{verifier: verifier}
}

func (m *JWTAuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearer(r)
		if raw == "" {
			writeError(w, apperrors.Unauthorized("Token required"))
			return
		}

		claims, err := m.verifier.VerifyAccessToken(raw)
		if err != nil {
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventAuthFailure,
				Details: map[string]interface{}{"path": r.URL.Path},
			})
			writeError(w, apperrors.InvalidToken("Invalid or expired token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireAdmin admits admins and superadmins.
func RequireAdmin(next http.Handler) http.Handler {
	return requireRole(next, "Admin access required", func(role model.Role) bool {
		return role.IsAdmin()
	})
}

// RequireSuperAdmin admits superadmins only.
func RequireSuperAdmin(next http.Handler) http.Handler {
	return requireRole(next, "Superadmin access required", func(role model.Role) bool {
		return role == model.RoleSuperAdmin
	})
}

func requireRole(next http.Handler, message string, allowed func(model.Role) bool) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := GetClaims(r.Context())
		if claims == nil {
			writeError(w, apperrors.Unauthorized("Token required"))
			return
		}
		if !allowed(claims.Role) {
			writeError(w, apperrors.Forbidden(message))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func extractBearer(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ""
}
