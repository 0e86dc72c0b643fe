package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batala/site-server-go/internal/middleware"
	"github.com/batala/site-server-go/internal/model"
	"github.com/batala/site-server-go/internal/service"
	"github.com/batala/site-server-go/internal/token"
)

func passthrough(next http.Handler) http.Handler { return next }

type testServer struct {
	router http.Handler
	repo   *memAdminRepo
	mailer *recordingMailer
	issuer *token.Issuer
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	repo := newMemAdminRepo()
	_, err := repo.Create(context.Background(), model.CreateAdminParams{
		Email:        "root@example.test",
		PasswordHash: "plain$correcthorse1",
		Role:         model.RoleSuperAdmin,
	})
	require.NoError(t, err)

	m := &recordingMailer{}
	issuer := token.NewIssuer("access-secret-for-handler-tests", "refresh-secret-for-handler-tests", 15*time.Minute, 7*24*time.Hour)
	authService := service.NewAuthService(repo, issuer, plainHasher{})
	adminService := service.NewAdminService(repo, plainHasher{}, m, service.InvitationConfig{
		FrontendURL: "http://localhost:5173",
		From:        "noreply@example.test",
	})

	jwt := middleware.NewJWTAuthMiddleware(issuer).Handler
	authHandler := NewAuthHandler(authService, middleware.NewRefreshCookie(false, 0), passthrough)
	adminsHandler := NewAdminsHandler(adminService, authService, jwt, middleware.RequireAdmin, passthrough)

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Mount("/auth", authHandler.Routes())
		r.Mount("/admins", adminsHandler.Routes())
	})

	return &testServer{router: r, repo: repo, mailer: m, issuer: issuer}
}

type call struct {
	method  string
	path    string
	body    any
	bearer  string
	cookies []*http.Cookie
}

func (s *testServer) do(t *testing.T, c call) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if c.body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(c.body))
	}
	req := httptest.NewRequest(c.method, c.path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.bearer != "" {
		req.Header.Set("Authorization", "Bearer "+c.bearer)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func refreshCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refreshToken" {
			return c
		}
	}
	t.Fatal("refreshToken cookie not set")
	return nil
}

func mailedToken(t *testing.T, html string) string {
	t.Helper()
	const marker = "set-password?token="
	i := strings.Index(html, marker)
	require.GreaterOrEqual(t, i, 0)
	rest := html[i+len(marker):]
	return rest[:strings.IndexAny(rest, `"&<`)]
}

// TestSessionLifecycle walks an admin through every session state:
// anonymous, authenticated, invited and invited-confirmed.
func TestSessionLifecycle(t *testing.T) {
	s := newTestServer(t)

	// Anonymous
	rec := s.do(t, call{method: "GET", path: "/api/admins"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = s.do(t, call{method: "POST", path: "/api/auth/refresh"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Authenticated
	rec = s.do(t, call{method: "POST", path: "/api/auth/login", body: map[string]string{
		"email": "root@example.test", "password": "correcthorse1",
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody(t, rec)
	rootToken := body["token"].(string)
	assert.Equal(t, map[string]any{"id": float64(1), "email": "root@example.test", "role": "superadmin"}, body["admin"])
	cookie := refreshCookie(t, rec)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/api/auth", cookie.Path)

	rec = s.do(t, call{method: "GET", path: "/api/admins", bearer: rootToken})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String(), "superadmins are not listed")

	rec = s.do(t, call{method: "POST", path: "/api/auth/refresh", cookies: []*http.Cookie{cookie}})
	require.Equal(t, http.StatusOK, rec.Code)
	refreshed := decodeBody(t, rec)["token"].(string)
	claims, err := s.issuer.VerifyAccessToken(refreshed)
	require.NoError(t, err)
	assert.Equal(t, "root@example.test", claims.Email)

	// Invited
	rec = s.do(t, call{method: "POST", path: "/api/admins", bearer: rootToken, body: map[string]string{"email": "new@example.test"}})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	invited := decodeBody(t, rec)["admin"].(map[string]any)
	assert.Equal(t, false, invited["isActive"])
	assert.NotContains(t, rec.Body.String(), "passwordHash")

	rec = s.do(t, call{method: "POST", path: "/api/admins", bearer: rootToken, body: map[string]string{"email": "new@example.test"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "DUPLICATE_EMAIL", decodeBody(t, rec)["code"])

	rec = s.do(t, call{method: "POST", path: "/api/auth/login", body: map[string]string{
		"email": "new@example.test", "password": "!invited",
	}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "invited admin cannot log in")

	resetToken := mailedToken(t, s.mailer.last().HTML)
	rec = s.do(t, call{method: "POST", path: "/api/admins/verify-token", body: map[string]string{"token": resetToken}})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["valid"])

	// Invited confirmed
	rec = s.do(t, call{method: "PATCH", path: "/api/admins/set-password", body: map[string]string{
		"token": resetToken, "password": "batteryStaple9",
	}})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = s.do(t, call{method: "PATCH", path: "/api/admins/set-password", body: map[string]string{
		"token": resetToken, "password": "batteryStaple9",
	}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_OR_EXPIRED_TOKEN", decodeBody(t, rec)["code"])

	rec = s.do(t, call{method: "POST", path: "/api/auth/login", body: map[string]string{
		"email": "new@example.test", "password": "batteryStaple9",
	}})
	require.Equal(t, http.StatusOK, rec.Code)
	newToken := decodeBody(t, rec)["token"].(string)

	rec = s.do(t, call{method: "GET", path: "/api/admins", bearer: rootToken})
	var listed []map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, true, listed[0]["isActive"])

	// Change password is self-only.
	rec = s.do(t, call{method: "PATCH", path: "/api/admins/1/password", bearer: newToken, body: map[string]string{
		"currentPassword": "batteryStaple9", "newPassword": "anotherOne99",
	}})
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = s.do(t, call{method: "PATCH", path: "/api/admins/2/password", bearer: newToken, body: map[string]string{
		"currentPassword": "batteryStaple9", "newPassword": "anotherOne99",
	}})
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Deactivation locks the account out.
	rec = s.do(t, call{method: "PATCH", path: "/api/admins/2/toggle-active", bearer: rootToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, false, decodeBody(t, rec)["isActive"])

	rec = s.do(t, call{method: "POST", path: "/api/auth/login", body: map[string]string{
		"email": "new@example.test", "password": "anotherOne99",
	}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginFailuresLookAlike(t *testing.T) {
	s := newTestServer(t)

	unknown := s.do(t, call{method: "POST", path: "/api/auth/login", body: map[string]string{
		"email": "ghost@example.test", "password": "correcthorse1",
	}})
	wrong := s.do(t, call{method: "POST", path: "/api/auth/login", body: map[string]string{
		"email": "root@example.test", "password": "wrong",
	}})

	assert.Equal(t, http.StatusUnauthorized, unknown.Code)
	assert.Equal(t, unknown.Code, wrong.Code)
	assert.JSONEq(t, unknown.Body.String(), wrong.Body.String())
	assert.Empty(t, wrong.Result().Cookies())

	missing := s.do(t, call{method: "POST", path: "/api/auth/login", body: map[string]string{"email": "root@example.test"}})
	assert.Equal(t, http.StatusBadRequest, missing.Code)
}

func TestLogoutIsIdempotent(t *testing.T) {
	s := newTestServer(t)

	for i := 0; i < 2; i++ {
		rec := s.do(t, call{method: "POST", path: "/api/auth/logout"})
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Logged out", decodeBody(t, rec)["message"])

		c := refreshCookie(t, rec)
		assert.Empty(t, c.Value)
		assert.Less(t, c.MaxAge, 0)
	}
}

func TestRefreshRejectsAccessToken(t *testing.T) {
	s := newTestServer(t)
	access, err := s.issuer.IssueAccessToken(model.Identity{ID: 1, Email: "root@example.test", Role: model.RoleSuperAdmin})
	require.NoError(t, err)

	rec := s.do(t, call{method: "POST", path: "/api/auth/refresh", cookies: []*http.Cookie{{Name: "refreshToken", Value: access}}})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "INVALID_TOKEN", decodeBody(t, rec)["code"])
}

func TestInviteDeliveryFailure(t *testing.T) {
	s := newTestServer(t)
	login := s.do(t, call{method: "POST", path: "/api/auth/login", body: map[string]string{
		"email": "root@example.test", "password": "correcthorse1",
	}})
	rootToken := decodeBody(t, login)["token"].(string)

	s.mailer.err = assert.AnError
	rec := s.do(t, call{method: "POST", path: "/api/admins", bearer: rootToken, body: map[string]string{"email": "late@example.test"}})

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "DELIVERY_ERROR", body["code"])
	details := body["details"].(map[string]any)
	assert.Equal(t, "late@example.test", details["admin"].(map[string]any)["email"])

	admin, err := s.repo.FindByEmail(context.Background(), "late@example.test")
	require.NoError(t, err)
	assert.NotNil(t, admin, "the invited row is kept")
}
