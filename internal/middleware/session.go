package middleware

import (
	"net/http"
	"time"

	"github.com/batala/site-server-go/internal/config"
)

// RefreshCookie writes and clears the refresh-token cookie. The cookie is
// scoped to the auth routes and is only marked Secure in production so
// that local development over plain HTTP keeps working.
type RefreshCookie struct {
	production bool
	maxAge     time.Duration
}

// NewRefreshCookie builds the cookie writer. A zero maxAge falls back to
// config.RefreshCookieMaxAge.
func NewRefreshCookie(production bool, maxAge time.Duration) *RefreshCookie {
	if maxAge <= 0 {
		maxAge = config.RefreshCookieMaxAge
	}
	return &RefreshCookie{production: production, maxAge: maxAge}
}

func (c *RefreshCookie) Set(w http.ResponseWriter, value string) {
	http.SetCookie(w, c.cookie(value, int(c.maxAge.Seconds())))
}

// Clear expires the cookie. It is safe to call when no cookie was set.
func (c *RefreshCookie) Clear(w http.ResponseWriter) {
	http.SetCookie(w, c.cookie("", -1))
}

func (c *RefreshCookie) cookie(value string, maxAge int) *http.Cookie {
	sameSite := http.SameSiteLaxMode
	if c.production {
		sameSite = http.SameSiteStrictMode
	}
	return &http.Cookie{
		Name:     config.RefreshCookieName,
		Value:    value,
		Path:     config.RefreshCookiePath,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   c.production,
		SameSite: sameSite,
	}
}

// RefreshTokenFromRequest returns the refresh cookie value or "".
func RefreshTokenFromRequest(r *http.Request) string {
	cookie, err := r.Cookie(config.RefreshCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}
