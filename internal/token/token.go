package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/batala/site-server-go/internal/model"
)

// ErrInvalidToken is returned for every verification failure. Expired,
// malformed and badly signed tokens are not distinguished.
var ErrInvalidToken = errors.New("invalid token")

type Claims struct {
	ID    int64      `json:"id"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
	jwt.RegisteredClaims
}

func (c *Claims) Identity() model.Identity {
	return model.Identity{ID: c.ID, Email: c.Email, Role: c.Role}
}

type Issuer struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
	now           func() time.Time
}

type Option func(*Issuer)

// WithClock overrides the time source used for issuing and verifying.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

func NewIssuer(accessSecret, refreshSecret string, accessTTL, refreshTTL time.Duration, opts ...Option) *Issuer {
	i := &Issuer{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Issuer) IssueAccessToken(id model.Identity) (string, error) {
	return i.sign(id, i.accessSecret, i.accessTTL)
}

func (i *Issuer) IssueRefreshToken(id model.Identity) (string, error) {
	return i.sign(id, i.refreshSecret, i.refreshTTL)
}

func (i *Issuer) VerifyAccessToken(tokenStr string) (*Claims, error) {
	return i.Verify(tokenStr, i.accessSecret)
}

func (i *Issuer) VerifyRefreshToken(tokenStr string) (*Claims, error) {
	return i.Verify(tokenStr, i.refreshSecret)
}

func (i *Issuer) sign(id model.Identity, secret []byte, ttl time.Duration) (string, error) {
	now := i.now()
	claims := Claims{
		ID:    id.ID,
		Email: id.Email,
		Role:  id.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// Verify checks signature, algorithm and expiry of tokenStr against secret.
func (i *Issuer) Verify(tokenStr string, secret []byte) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.ID <= 0 || !claims.Role.IsAdmin() {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
