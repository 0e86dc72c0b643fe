package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/batala/site-server-go/internal/config"
	apperrors "github.com/batala/site-server-go/internal/errors"
	"github.com/batala/site-server-go/internal/model"
	"github.com/batala/site-server-go/internal/repository"
	"github.com/batala/site-server-go/internal/token"
)

type LoginResult struct {
	AccessToken  string
	RefreshToken string
	Admin        model.Identity
}

// AuthService handles credential checks and token issuance.
type AuthService struct {
	adminRepo repository.AdminRepository
	issuer    *token.Issuer
	hasher    PasswordHasher

	dummyHash string
}

func NewAuthService(adminRepo repository.AdminRepository, issuer *token.Issuer, hasher PasswordHasher) *AuthService {
	dummyHash, err := hasher.Hash("timing-equaliser")
	if err != nil {
		log.Warn().Err(err).Msg("could not prepare dummy password hash")
	}
	return &AuthService{
		adminRepo: adminRepo,
		issuer:    issuer,
		hasher:    hasher,
		dummyHash: dummyHash,
	}
}

// Login verifies email and password. Unknown email, inactive account and
// wrong password all fail with the same InvalidCredentials error.
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, apperrors.ValidationError("Email and password are required")
	}

	admin, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	if admin == nil {
		// burn the same hashing cost as a real check
		s.hasher.Verify(s.dummyHash, password)
		return nil, apperrors.InvalidCredentials()
	}

	passwordOK := s.hasher.Verify(admin.PasswordHash, password)
	if !passwordOK || !admin.IsActive {
		return nil, apperrors.InvalidCredentials()
	}

	identity := admin.Identity()
	access, err := s.issuer.IssueAccessToken(identity)
	if err != nil {
		return nil, apperrors.Internal("Could not issue token").WithCause(err)
	}
	refresh, err := s.issuer.IssueRefreshToken(identity)
	if err != nil {
		return nil, apperrors.Internal("Could not issue token").WithCause(err)
	}

	return &LoginResult{AccessToken: access, RefreshToken: refresh, Admin: identity}, nil
}

// Refresh mints a new access token from a refresh token. The refresh token
// itself is not rotated.
func (s *AuthService) Refresh(refreshToken string) (string, *model.Identity, error) {
	if refreshToken == "" {
		return "", nil, apperrors.Unauthorized("Refresh token required")
	}

	claims, err := s.issuer.VerifyRefreshToken(refreshToken)
	if err != nil {
		return "", nil, apperrors.InvalidToken("Invalid refresh token")
	}

	identity := claims.Identity()
	access, err := s.issuer.IssueAccessToken(identity)
	if err != nil {
		return "", nil, apperrors.Internal("Could not issue token").WithCause(err)
	}
	return access, &identity, nil
}

// ChangePassword lets an authenticated admin replace their own password.
// Only the hash changes; activation and reset fields are left alone.
func (s *AuthService) ChangePassword(ctx context.Context, actor model.Identity, targetID int64, current, next string) error {
	if actor.ID != targetID {
		return apperrors.Forbidden("Not authorized")
	}
	if current == "" || next == "" {
		return apperrors.ValidationError("Current and new passwords are required")
	}
	if len(next) < config.MinPasswordLength {
		return apperrors.ValidationError("Password must be at least 8 characters")
	}

	admin, err := s.adminRepo.FindByID(ctx, targetID)
	if err != nil {
		return apperrors.Database(err)
	}
	if admin == nil {
		return apperrors.NotFound("Admin")
	}

	if !s.hasher.Verify(admin.PasswordHash, current) {
		return apperrors.New(apperrors.ErrCodeInvalidCredentials, "Current password is incorrect")
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return apperrors.Internal("Could not hash password").WithCause(err)
	}
	if err := s.adminRepo.UpdatePassword(ctx, targetID, hash); err != nil {
		return apperrors.Database(err)
	}
	return nil
}
