package service

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/batala/site-server-go/internal/config"
	apperrors "github.com/batala/site-server-go/internal/errors"
	"github.com/batala/site-server-go/internal/mailer"
	"github.com/batala/site-server-go/internal/model"
	"github.com/batala/site-server-go/internal/repository"
	"github.com/batala/site-server-go/internal/util"
)

// invitedPlaceholderHash is stored for invited admins until they choose a
// password. It is not a valid PHC string, so no password ever matches it.
const invitedPlaceholderHash = "!invited"

type InvitationConfig struct {
	FrontendURL string
	From        string
}

// AdminService handles admin management and the invitation flow.
type AdminService struct {
	adminRepo repository.AdminRepository
	hasher    PasswordHasher
	mailer    mailer.Mailer
	cfg       InvitationConfig
	now       func() time.Time
}

func NewAdminService(adminRepo repository.AdminRepository, hasher PasswordHasher, m mailer.Mailer, cfg InvitationConfig) *AdminService {
	return &AdminService{
		adminRepo: adminRepo,
		hasher:    hasher,
		mailer:    m,
		cfg:       cfg,
		now:       time.Now,
	}
}

// List returns admins of role admin, newest first.
func (s *AdminService) List(ctx context.Context, limit, offset int) ([]model.Admin, error) {
	admins, err := s.adminRepo.List(ctx, model.RoleAdmin, limit, offset)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if admins == nil {
		admins = []model.Admin{}
	}
	return admins, nil
}

// Invite creates an inactive admin and mails a set-password link. When the
// mail cannot be sent the admin is still returned together with a Delivery
// error carrying it in its details.
func (s *AdminService) Invite(ctx context.Context, email string) (*model.Admin, error) {
	email = strings.TrimSpace(email)
	if !util.IsValidEmail(email) {
		return nil, apperrors.ValidationError("Invalid email")
	}

	existing, err := s.adminRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		return nil, apperrors.DuplicateEmail()
	}

	resetToken, digest, err := util.NewResetToken()
	if err != nil {
		return nil, apperrors.Internal("Could not generate token").WithCause(err)
	}

	admin, err := s.adminRepo.CreateInvited(ctx, model.CreateInvitedAdminParams{
		Email:            email,
		PlaceholderHash:  invitedPlaceholderHash,
		ResetToken:       digest,
		ResetTokenExpiry: s.now().Add(config.ResetTokenTTL),
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.DuplicateEmail()
		}
		return nil, apperrors.Database(err)
	}

	if err := s.sendInvitation(ctx, admin.Email, resetToken); err != nil {
		return admin, apperrors.Delivery("Admin created but the invitation email could not be sent", err).
			WithDetails(map[string]any{"admin": admin})
	}
	return admin, nil
}

// ResendInvitation issues a fresh token for an admin who never activated
// their account. The previous token stops working.
func (s *AdminService) ResendInvitation(ctx context.Context, id int64) (*model.Admin, error) {
	admin, err := s.adminRepo.FindByID(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if admin == nil {
		return nil, apperrors.NotFound("Admin")
	}
	if admin.IsActive {
		return nil, apperrors.ValidationError("Admin is already active")
	}

	resetToken, digest, err := util.NewResetToken()
	if err != nil {
		return nil, apperrors.Internal("Could not generate token").WithCause(err)
	}
	admin, err = s.adminRepo.IssueResetToken(ctx, id, digest, s.now().Add(config.ResetTokenTTL))
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if admin == nil {
		return nil, apperrors.NotFound("Admin")
	}

	if err := s.sendInvitation(ctx, admin.Email, resetToken); err != nil {
		return admin, apperrors.Delivery("Invitation email could not be sent", err).
			WithDetails(map[string]any{"admin": admin})
	}
	return admin, nil
}

// VerifyResetToken reports the admin a pending token belongs to.
func (s *AdminService) VerifyResetToken(ctx context.Context, resetToken string) (*model.Admin, error) {
	if resetToken == "" {
		return nil, apperrors.InvalidOrExpiredToken()
	}
	admin, err := s.adminRepo.FindByResetToken(ctx, util.HashToken(resetToken))
	if err != nil {
		return nil, apperrors.Database(err)
	}
	// the query already filters on expiry; the clock check also covers a
	// token that lapsed between the query and now
	if admin == nil || !admin.HasPendingReset(s.now()) {
		return nil, apperrors.InvalidOrExpiredToken()
	}
	return admin, nil
}

// SetPassword consumes a reset token: the password is stored, the account
// activated and the token cleared in one statement, so a token works once.
func (s *AdminService) SetPassword(ctx context.Context, resetToken, password string) error {
	if resetToken == "" || password == "" {
		return apperrors.ValidationError("Token and password are required")
	}
	if len(password) < config.MinPasswordLength {
		return apperrors.ValidationError("Password must be at least 8 characters")
	}

	// Reject unknown tokens before paying for a hash.
	if _, err := s.VerifyResetToken(ctx, resetToken); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return apperrors.Internal("Could not hash password").WithCause(err)
	}

	consumed, err := s.adminRepo.ConsumeResetToken(ctx, util.HashToken(resetToken), hash)
	if err != nil {
		return apperrors.Database(err)
	}
	if !consumed {
		return apperrors.InvalidOrExpiredToken()
	}
	return nil
}

// ToggleActive flips is_active and returns the updated admin.
func (s *AdminService) ToggleActive(ctx context.Context, id int64) (*model.Admin, error) {
	admin, err := s.adminRepo.ToggleActive(ctx, id)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if admin == nil {
		return nil, apperrors.NotFound("Admin")
	}
	return admin, nil
}

func (s *AdminService) invitationLink(resetToken string) string {
	base := strings.TrimRight(s.cfg.FrontendURL, "/")
	return base + "/set-password?token=" + url.QueryEscape(resetToken)
}

func (s *AdminService) sendInvitation(ctx context.Context, to, resetToken string) error {
	html, err := mailer.InvitationHTML(s.invitationLink(resetToken))
	if err != nil {
		return err
	}
	return s.mailer.Send(ctx, mailer.Message{
		From:    s.cfg.From,
		To:      to,
		Subject: "Invitation administrateur",
		HTML:    html,
	})
}
