package service

import (
	"context"
	"strings"
	"unicode/utf8"

	apperrors "github.com/batala/site-server-go/internal/errors"
	"github.com/batala/site-server-go/internal/mailer"
	"github.com/batala/site-server-go/internal/util"
)

const (
	maxContactNameLength    = 200
	maxContactMessageLength = 5000
)

type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

type ContactConfig struct {
	From        string
	ClientEmail string
}

// ContactService forwards the public contact form to the site owner and
// confirms receipt to the sender.
type ContactService struct {
	mailer mailer.Mailer
	cfg    ContactConfig
}

func NewContactService(m mailer.Mailer, cfg ContactConfig) *ContactService {
	return &ContactService{mailer: m, cfg: cfg}
}

func (s *ContactService) Send(ctx context.Context, req ContactRequest) error {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Message = strings.TrimSpace(req.Message)

	if req.Name == "" || req.Email == "" || req.Message == "" {
		return apperrors.ValidationError("Name, email and message are required")
	}
	if !util.IsValidEmail(req.Email) {
		return apperrors.ValidationError("Invalid email")
	}
	if utf8.RuneCountInString(req.Name) > maxContactNameLength ||
		utf8.RuneCountInString(req.Message) > maxContactMessageLength {
		return apperrors.ValidationError("Message is too long")
	}

	body, err := mailer.ContactHTML(req.Name, req.Email, req.Message)
	if err != nil {
		return apperrors.Internal("Could not render message").WithCause(err)
	}
	if err := s.mailer.Send(ctx, mailer.Message{
		From:    s.cfg.From,
		To:      s.cfg.ClientEmail,
		ReplyTo: req.Email,
		Subject: "Nouveau message de " + req.Name,
		HTML:    body,
	}); err != nil {
		return apperrors.Delivery("Message could not be sent", err)
	}

	confirmation, err := mailer.ConfirmationHTML(req.Name)
	if err != nil {
		return apperrors.Internal("Could not render message").WithCause(err)
	}
	if err := s.mailer.Send(ctx, mailer.Message{
		From:    s.cfg.ClientEmail,
		To:      req.Email,
		Subject: "Confirmation de réception de votre message",
		HTML:    confirmation,
	}); err != nil {
		return apperrors.Delivery("Confirmation could not be sent", err)
	}
	return nil
}
