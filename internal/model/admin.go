package model

import (
	"time"
)

type Admin struct {
	ID                   int64      `db:"id" json:"id"`
	Email                string     `db:"email" json:"email"`
	PasswordHash         string     `db:"password_hash" json:"-"`
	Role                 Role       `db:"role" json:"role"`
	IsActive             bool       `db:"is_active" json:"isActive"`
	PasswordResetToken   *string    `db:"password_reset_token" json:"-"`
	PasswordResetExpires *time.Time `db:"password_reset_expires" json:"-"`
	CreatedAt            time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt            time.Time  `db:"updated_at" json:"updatedAt"`
}

// Identity is the subset of an admin carried in signed tokens.
type Identity struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (a *Admin) Identity() Identity {
	return Identity{ID: a.ID, Email: a.Email, Role: a.Role}
}

// HasPendingReset reports whether the admin holds a reset token that has not expired at now.
func (a *Admin) HasPendingReset(now time.Time) bool {
	return a.PasswordResetToken != nil && a.PasswordResetExpires != nil && a.PasswordResetExpires.After(now)
}

type CreateAdminParams struct {
	Email        string
	PasswordHash string
	Role         Role
}

type CreateInvitedAdminParams struct {
	Email            string
	PlaceholderHash  string
	ResetToken       string
	ResetTokenExpiry time.Time
}
