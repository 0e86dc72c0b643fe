package repository

import (
	"context"
	"errors"
	"time"

	"github.com/batala/site-server-go/internal/database"
	"github.com/batala/site-server-go/internal/model"
)

// ErrDuplicateEmail is returned when an insert hits the admins email constraint.
var ErrDuplicateEmail = errors.New("admin email already exists")

type AdminRepository interface {
	FindByID(ctx context.Context, id int64) (*model.Admin, error)
	FindByEmail(ctx context.Context, email string) (*model.Admin, error)
	// FindByResetToken only matches tokens whose expiry is still in the future.
	FindByResetToken(ctx context.Context, tokenHash string) (*model.Admin, error)
	List(ctx context.Context, role model.Role, limit, offset int) ([]model.Admin, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, params model.CreateAdminParams) (*model.Admin, error)
	CreateInvited(ctx context.Context, params model.CreateInvitedAdminParams) (*model.Admin, error)
	// ConsumeResetToken sets the password, activates the admin and clears the
	// reset token in one statement. It reports false when no unexpired token matched.
	ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string) (bool, error)
	IssueResetToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) (*model.Admin, error)
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	ToggleActive(ctx context.Context, id int64) (*model.Admin, error)
	ClearExpiredResetTokens(ctx context.Context) (int64, error)
}

type adminRepo struct {
	db database.DBTX
}

func NewAdminRepository(db database.DBTX) AdminRepository {
	return &adminRepo{db: db}
}

func (r *adminRepo) FindByID(ctx context.Context, id int64) (*model.Admin, error) {
	return getOne[model.Admin](ctx, r.db, `SELECT * FROM admins WHERE id = $1`, id)
}

func (r *adminRepo) FindByEmail(ctx context.Context, email string) (*model.Admin, error) {
	return getOne[model.Admin](ctx, r.db, `SELECT * FROM admins WHERE email = $1`, email)
}

func (r *adminRepo) FindByResetToken(ctx context.Context, tokenHash string) (*model.Admin, error) {
	return getOne[model.Admin](ctx, r.db, `
		SELECT * FROM admins
		WHERE password_reset_token = $1 AND password_reset_expires > NOW()
	`, tokenHash)
}

func (r *adminRepo) List(ctx context.Context, role model.Role, limit, offset int) ([]model.Admin, error) {
	admins := []model.Admin{}
	err := r.db.SelectContext(ctx, &admins, `
		SELECT * FROM admins
		WHERE role = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2 OFFSET $3
	`, role, limit, offset)
	if err != nil {
		return nil, err
	}
	return admins, nil
}

func (r *adminRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "admins")
}

func (r *adminRepo) Create(ctx context.Context, params model.CreateAdminParams) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.GetContext(ctx, &admin, `
		INSERT INTO admins (email, password_hash, role, is_active)
		VALUES ($1, $2, $3, true)
		RETURNING *
	`, params.Email, params.PasswordHash, params.Role)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepo) CreateInvited(ctx context.Context, params model.CreateInvitedAdminParams) (*model.Admin, error) {
	var admin model.Admin
	err := r.db.GetContext(ctx, &admin, `
		INSERT INTO admins (email, password_hash, role, is_active, password_reset_token, password_reset_expires)
		VALUES ($1, $2, 'admin', false, $3, $4)
		RETURNING *
	`, params.Email, params.PlaceholderHash, params.ResetToken, params.ResetTokenExpiry)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, err
	}
	return &admin, nil
}

func (r *adminRepo) ConsumeResetToken(ctx context.Context, tokenHash, passwordHash string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE admins
		SET password_hash = $1,
		    is_active = true,
		    password_reset_token = NULL,
		    password_reset_expires = NULL,
		    updated_at = NOW()
		WHERE password_reset_token = $2 AND password_reset_expires > NOW()
	`, passwordHash, tokenHash)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *adminRepo) IssueResetToken(ctx context.Context, id int64, tokenHash string, expiresAt time.Time) (*model.Admin, error) {
	return getOne[model.Admin](ctx, r.db, `
		UPDATE admins
		SET password_reset_token = $2, password_reset_expires = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id, tokenHash, expiresAt)
}

func (r *adminRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE admins SET password_hash = $2, updated_at = NOW() WHERE id = $1
	`, id, passwordHash)
	return err
}

func (r *adminRepo) ToggleActive(ctx context.Context, id int64) (*model.Admin, error) {
	return getOne[model.Admin](ctx, r.db, `
		UPDATE admins
		SET is_active = NOT is_active, updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, id)
}

func (r *adminRepo) ClearExpiredResetTokens(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE admins
		SET password_reset_token = NULL, password_reset_expires = NULL
		WHERE password_reset_token IS NOT NULL AND password_reset_expires <= NOW()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
