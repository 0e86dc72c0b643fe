package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/batala/site-server-go/internal/model"
)

func createInvited(t *testing.T, repo AdminRepository, email, token string, expires time.Time) *model.Admin {
	t.Helper()
	admin, err := repo.CreateInvited(context.Background(), model.CreateInvitedAdminParams{
		Email:            email,
		PlaceholderHash:  "!invited",
		ResetToken:       token,
		ResetTokenExpiry: expires,
	})
	require.NoError(t, err)
	return admin
}

func TestAdminRepository_CreateInvited(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminRepository(db.DB)
	ctx := context.Background()

	createInvited(t, repo, "x@example.com", "token-hash-1", time.Now().Add(24*time.Hour))

	t.Run("round trips through FindByEmail", func(t *testing.T) {
		admin, err := repo.FindByEmail(ctx, "x@example.com")
		require.NoError(t, err)
		require.NotNil(t, admin)

		assert.False(t, admin.IsActive)
		assert.Equal(t, model.RoleAdmin, admin.Role)
		require.NotNil(t, admin.PasswordResetToken)
		assert.True(t, admin.HasPendingReset(time.Now()))
	})

	t.Run("second invite with same email fails", func(t *testing.T) {
		_, err := repo.CreateInvited(ctx, model.CreateInvitedAdminParams{
			Email:            "x@example.com",
			PlaceholderHash:  "!invited",
			ResetToken:       "token-hash-2",
			ResetTokenExpiry: time.Now().Add(time.Hour),
		})
		assert.ErrorIs(t, err, ErrDuplicateEmail)
	})

	t.Run("unknown email returns nil", func(t *testing.T) {
		admin, err := repo.FindByEmail(ctx, "nobody@example.com")
		require.NoError(t, err)
		assert.Nil(t, admin)
	})
}

func TestAdminRepository_ConsumeResetToken(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminRepository(db.DB)
	ctx := context.Background()

	invited := createInvited(t, repo, "y@example.com", "live-token", time.Now().Add(time.Hour))
	createInvited(t, repo, "z@example.com", "dead-token", time.Now().Add(-time.Minute))

	t.Run("expired token is invisible", func(t *testing.T) {
		admin, err := repo.FindByResetToken(ctx, "dead-token")
		require.NoError(t, err)
		assert.Nil(t, admin)

		ok, err := repo.ConsumeResetToken(ctx, "dead-token", "new-hash")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("live token is consumed exactly once", func(t *testing.T) {
		found, err := repo.FindByResetToken(ctx, "live-token")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, invited.ID, found.ID)

		ok, err := repo.ConsumeResetToken(ctx, "live-token", "new-hash")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = repo.ConsumeResetToken(ctx, "live-token", "other-hash")
		require.NoError(t, err)
		assert.False(t, ok)

		admin, err := repo.FindByID(ctx, invited.ID)
		require.NoError(t, err)
		assert.True(t, admin.IsActive)
		assert.Equal(t, "new-hash", admin.PasswordHash)
		assert.Nil(t, admin.PasswordResetToken)
		assert.Nil(t, admin.PasswordResetExpires)
	})

	t.Run("cleanup clears the expired token", func(t *testing.T) {
		n, err := repo.ClearExpiredResetTokens(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestAdminRepository_PasswordAndToggle(t *testing.T) {
	db := setupTestDB(t)
	repo := NewAdminRepository(db.DB)
	ctx := context.Background()

	root, err := repo.Create(ctx, model.CreateAdminParams{Email: "root@example.test", PasswordHash: "h1", Role: model.RoleSuperAdmin})
	require.NoError(t, err)
	assert.True(t, root.IsActive)

	t.Run("UpdatePassword only changes the hash", func(t *testing.T) {
		require.NoError(t, repo.UpdatePassword(ctx, root.ID, "h2"))

		admin, err := repo.FindByID(ctx, root.ID)
		require.NoError(t, err)
		assert.Equal(t, "h2", admin.PasswordHash)
		assert.True(t, admin.IsActive)
	})

	t.Run("ToggleActive flips the flag", func(t *testing.T) {
		admin, err := repo.ToggleActive(ctx, root.ID)
		require.NoError(t, err)
		assert.False(t, admin.IsActive)

		admin, err = repo.ToggleActive(ctx, root.ID)
		require.NoError(t, err)
		assert.True(t, admin.IsActive)
	})

	t.Run("ToggleActive on unknown id returns nil", func(t *testing.T) {
		admin, err := repo.ToggleActive(ctx, 9999)
		require.NoError(t, err)
		assert.Nil(t, admin)
	})

	t.Run("List filters by role", func(t *testing.T) {
		createInvited(t, repo, "a@example.com", "t-a", time.Now().Add(time.Hour))

		admins, err := repo.List(ctx, model.RoleAdmin, 50, 0)
		require.NoError(t, err)
		require.Len(t, admins, 1)
		assert.Equal(t, "a@example.com", admins[0].Email)

		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}
