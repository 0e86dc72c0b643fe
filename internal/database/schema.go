package database

import (
	"context"
	"fmt"
)

var schemaStatements = []struct {
	table string
	ddl   string
}{
	{"admins", `
		CREATE TABLE IF NOT EXISTS admins (
			id SERIAL PRIMARY KEY,
			email VARCHAR(255) UNIQUE NOT NULL,
			password_hash VARCHAR(255) NOT NULL,
			role VARCHAR(50) NOT NULL CHECK (role IN ('admin', 'superadmin')),
			is_active BOOLEAN NOT NULL DEFAULT true,
			password_reset_token VARCHAR(255),
			password_reset_expires TIMESTAMPTZ,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"admins reset token index", `
		CREATE UNIQUE INDEX IF NOT EXISTS admins_password_reset_token_idx
		ON admins (password_reset_token)
		WHERE password_reset_token IS NOT NULL`},
	{"site", `
		CREATE TABLE IF NOT EXISTS site (
			id SERIAL PRIMARY KEY,
			meta JSONB NOT NULL,
			theme JSONB NOT NULL,
			sections JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
	{"media", `
		CREATE TABLE IF NOT EXISTS media (
			id SERIAL PRIMARY KEY,
			type TEXT NOT NULL CHECK (type IN ('image', 'video', 'font')),
			filename TEXT NOT NULL,
			mime_type TEXT NOT NULL,
			size BIGINT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`},
}

// EnsureSchema creates the admins, site and media tables when they are missing.
// Existing tables are left untouched.
func (db *DB) EnsureSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt.ddl); err != nil {
			return fmt.Errorf("ensure %s: %w", stmt.table, err)
		}
	}
	return nil
}
