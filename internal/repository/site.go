package repository

import (
	"context"
	"errors"

	"github.com/jmoiron/sqlx/types"

	"github.com/batala/site-server-go/internal/database"
	"github.com/batala/site-server-go/internal/model"
)

var ErrSiteNotFound = errors.New("site not found")

// SectionsMutator receives the stored sections document and returns the one to persist.
type SectionsMutator func(sections types.JSONText) (types.JSONText, error)

type SiteRepository interface {
	Get(ctx context.Context) (*model.SiteRecord, error)
	Count(ctx context.Context) (int, error)
	Create(ctx context.Context, meta, theme, sections types.JSONText) (*model.SiteRecord, error)
	// UpdateSections runs fn under a row lock so that concurrent section
	// edits cannot overwrite each other.
	UpdateSections(ctx context.Context, fn SectionsMutator) error
}

type siteRepo struct {
	db *database.DB
}

func NewSiteRepository(db *database.DB) SiteRepository {
	return &siteRepo{db: db}
}

func (r *siteRepo) Get(ctx context.Context) (*model.SiteRecord, error) {
	return getOne[model.SiteRecord](ctx, r.db, `SELECT * FROM site ORDER BY id LIMIT 1`)
}

func (r *siteRepo) Count(ctx context.Context) (int, error) {
	return count(ctx, r.db, "site")
}

func (r *siteRepo) Create(ctx context.Context, meta, theme, sections types.JSONText) (*model.SiteRecord, error) {
	var site model.SiteRecord
	err := r.db.GetContext(ctx, &site, `
		INSERT INTO site (meta, theme, sections)
		VALUES ($1::jsonb, $2::jsonb, $3::jsonb)
		RETURNING *
	`, meta, theme, sections)
	if err != nil {
		return nil, err
	}
	return &site, nil
}

func (r *siteRepo) UpdateSections(ctx context.Context, fn SectionsMutator) error {
	return r.db.WithTx(ctx, func(tx database.DBTX) error {
		site, err := getOne[model.SiteRecord](ctx, tx, `SELECT * FROM site ORDER BY id LIMIT 1 FOR UPDATE`)
		if err != nil {
			return err
		}
		if site == nil {
			return ErrSiteNotFound
		}

		updated, err := fn(site.Sections)
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE site SET sections = $1::jsonb, updated_at = NOW() WHERE id = $2
		`, updated, site.ID)
		return err
	})
}
