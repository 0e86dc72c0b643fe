package repository

import (
	"context"

	"github.com/batala/site-server-go/internal/database"
	"github.com/batala/site-server-go/internal/model"
)

type MediaRepository interface {
	List(ctx context.Context) ([]model.Media, error)
	FindByID(ctx context.Context, id int64) (*model.Media, error)
	Create(ctx context.Context, params model.CreateMediaParams) (*model.Media, error)
	Delete(ctx context.Context, id int64) error
}

type mediaRepo struct {
	db database.DBTX
}

func NewMediaRepository(db database.DBTX) MediaRepository {
	return &mediaRepo{db: db}
}

func (r *mediaRepo) List(ctx context.Context) ([]model.Media, error) {
	media := []model.Media{}
	err := r.db.SelectContext(ctx, &media, `SELECT * FROM media ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	return media, nil
}

func (r *mediaRepo) FindByID(ctx context.Context, id int64) (*model.Media, error) {
	return getOne[model.Media](ctx, r.db, `SELECT * FROM media WHERE id = $1`, id)
}

func (r *mediaRepo) Create(ctx context.Context, params model.CreateMediaParams) (*model.Media, error) {
	var m model.Media
	err := r.db.GetContext(ctx, &m, `
		INSERT INTO media (type, filename, mime_type, size)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, params.Type, params.Filename, params.MimeType, params.Size)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *mediaRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM media WHERE id = $1`, id)
	return err
}
