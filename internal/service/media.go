package service

import (
	"context"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/batala/site-server-go/internal/errors"
	"github.com/batala/site-server-go/internal/model"
	"github.com/batala/site-server-go/internal/repository"
)

// FileStore persists uploaded bytes under a flat name.
type FileStore interface {
	Save(name string, r io.Reader) (int64, error)
	Delete(name string) error
}

type UploadParams struct {
	OriginalName string
	MimeType     string
	Body         io.Reader
}

// MediaService manages uploaded images, videos and fonts.
type MediaService struct {
	mediaRepo repository.MediaRepository
	store     FileStore
	newName   func() string
}

func NewMediaService(mediaRepo repository.MediaRepository, store FileStore) *MediaService {
	return &MediaService{
		mediaRepo: mediaRepo,
		store:     store,
		newName:   uuid.NewString,
	}
}

func (s *MediaService) List(ctx context.Context) ([]model.Media, error) {
	items, err := s.mediaRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if items == nil {
		items = []model.Media{}
	}
	for i := range items {
		items[i].WithURL()
	}
	return items, nil
}

// Upload stores the file under a random name and records it. The file is
// removed again if the database insert fails.
func (s *MediaService) Upload(ctx context.Context, params UploadParams) (*model.Media, error) {
	ext := strings.ToLower(filepath.Ext(params.OriginalName))
	mimeType := params.MimeType
	if mimeType == "" || mimeType == "application/octet-stream" {
		if guessed := mime.TypeByExtension(ext); guessed != "" {
			mimeType = guessed
		}
	}
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	name := s.newName() + ext
	size, err := s.store.Save(name, params.Body)
	if err != nil {
		return nil, apperrors.Storage(err)
	}

	media, err := s.mediaRepo.Create(ctx, model.CreateMediaParams{
		Type:     model.MediaTypeFromMIME(mimeType),
		Filename: name,
		MimeType: mimeType,
		Size:     size,
	})
	if err != nil {
		if delErr := s.store.Delete(name); delErr != nil {
			log.Warn().Err(delErr).Str("filename", name).Msg("failed to remove orphaned upload")
		}
		return nil, apperrors.Database(err)
	}
	return media.WithURL(), nil
}

func (s *MediaService) Delete(ctx context.Context, id int64) error {
	media, err := s.mediaRepo.FindByID(ctx, id)
	if err != nil {
		return apperrors.Database(err)
	}
	if media == nil {
		return apperrors.NotFound("Media")
	}

	if err := s.mediaRepo.Delete(ctx, id); err != nil {
		return apperrors.Database(err)
	}
	if err := s.store.Delete(media.Filename); err != nil {
		log.Warn().Err(err).Str("filename", media.Filename).Msg("failed to remove media file")
	}
	return nil
}
