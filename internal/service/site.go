package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jmoiron/sqlx/types"

	apperrors "github.com/batala/site-server-go/internal/errors"
	"github.com/batala/site-server-go/internal/model"
	"github.com/batala/site-server-go/internal/repository"
	"github.com/batala/site-server-go/internal/util"
)

// SiteService reads and edits the single site document.
type SiteService struct {
	siteRepo repository.SiteRepository
	cache    SiteCache
}

func NewSiteService(siteRepo repository.SiteRepository, cache SiteCache) *SiteService {
	if cache == nil {
		cache = NoopSiteCache{}
	}
	return &SiteService{siteRepo: siteRepo, cache: cache}
}

func (s *SiteService) Get(ctx context.Context) (*model.Site, error) {
	if site, ok := s.cache.Get(ctx); ok {
		return site, nil
	}

	record, err := s.siteRepo.Get(ctx)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if record == nil {
		return nil, apperrors.NotFound("Site")
	}

	site := &model.Site{
		Meta:  json.RawMessage(record.Meta),
		Theme: json.RawMessage(record.Theme),
	}
	if err := json.Unmarshal(record.Sections, &site.Sections); err != nil {
		return nil, apperrors.Internal("Stored site content is invalid").WithCause(err)
	}

	s.cache.Set(ctx, site)
	return site, nil
}

// UpdateSection replaces the settings of one section and optionally its
// visibility. Settings are decoded against the section's stored type.
func (s *SiteService) UpdateSection(ctx context.Context, sectionID string, params model.UpdateSectionParams) (*model.Section, error) {
	if len(params.Settings) == 0 || string(params.Settings) == "null" {
		return nil, apperrors.MissingRequired("settings")
	}

	return s.mutateSection(ctx, sectionID, func(section *model.Section) error {
		settings, err := model.DecodeSettings(section.Type, params.Settings)
		if err != nil {
			return apperrors.ValidationError(err.Error())
		}
		normalizeSettings(settings)

		section.Settings = settings
		if params.Visible != nil {
			section.Visible = *params.Visible
		}
		return nil
	})
}

// ReorderItems swaps two items of an events or gallery section.
func (s *SiteService) ReorderItems(ctx context.Context, sectionID string, fromID, toID model.ItemID) (*model.Section, error) {
	if fromID == "" || toID == "" {
		return nil, apperrors.ValidationError("fromId and toId are required")
	}

	return s.mutateSection(ctx, sectionID, func(section *model.Section) error {
		reorderable, ok := section.Settings.(model.Reorderable)
		if !ok {
			return apperrors.ValidationError("Section items cannot be reordered")
		}
		if !reorderable.Reorder(fromID, toID) {
			return apperrors.ValidationError("Unknown item id")
		}
		return nil
	})
}

func (s *SiteService) mutateSection(ctx context.Context, sectionID string, fn func(*model.Section) error) (*model.Section, error) {
	var updated model.Section

	err := s.siteRepo.UpdateSections(ctx, func(raw types.JSONText) (types.JSONText, error) {
		var sections []model.Section
		if err := json.Unmarshal(raw, &sections); err != nil {
			return nil, apperrors.Internal("Stored site content is invalid").WithCause(err)
		}

		idx := -1
		for i := range sections {
			if sections[i].ID == sectionID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, apperrors.NotFound("Section")
		}

		if err := fn(&sections[idx]); err != nil {
			return nil, err
		}
		updated = sections[idx]

		out, err := json.Marshal(sections)
		if err != nil {
			return nil, apperrors.Internal("Could not encode site content").WithCause(err)
		}
		return types.JSONText(out), nil
	})
	if err != nil {
		if errors.Is(err, repository.ErrSiteNotFound) {
			return nil, apperrors.NotFound("Site")
		}
		if apperrors.IsAppError(err) {
			return nil, err
		}
		return nil, apperrors.Database(err)
	}

	s.cache.Invalidate(ctx)
	return &updated, nil
}

func normalizeSettings(settings model.SectionSettings) {
	gallery, ok := settings.(*model.GallerySettings)
	if !ok {
		return
	}
	for i := range gallery.Videos {
		gallery.Videos[i].Src = util.YouTubeEmbedURL(gallery.Videos[i].Src)
	}
}
