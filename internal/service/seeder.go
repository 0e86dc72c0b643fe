package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx/types"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/batala/site-server-go/internal/model"
	"github.com/batala/site-server-go/internal/repository"
)

type BootstrapAdmin struct {
	Email    string
	Password string
	Role     model.Role
}

// Seeder fills empty tables on first start. It never touches tables that
// already hold rows.
type Seeder struct {
	adminRepo repository.AdminRepository
	siteRepo  repository.SiteRepository
	hasher    PasswordHasher
}

func NewSeeder(adminRepo repository.AdminRepository, siteRepo repository.SiteRepository, hasher PasswordHasher) *Seeder {
	return &Seeder{adminRepo: adminRepo, siteRepo: siteRepo, hasher: hasher}
}

func (s *Seeder) SeedAdmins(ctx context.Context, accounts []BootstrapAdmin) error {
	count, err := s.adminRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count admins: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, acc := range accounts {
		if acc.Email == "" || acc.Password == "" {
			log.Warn().Str("role", string(acc.Role)).Msg("bootstrap admin credentials missing, skipping")
			continue
		}
		hash, err := s.hasher.Hash(acc.Password)
		if err != nil {
			return fmt.Errorf("hash password for %s: %w", acc.Email, err)
		}
		if _, err := s.adminRepo.Create(ctx, model.CreateAdminParams{
			Email:        acc.Email,
			PasswordHash: hash,
			Role:         acc.Role,
		}); err != nil {
			return fmt.Errorf("create admin %s: %w", acc.Email, err)
		}
		log.Info().Str("email", acc.Email).Str("role", string(acc.Role)).Msg("bootstrap admin created")
	}
	return nil
}

type siteSeed struct {
	Meta     any `yaml:"meta"`
	Theme    any `yaml:"theme"`
	Sections any `yaml:"sections"`
}

// SeedSite loads the initial site document from a YAML or JSON file.
func (s *Seeder) SeedSite(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}

	count, err := s.siteRepo.Count(ctx)
	if err != nil {
		return fmt.Errorf("count site rows: %w", err)
	}
	if count > 0 {
		return nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read site seed: %w", err)
	}
	meta, theme, sections, err := parseSiteSeed(raw)
	if err != nil {
		return fmt.Errorf("parse site seed %s: %w", path, err)
	}

	if _, err := s.siteRepo.Create(ctx, meta, theme, sections); err != nil {
		return fmt.Errorf("create site: %w", err)
	}
	log.Info().Str("path", path).Msg("site content seeded")
	return nil
}

// parseSiteSeed accepts YAML or JSON (a YAML subset) and returns the three
// documents as JSON. Sections are round-tripped through the typed union so
// an invalid seed fails here rather than on the first read.
func parseSiteSeed(raw []byte) (meta, theme, sections types.JSONText, err error) {
	var seed siteSeed
	if err := yaml.Unmarshal(raw, &seed); err != nil {
		return nil, nil, nil, err
	}
	if seed.Sections == nil {
		return nil, nil, nil, fmt.Errorf("sections are required")
	}

	if meta, err = toJSON(seed.Meta); err != nil {
		return nil, nil, nil, fmt.Errorf("meta: %w", err)
	}
	if theme, err = toJSON(seed.Theme); err != nil {
		return nil, nil, nil, fmt.Errorf("theme: %w", err)
	}

	sectionsJSON, err := json.Marshal(seed.Sections)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("sections: %w", err)
	}
	var typed []model.Section
	if err := json.Unmarshal(sectionsJSON, &typed); err != nil {
		return nil, nil, nil, fmt.Errorf("sections: %w", err)
	}
	if sections, err = json.Marshal(typed); err != nil {
		return nil, nil, nil, fmt.Errorf("sections: %w", err)
	}
	return meta, theme, sections, nil
}

func toJSON(v any) (types.JSONText, error) {
	if v == nil {
		return types.JSONText("{}"), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return types.JSONText(b), nil
}
