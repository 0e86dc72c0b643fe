package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog/log"
)

var knownWeakSecrets = []string{
	"change-me", "changeme", "dev-secret-change-me", "secret", "admin", "password",
}

type Config struct {
	Port        int    `env:"PORT" envDefault:"5000"`
	AppEnv      string `env:"APP_ENV" envDefault:"development"`
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	RedisURL    string `env:"REDIS_URL"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	JWTSecret          string        `env:"JWT_SECRET,required,notEmpty"`
	JWTRefreshSecret   string        `env:"JWT_REFRESH_SECRET,required,notEmpty"`
	JWTExpiresIn       time.Duration `env:"JWT_EXPIRES_IN" envDefault:"15m"`
	JWTRefreshExpireIn time.Duration `env:"JWT_REFRESH_EXPIRES_IN" envDefault:"168h"`

	FrontendURL string   `env:"FRONTEND_URL" envDefault:"http://localhost:5173"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:5173,http://127.0.0.1:5173"`

	AdminEmail         string `env:"ADMIN_EMAIL"`
	AdminPassword      string `env:"ADMIN_PASSWORD"`
	SuperAdminEmail    string `env:"SUPER_ADMIN_EMAIL"`
	SuperAdminPassword string `env:"SUPER_ADMIN_PASSWORD"`

	SMTPHost     string `env:"SMTP_HOST"`
	SMTPPort     int    `env:"SMTP_PORT" envDefault:"587"`
	SMTPUser     string `env:"SMTP_USER"`
	SMTPPass     string `env:"SMTP_PASS"`
	SMTPFrom     string `env:"SMTP_FROM_NOREPLY" envDefault:"noreply@localhost"`
	ClientEmail  string `env:"CLIENT_EMAIL"`
	UploadsDir   string `env:"UPLOADS_DIR" envDefault:"uploads"`
	StaticDir    string `env:"STATIC_DIR"`
	SiteSeedPath string `env:"SITE_SEED_PATH"`
	MaxUploadMB  int64  `env:"MAX_UPLOAD_MB" envDefault:"50"`

	// When set, invite and toggle-active require the superadmin role.
	StrictAdminManagement bool `env:"STRICT_ADMIN_MANAGEMENT" envDefault:"false"`
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production" || c.AppEnv == "docker"
}

func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

func (c *Config) MailEnabled() bool {
	return c.SMTPHost != ""
}

func (c *Config) Validate(isProduction bool) error {
	if c.JWTSecret == "" || c.JWTRefreshSecret == "" {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must not be empty")
	}
	if c.JWTSecret == c.JWTRefreshSecret {
		return fmt.Errorf("JWT_SECRET and JWT_REFRESH_SECRET must differ")
	}
	if c.JWTExpiresIn <= 0 || c.JWTRefreshExpireIn <= 0 {
		return fmt.Errorf("token lifetimes must be positive")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive")
	}

	if isProduction {
		if err := validateSecret("JWT_SECRET", c.JWTSecret); err != nil {
			return err
		}
		if err := validateSecret("JWT_REFRESH_SECRET", c.JWTRefreshSecret); err != nil {
			return err
		}

		if !c.MailEnabled() {
			log.Warn().Msg("SMTP_HOST is empty in production: invitations and contact mails will only be logged")
		}
		if c.RedisURL != "" && strings.HasPrefix(c.RedisURL, "redis://") {
			log.Warn().Msg("REDIS_URL uses redis:// (not TLS) in production: consider using rediss://")
		}
		if strings.HasPrefix(c.FrontendURL, "http://") {
			log.Warn().Str("frontendUrl", c.FrontendURL).Msg("FRONTEND_URL is not https in production: invitation links will be sent in clear")
		}
	}

	return nil
}

func validateSecret(name, value string) error {
	if len(value) < 32 {
		return fmt.Errorf("%s must be at least 32 characters in production (generate with: openssl rand -base64 32)", name)
	}
	for _, weak := range knownWeakSecrets {
		if value == weak {
			return fmt.Errorf("%s is a known weak default; set a strong secret in production", name)
		}
	}
	return nil
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
