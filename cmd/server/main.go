package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/batala/site-server-go/internal/audit"
	"github.com/batala/site-server-go/internal/config"
	"github.com/batala/site-server-go/internal/database"
	apperrors "github.com/batala/site-server-go/internal/errors"
	"github.com/batala/site-server-go/internal/handler"
	"github.com/batala/site-server-go/internal/httputil"
	"github.com/batala/site-server-go/internal/jobs"
	"github.com/batala/site-server-go/internal/mailer"
	"github.com/batala/site-server-go/internal/middleware"
	"github.com/batala/site-server-go/internal/model"
	"github.com/batala/site-server-go/internal/redis"
	"github.com/batala/site-server-go/internal/repository"
	"github.com/batala/site-server-go/internal/service"
	"github.com/batala/site-server-go/internal/storage"
	"github.com/batala/site-server-go/internal/token"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	setLogLevel(cfg.LogLevel)

	isProduction := cfg.IsProduction()
	if err := cfg.Validate(isProduction); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}

	db, err := database.Open(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()
	log.Info().Msg("database connected")

	if err := db.EnsureSchema(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("failed to create schema")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = redis.NewClient(context.Background(), cfg.RedisURL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
		log.Info().Msg("redis connected")
	} else {
		log.Warn().Msg("REDIS_URL not set: login limits are per process and the site is not cached")
	}

	adminRepo := repository.NewAdminRepository(db)
	siteRepo := repository.NewSiteRepository(db)
	mediaRepo := repository.NewMediaRepository(db)

	hasher := service.Argon2Hasher{}
	seeder := service.NewSeeder(adminRepo, siteRepo, hasher)
	if err := seeder.SeedAdmins(context.Background(), []service.BootstrapAdmin{
		{Email: cfg.SuperAdminEmail, Password: cfg.SuperAdminPassword, Role: model.RoleSuperAdmin},
		{Email: cfg.AdminEmail, Password: cfg.AdminPassword, Role: model.RoleAdmin},
	}); err != nil {
		log.Fatal().Err(err).Msg("failed to seed admins")
	}
	if err := seeder.SeedSite(context.Background(), cfg.SiteSeedPath); err != nil {
		log.Fatal().Err(err).Msg("failed to seed site")
	}

	var mail mailer.Mailer = mailer.NewLogMailer()
	if cfg.MailEnabled() {
		mail = mailer.NewSMTPMailer(mailer.SMTPConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPass,
		})
	}

	uploadsContentDir := filepath.Join(cfg.UploadsDir, "content")
	store, err := storage.NewLocalStore(uploadsContentDir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to prepare uploads directory")
	}

	var siteCache service.SiteCache = service.NoopSiteCache{}
	if redisClient != nil {
		siteCache = service.NewRedisSiteCache(redisClient.Client, config.SiteCacheTTL)
	}

	issuer := token.NewIssuer(cfg.JWTSecret, cfg.JWTRefreshSecret, cfg.JWTExpiresIn, cfg.JWTRefreshExpireIn)
	authService := service.NewAuthService(adminRepo, issuer, hasher)
	adminService := service.NewAdminService(adminRepo, hasher, mail, service.InvitationConfig{
		FrontendURL: cfg.FrontendURL,
		From:        cfg.SMTPFrom,
	})
	siteService := service.NewSiteService(siteRepo, siteCache)
	mediaService := service.NewMediaService(mediaRepo, store)
	contactService := service.NewContactService(mail, service.ContactConfig{
		From:        cfg.SMTPFrom,
		ClientEmail: cfg.ClientEmail,
	})

	jwtMiddleware := middleware.NewJWTAuthMiddleware(issuer)
	requireAdmin := func(next http.Handler) http.Handler {
		return jwtMiddleware.Handler(middleware.RequireAdmin(next))
	}
	manageGate := middleware.RequireAdmin
	if cfg.StrictAdminManagement {
		manageGate = middleware.RequireSuperAdmin
	}

	var loginLimiter func(http.Handler) http.Handler
	if redisClient != nil {
		loginLimiter = middleware.NewIPRateLimitMiddleware(
			service.NewRateLimiter(redisClient.Client), config.LoginRateLimit, config.LoginRateWindow, "login",
		).Handler
	} else {
		loginLimiter = middleware.NewLoginRateLimiter().Handler
	}
	publicLimiter := httprate.Limit(
		config.PublicFormRateLimit,
		config.PublicFormRateWindow,
		httprate.WithKeyFuncs(httprate.KeyByRealIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			audit.LogFromRequest(r, audit.Event{
				Type:    audit.EventRateLimitExceed,
				Details: map[string]interface{}{"scope": r.URL.Path},
			})
			httputil.WriteError(w, apperrors.RateLimitExceeded())
		}),
	)

	healthChecks := map[string]handler.HealthCheck{"database": db.Healthy}
	if redisClient != nil {
		healthChecks["redis"] = redisClient.Healthy
	}

	securityHeadersMiddleware := middleware.NewSecurityHeadersMiddleware(isProduction)

	authHandler := handler.NewAuthHandler(authService, middleware.NewRefreshCookie(isProduction, cfg.JWTRefreshExpireIn), loginLimiter)
	adminsHandler := handler.NewAdminsHandler(adminService, authService, jwtMiddleware.Handler, manageGate, publicLimiter)
	siteHandler := handler.NewSiteHandler(siteService, requireAdmin)
	mediaHandler := handler.NewMediaHandler(mediaService, requireAdmin, cfg.MaxUploadBytes())
	contactHandler := handler.NewContactHandler(contactService, publicLimiter)

	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestLogger)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	r.Use(securityHeadersMiddleware.Handler)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", handler.NewHealthHandler(healthChecks))

		r.Group(func(r chi.Router) {
			r.Use(chimiddleware.Timeout(config.ServerRequestTimeout))
			r.Use(middleware.JSONBody(middleware.DefaultMaxJSONBody))

			r.Mount("/auth", authHandler.Routes())
			r.Mount("/admins", adminsHandler.Routes())
			r.Mount("/site", siteHandler.Routes())
			r.Mount("/contact", contactHandler.Routes())
		})

		// uploads carry their own size limit
		r.Mount("/media", mediaHandler.Routes())

		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			httputil.WriteError(w, apperrors.NotFound("Route"))
		})
	})

	r.Handle(model.MediaURLPrefix+"*", handler.UploadsFileServer(model.MediaURLPrefix, uploadsContentDir))

	if cfg.StaticDir != "" {
		r.NotFound(handler.NewSPAHandler(cfg.StaticDir).ServeHTTP)
	}

	cleanupJob := jobs.NewCleanupJob(config.CleanupJobInterval,
		jobs.CleanupTask{Name: "expired reset tokens", Run: adminRepo.ClearExpiredResetTokens},
	)
	cleanupJob.Start()
	defer cleanupJob.Stop()

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  config.ServerReadTimeout,
		WriteTimeout: config.ServerWriteTimeout,
		IdleTimeout:  config.ServerIdleTimeout,
	}

	go func() {
		log.Info().Str("addr", cfg.Addr()).Bool("production", isProduction).Msg("starting server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), config.ServerShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}

func setLogLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
