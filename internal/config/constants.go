package config

import "time"

// Database connection pool settings
const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 5 * time.Minute
)

// HTTP server timeouts
const (
	ServerRequestTimeout  = 60 * time.Second
	ServerReadTimeout     = 15 * time.Second
	ServerWriteTimeout    = 120 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second
)

// Health check and connection timeouts
const (
	DBPingTimeout    = 5 * time.Second
	RedisDialTimeout = 3 * time.Second
	RedisOpTimeout   = time.Second
)

// Background job intervals
const CleanupJobInterval = 5 * time.Minute

// Auth
const (
	RefreshCookieName   = "refreshToken"
	RefreshCookiePath   = "/api/auth"
	RefreshCookieMaxAge = 7 * 24 * time.Hour
	ResetTokenTTL       = 24 * time.Hour
	MinPasswordLength   = 8
)

// Rate limiting
const (
	LoginRateLimit       = 5
	LoginRateWindow      = time.Minute
	PublicFormRateLimit  = 10
	PublicFormRateWindow = time.Minute
)

// Site content cache lifetime in Redis
const SiteCacheTTL = 5 * time.Minute
