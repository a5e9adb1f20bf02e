package app

import (
	"os"
	"strconv"
	"time"

	"github.com/quayside/authd/internal/auth/cache"
	"github.com/quayside/authd/internal/auth/service"
	"github.com/quayside/authd/internal/auth/session"
	"github.com/quayside/authd/pkg/cryptox"
)

type Config struct {
	DatabaseFile string // Optional: path to SQLite database file (default: ./authd.db)

	RedisAddr     string // Redis host:port backing cache and sessions (default: localhost:6379)
	RedisPassword string // Optional: Redis AUTH password
	RedisDB       int    // Optional: Redis logical database (default: 0)

	SessionTTL        time.Duration // Session + cookie lifetime (default: 24h)
	SessionCookieName string        // Session cookie name (default: authd_session)
	CacheTTL          time.Duration // User projection cache TTL (default: 24h)
	ResetTokenTTL     time.Duration // Password reset token lifetime (default: 1h)
	BcryptCost        int           // Password hashing work factor (default: 10)

	ClientURL string // External base URL for reset links (default: http://localhost:3000)

	SMTPHost     string // Optional: SMTP relay host; empty means log-only mail
	SMTPPort     int    // Optional: SMTP relay port (default: 587)
	SMTPUsername string // Optional: SMTP auth username
	SMTPPassword string // Optional: SMTP auth password
	MailFrom     string // From address on outbound mail (default: no-reply@localhost)

	Env                  string        // Environment (dev, staging, prod) (default: dev)
	LogLevel             string        // Log level (debug, info, warn, error) (default: info)
	LogFormat            string        // Log format (json, text) (default: json)
	Port                 int           // HTTP server port (default: 8080)
	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Expired reset token purge interval (default: 1h)
}

func LoadConfig() Config {
	return Config{
		DatabaseFile: getEnvOrDefault("AUTHD_DATABASE_FILE", "authd.db"),

		RedisAddr:     getEnvOrDefault("REDIS_ADDR", "localhost:6379"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		RedisDB:       getEnvIntOrDefault("REDIS_DB", 0),

		SessionTTL:        getEnvDurationOrDefault("SESSION_TTL", session.DefaultTTL),
		SessionCookieName: getEnvOrDefault("SESSION_COOKIE_NAME", session.DefaultCookieName),
		CacheTTL:          getEnvDurationOrDefault("CACHE_TTL", cache.DefaultTTL),
		ResetTokenTTL:     getEnvDurationOrDefault("RESET_TOKEN_TTL", service.DefaultResetTokenTTL),
		BcryptCost:        getEnvIntOrDefault("BCRYPT_COST", cryptox.DefaultCost),

		ClientURL: getEnvOrDefault("CLIENT_URL", "http://localhost:3000"),

		SMTPHost:     os.Getenv("SMTP_HOST"),
		SMTPPort:     getEnvIntOrDefault("SMTP_PORT", 587),
		SMTPUsername: os.Getenv("SMTP_USERNAME"),
		SMTPPassword: os.Getenv("SMTP_PASSWORD"),
		MailFrom:     getEnvOrDefault("MAIL_FROM", "no-reply@localhost"),

		Env:                  getEnvOrDefault("ENV", "dev"),
		LogLevel:             getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:            getEnvOrDefault("LOG_FORMAT", "json"),
		Port:                 getEnvIntOrDefault("PORT", 8080),
		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes (for backwards compatibility)
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
