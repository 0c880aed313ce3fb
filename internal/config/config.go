package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// App holds the runtime configuration loaded from environment variables.
type App struct {
	Env      string
	HTTPPort string

	LogLevel      string
	LogFile       string
	LogMaxSize    int // MB
	LogMaxBackups int
	LogMaxAge     int // days
	LogCompress   bool

	Timezone string

	SessionBackend string // memory, file or redis
	SessionFile    string
	SessionKey     string
	RedisAddr      string

	QueueBackend string // memory or redis
	QueueKey     string
	ExportDir    string

	JWTIssuer     string
	JWTSigningKey string
	AccessTTL     time.Duration

	ScanResetAfter time.Duration
	RecentLimit    int

	CORSAllowOrigins      string
	ExportRateLimitPerMin int

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string
}

// Load returns application config populated from environment variables with sensible defaults.
// A .env file in the working directory is loaded first when present. logger may be nil.
func Load(logger *zap.Logger) App {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			logger.Warn("failed to load .env, using process environment", zap.Error(err))
		}
	}

	l := loader{logger: logger}
	cfg := App{
		Env:      l.str("APP_ENV", "dev"),
		HTTPPort: l.str("HTTP_PORT", "8081"),

		LogLevel:      strings.ToLower(l.str("LOG_LEVEL", "info")),
		LogFile:       l.str("LOG_FILE", "./logs/attendance.log"),
		LogMaxSize:    l.int("LOG_MAX_SIZE", 50),
		LogMaxBackups: l.int("LOG_MAX_BACKUPS", 5),
		LogMaxAge:     l.int("LOG_MAX_AGE", 30),
		LogCompress:   l.bool("LOG_COMPRESS", false),

		Timezone: l.str("APP_TIMEZONE", "UTC"),

		SessionBackend: l.str("SESSION_BACKEND", "file"),
		SessionFile:    l.str("SESSION_FILE", "./data/session.json"),
		SessionKey:     l.str("SESSION_KEY", "user"),
		RedisAddr:      l.str("REDIS_ADDR", "localhost:6379"),

		QueueBackend: l.str("QUEUE_BACKEND", "memory"),
		QueueKey:     l.str("QUEUE_KEY", "attendance:exports"),
		ExportDir:    l.str("EXPORT_DIR", "./exports"),

		JWTIssuer:     l.str("JWT_ISSUER", "rfid-attendance"),
		JWTSigningKey: l.str("JWT_SIGNING_KEY", "dev-signing-secret-change"),
		AccessTTL:     l.duration("ACCESS_TTL", 12*time.Hour),

		ScanResetAfter: l.duration("SCAN_RESET_AFTER", 2*time.Second),
		RecentLimit:    l.int("RECENT_LIMIT", 5),

		CORSAllowOrigins:      l.str("CORS_ALLOW_ORIGINS", "*"),
		ExportRateLimitPerMin: l.int("EXPORT_RATE_LIMIT_PER_MIN", 30),

		CloudinaryCloudName: l.str("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    l.str("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: l.str("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    l.str("CLOUDINARY_FOLDER", "rfid-attendance/users"),
	}

	if cfg.JWTSigningKey == "dev-signing-secret-change" && cfg.IsProduction() {
		logger.Warn("JWT_SIGNING_KEY is using the default value in production")
	}
	return cfg
}

// IsProduction reports whether APP_ENV names a production deployment.
func (a App) IsProduction() bool {
	return a.Env == "production" || a.Env == "prod"
}

// Location resolves Timezone, falling back to UTC.
func (a App) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(a.Timezone)
	if err != nil {
		return time.UTC, fmt.Errorf("load timezone %q: %w", a.Timezone, err)
	}
	return loc, nil
}

// CloudinaryEnabled reports whether all Cloudinary credentials are set.
func (a App) CloudinaryEnabled() bool {
	return a.CloudinaryCloudName != "" && a.CloudinaryAPIKey != "" && a.CloudinaryAPISecret != ""
}

type loader struct {
	logger *zap.Logger
}

func (l loader) str(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func (l loader) duration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		d, err := time.ParseDuration(val)
		if err != nil {
			l.logger.Warn("invalid duration, using fallback", zap.String("key", key), zap.Duration("fallback", fallback), zap.Error(err))
			return fallback
		}
		return d
	}
	return fallback
}

func (l loader) bool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.ParseBool(val)
		if err != nil {
			l.logger.Warn("invalid bool, using fallback", zap.String("key", key), zap.Bool("fallback", fallback))
			return fallback
		}
		return parsed
	}
	return fallback
}

func (l loader) int(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			l.logger.Warn("invalid int, using fallback", zap.String("key", key), zap.Int("fallback", fallback))
			return fallback
		}
		return parsed
	}
	return fallback
}
