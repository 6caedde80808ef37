// Package config reads chefmenu settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"chefmenu/internal/core"
	"chefmenu/internal/infra/kv/s3"
	"chefmenu/pkg/domain"
)

// Config holds the configuration for every chefmenu command.
type Config struct {
	Storage core.StorageConfig
	Auth    AuthConfig
	HTTP    HTTPConfig
	Log     LogConfig
}

// AuthConfig holds the single admin credential and token settings.
type AuthConfig struct {
	AdminUser         string
	AdminPasswordHash string
	TokenSecret       string
	TokenTTL          time.Duration
}

// HTTPConfig holds the listener settings for `chefmenu serve`.
type HTTPConfig struct {
	Addr           string
	AllowedOrigins []string
}

// LogConfig selects the logrus level and formatter.
type LogConfig struct {
	Level  logrus.Level
	Format string
}

// LoadDotEnv loads variables from the given files (".env" when none) without
// overriding the process environment. Missing files are ignored.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

// NewFromEnv creates a Config from environment variables. Only the settings
// needed by the selected storage driver are required here; credentials are
// checked by RequireAdmin and RequireTokens where a command needs them.
func NewFromEnv() (*Config, error) {
	driver := domain.Driver(strings.ToLower(getEnv("CHEFMENU_STORAGE_DRIVER", string(domain.DriverFS))))
	storage := core.StorageConfig{
		Driver:      driver,
		FSRoot:      getEnv("CHEFMENU_FS_ROOT", "./data"),
		SQLitePath:  getEnv("CHEFMENU_SQLITE_PATH", "./chefmenu.db"),
		PostgresDSN: os.Getenv("CHEFMENU_POSTGRES_DSN"),
		S3: s3.Config{
			Bucket:   os.Getenv("CHEFMENU_S3_BUCKET"),
			Region:   getEnv("CHEFMENU_S3_REGION", "us-east-1"),
			Endpoint: os.Getenv("CHEFMENU_S3_ENDPOINT"),
			Prefix:   os.Getenv("CHEFMENU_S3_PREFIX"),
		},
	}
	switch driver {
	case domain.DriverMemory, domain.DriverFS, domain.DriverSQLite:
	case domain.DriverPostgres:
		if storage.PostgresDSN == "" {
			return nil, fmt.Errorf("CHEFMENU_POSTGRES_DSN environment variable not set")
		}
	case domain.DriverS3:
		if storage.S3.Bucket == "" {
			return nil, fmt.Errorf("CHEFMENU_S3_BUCKET environment variable not set")
		}
	default:
		return nil, fmt.Errorf("CHEFMENU_STORAGE_DRIVER: unknown driver %q", driver)
	}
	if v := os.Getenv("CHEFMENU_S3_PATH_STYLE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("CHEFMENU_S3_PATH_STYLE: %w", err)
		}
		storage.S3.PathStyle = b
	}

	ttl := 12 * time.Hour
	if v := os.Getenv("CHEFMENU_TOKEN_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("CHEFMENU_TOKEN_TTL: invalid duration %q", v)
		}
		ttl = d
	}

	level, err := logrus.ParseLevel(getEnv("CHEFMENU_LOG_LEVEL", "info"))
	if err != nil {
		return nil, fmt.Errorf("CHEFMENU_LOG_LEVEL: %w", err)
	}
	format := strings.ToLower(getEnv("CHEFMENU_LOG_FORMAT", "text"))
	if format != "text" && format != "json" {
		return nil, fmt.Errorf("CHEFMENU_LOG_FORMAT: unknown format %q", format)
	}

	return &Config{
		Storage: storage,
		Auth: AuthConfig{
			AdminUser:         os.Getenv("CHEFMENU_ADMIN_USER"),
			AdminPasswordHash: os.Getenv("CHEFMENU_ADMIN_PASSWORD_HASH"),
			TokenSecret:       os.Getenv("CHEFMENU_TOKEN_SECRET"),
			TokenTTL:          ttl,
		},
		HTTP: HTTPConfig{
			Addr:           getEnv("CHEFMENU_HTTP_ADDR", ":8080"),
			AllowedOrigins: splitList(os.Getenv("CHEFMENU_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{Level: level, Format: format},
	}, nil
}

// RequireAdmin reports the first missing admin credential variable.
func (c AuthConfig) RequireAdmin() error {
	if c.AdminUser == "" {
		return fmt.Errorf("CHEFMENU_ADMIN_USER environment variable not set")
	}
	if c.AdminPasswordHash == "" {
		return fmt.Errorf("CHEFMENU_ADMIN_PASSWORD_HASH environment variable not set")
	}
	return nil
}

// RequireTokens reports a missing signing secret.
func (c AuthConfig) RequireTokens() error {
	if c.TokenSecret == "" {
		return fmt.Errorf("CHEFMENU_TOKEN_SECRET environment variable not set")
	}
	return nil
}

// NewLogger builds a logrus logger from c writing to stderr.
func (c LogConfig) NewLogger() *logrus.Logger {
	l := logrus.New()
	l.SetLevel(c.Level)
	if c.Format == "json" {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return l
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
