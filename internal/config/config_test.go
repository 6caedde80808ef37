package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"

	"chefmenu/pkg/domain"
)

var allKeys = []string{
	"CHEFMENU_STORAGE_DRIVER", "CHEFMENU_FS_ROOT", "CHEFMENU_SQLITE_PATH", "CHEFMENU_POSTGRES_DSN",
	"CHEFMENU_S3_BUCKET", "CHEFMENU_S3_REGION", "CHEFMENU_S3_ENDPOINT", "CHEFMENU_S3_PATH_STYLE",
	"CHEFMENU_S3_PREFIX", "CHEFMENU_ADMIN_USER", "CHEFMENU_ADMIN_PASSWORD_HASH", "CHEFMENU_TOKEN_SECRET",
	"CHEFMENU_TOKEN_TTL", "CHEFMENU_HTTP_ADDR", "CHEFMENU_ALLOWED_ORIGINS", "CHEFMENU_LOG_LEVEL",
	"CHEFMENU_LOG_FORMAT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
}

func TestNewFromEnv(t *testing.T) {
	t.Run("Defaults", func(t *testing.T) {
		clearEnv(t)
		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		if cfg.Storage.Driver != domain.DriverFS || cfg.Storage.FSRoot != "./data" || cfg.Storage.SQLitePath != "./chefmenu.db" {
			t.Errorf("unexpected storage defaults %+v", cfg.Storage)
		}
		if cfg.HTTP.Addr != ":8080" || len(cfg.HTTP.AllowedOrigins) != 0 {
			t.Errorf("unexpected http defaults %+v", cfg.HTTP)
		}
		if cfg.Auth.TokenTTL != 12*time.Hour || cfg.Log.Level != logrus.InfoLevel || cfg.Log.Format != "text" {
			t.Errorf("unexpected defaults %+v %+v", cfg.Auth, cfg.Log)
		}
	})

	t.Run("Everything", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CHEFMENU_STORAGE_DRIVER", "S3")
		t.Setenv("CHEFMENU_S3_BUCKET", "menus")
		t.Setenv("CHEFMENU_S3_ENDPOINT", "http://minio:9000")
		t.Setenv("CHEFMENU_S3_PATH_STYLE", "true")
		t.Setenv("CHEFMENU_S3_PREFIX", "prod/")
		t.Setenv("CHEFMENU_ADMIN_USER", "chef")
		t.Setenv("CHEFMENU_ADMIN_PASSWORD_HASH", "$2a$10$hash")
		t.Setenv("CHEFMENU_TOKEN_SECRET", "secret")
		t.Setenv("CHEFMENU_TOKEN_TTL", "30m")
		t.Setenv("CHEFMENU_HTTP_ADDR", "127.0.0.1:9090")
		t.Setenv("CHEFMENU_ALLOWED_ORIGINS", "http://a.test, http://b.test,")
		t.Setenv("CHEFMENU_LOG_LEVEL", "debug")
		t.Setenv("CHEFMENU_LOG_FORMAT", "JSON")

		cfg, err := NewFromEnv()
		if err != nil {
			t.Fatalf("Expected no error, got %v", err)
		}
		s3 := cfg.Storage.S3
		if cfg.Storage.Driver != domain.DriverS3 || s3.Bucket != "menus" || !s3.PathStyle || s3.Prefix != "prod/" || s3.Region != "us-east-1" {
			t.Errorf("unexpected s3 config %+v", s3)
		}
		if cfg.Auth.TokenTTL != 30*time.Minute || cfg.Auth.RequireAdmin() != nil || cfg.Auth.RequireTokens() != nil {
			t.Errorf("unexpected auth config %+v", cfg.Auth)
		}
		if len(cfg.HTTP.AllowedOrigins) != 2 || cfg.HTTP.AllowedOrigins[1] != "http://b.test" {
			t.Errorf("unexpected origins %v", cfg.HTTP.AllowedOrigins)
		}
		if cfg.Log.Level != logrus.DebugLevel || cfg.Log.Format != "json" {
			t.Errorf("unexpected log config %+v", cfg.Log)
		}
		if _, ok := cfg.Log.NewLogger().Formatter.(*logrus.JSONFormatter); !ok {
			t.Errorf("expected JSON formatter")
		}
	})

	errorCases := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"MissingPostgresDSN", map[string]string{"CHEFMENU_STORAGE_DRIVER": "postgres"}, "CHEFMENU_POSTGRES_DSN environment variable not set"},
		{"MissingBucket", map[string]string{"CHEFMENU_STORAGE_DRIVER": "s3"}, "CHEFMENU_S3_BUCKET environment variable not set"},
		{"UnknownDriver", map[string]string{"CHEFMENU_STORAGE_DRIVER": "etcd"}, `CHEFMENU_STORAGE_DRIVER: unknown driver "etcd"`},
		{"BadTTL", map[string]string{"CHEFMENU_TOKEN_TTL": "soon"}, `CHEFMENU_TOKEN_TTL: invalid duration "soon"`},
		{"BadFormat", map[string]string{"CHEFMENU_LOG_FORMAT": "xml"}, `CHEFMENU_LOG_FORMAT: unknown format "xml"`},
	}
	for _, tc := range errorCases {
		t.Run(tc.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := NewFromEnv()
			if err == nil || err.Error() != tc.want {
				t.Errorf("Expected error '%s', got '%v'", tc.want, err)
			}
		})
	}

	t.Run("BadBoolAndLevel", func(t *testing.T) {
		clearEnv(t)
		t.Setenv("CHEFMENU_S3_PATH_STYLE", "sometimes")
		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for CHEFMENU_S3_PATH_STYLE")
		}
		clearEnv(t)
		t.Setenv("CHEFMENU_LOG_LEVEL", "loud")
		if _, err := NewFromEnv(); err == nil {
			t.Fatal("Expected an error for CHEFMENU_LOG_LEVEL")
		}
	})
}

func TestAuthRequirements(t *testing.T) {
	var a AuthConfig
	if err := a.RequireAdmin(); err == nil || err.Error() != "CHEFMENU_ADMIN_USER environment variable not set" {
		t.Fatalf("unexpected error %v", err)
	}
	a.AdminUser = "chef"
	if err := a.RequireAdmin(); err == nil || err.Error() != "CHEFMENU_ADMIN_PASSWORD_HASH environment variable not set" {
		t.Fatalf("unexpected error %v", err)
	}
	if err := a.RequireTokens(); err == nil || err.Error() != "CHEFMENU_TOKEN_SECRET environment variable not set" {
		t.Fatalf("unexpected error %v", err)
	}
}

func TestLoadDotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("CHEFMENU_HTTP_ADDR")
	dir := t.TempDir()
	path := filepath.Join(dir, "test.env")
	if err := os.WriteFile(path, []byte("CHEFMENU_HTTP_ADDR=:7070\nCHEFMENU_LOG_LEVEL=warn\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("CHEFMENU_LOG_LEVEL", "error")
	if err := LoadDotEnv(filepath.Join(dir, "missing.env"), path); err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg, err := NewFromEnv()
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	if cfg.HTTP.Addr != ":7070" {
		t.Errorf("expected .env value, got %s", cfg.HTTP.Addr)
	}
	if cfg.Log.Level != logrus.ErrorLevel {
		t.Errorf("process environment must win over .env, got %s", cfg.Log.Level)
	}
}
