package core

import (
	"context"
	"fmt"
	"io"

	"chefmenu/internal/infra/kv/fs"
	"chefmenu/internal/infra/kv/memory"
	"chefmenu/internal/infra/kv/postgres"
	"chefmenu/internal/infra/kv/s3"
	"chefmenu/internal/infra/kv/sqlite"
	"chefmenu/pkg/domain"
)

// StorageConfig selects and parameterizes a KV backend.
type StorageConfig struct {
	Driver      domain.Driver
	FSRoot      string
	SQLitePath  string
	PostgresDSN string
	S3          s3.Config
}

// OpenKVStore constructs the backend named by cfg.Driver. An empty driver
// selects the filesystem backend.
func OpenKVStore(ctx context.Context, cfg StorageConfig) (domain.KVStore, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = domain.DriverFS
	}
	switch driver {
	case domain.DriverMemory:
		return memory.New(), nil
	case domain.DriverFS:
		return fs.New(cfg.FSRoot)
	case domain.DriverSQLite:
		return sqlite.New(cfg.SQLitePath)
	case domain.DriverPostgres:
		return postgres.New(ctx, cfg.PostgresDSN)
	case domain.DriverS3:
		return s3.New(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}

// CloseKVStore releases backends that hold connections; others are a no-op.
func CloseKVStore(store domain.KVStore) error {
	if c, ok := store.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
