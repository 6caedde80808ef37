// Package postgres implements a KVStore on a PostgreSQL table using the pgx
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"chefmenu/pkg/domain"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as a database/sql driver
)

var _ domain.KVStore = (*Store)(nil)

const (
	defaultDriver = "pgx"
	defaultDSN    = "postgres://localhost/chefmenu?sslmode=disable"
)

var (
	sqlOpen = sql.Open
	openMu  sync.Mutex
)

// Store keeps each value in a single row of the kv table.
type Store struct {
	db *sql.DB
}

// New opens a connection using dsn (falls back to defaultDSN), pings it and
// ensures the kv table exists.
func New(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = defaultDSN
	}
	openMu.Lock()
	db, err := sqlOpen(defaultDriver, dsn)
	openMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := ensureTable(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func ensureTable(ctx context.Context, db *sql.DB) error {
	ddl := `CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BYTEA NOT NULL
	)`
	if _, err := db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("ensure kv table: %w", err)
	}
	return nil
}

// Driver returns the backend identifier.
func (s *Store) Driver() domain.Driver { return domain.DriverPostgres }

// GetItem selects the row for key.
func (s *Store) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("select %s: %w", key, err)
	}
	return value, true, nil
}

// SetItem upserts the row for key.
func (s *Store) SetItem(ctx context.Context, key string, value []byte) error {
	if value == nil {
		value = []byte{}
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO kv(key,value) VALUES($1,$2) ON CONFLICT(key) DO UPDATE SET value=EXCLUDED.value`, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// OverrideSQLOpen swaps the sqlOpen function for tests and returns a restore function.
func OverrideSQLOpen(fn func(driverName, dataSourceName string) (*sql.DB, error)) func() {
	openMu.Lock()
	defer openMu.Unlock()
	prev := sqlOpen
	sqlOpen = fn
	return func() {
		openMu.Lock()
		defer openMu.Unlock()
		sqlOpen = prev
	}
}
