// Package sqlite implements a KVStore on an embedded SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"chefmenu/pkg/domain"

	_ "modernc.org/sqlite" // pure go sqlite driver
)

var _ domain.KVStore = (*Store)(nil)

const defaultPath = "chefmenu.db"

// Store keeps each value in a single row of the kv table.
type Store struct {
	db   *sql.DB
	path string
}

// New opens (creating if needed) the SQLite file at path and ensures the kv table exists.
func New(path string) (*Store, error) {
	if path == "" {
		path = defaultPath
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// a single connection keeps writers from tripping SQLITE_BUSY on one file
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		value BLOB NOT NULL
	)`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &Store{db: db, path: path}, nil
}

// Driver returns the backend identifier.
func (s *Store) Driver() domain.Driver { return domain.DriverSQLite }

// GetItem selects the row for key.
func (s *Store) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
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
	if _, err := s.db.ExecContext(ctx, `INSERT INTO kv(key,value) VALUES(?,?) ON CONFLICT(key) DO UPDATE SET value=excluded.value`, key, value); err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// DB exposes the underlying sql.DB for integration testing hooks.
func (s *Store) DB() *sql.DB { return s.db }

// Path returns the configured database path.
func (s *Store) Path() string { return s.path }
