// Package fs implements a KVStore that keeps one file per key on the local
// filesystem.
package fs

import (
	"context"
	"errors"
	"fmt"
	iofs "io/fs"
	"os"
	"path/filepath"
	"strings"

	"chefmenu/pkg/domain"
)

var _ domain.KVStore = (*Store)(nil)

const valueSuffix = ".json"

// Store maps keys to files under root. Writes go through a temp file in the
// same directory followed by a rename, so a reader sees either the previous
// value or the new one and never a partial write.
type Store struct {
	root string
}

// New returns a filesystem-backed store rooted at root, creating it if needed.
func New(root string) (*Store, error) {
	if root == "" {
		root = "./data"
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create kv root: %w", err)
	}
	return &Store{root: root}, nil
}

// Driver returns the backend identifier.
func (s *Store) Driver() domain.Driver { return domain.DriverFS }

// Root returns the directory holding the values.
func (s *Store) Root() string { return s.root }

// sanitizeKey ensures key doesn't escape root and forbids path traversal and absolute paths.
func sanitizeKey(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", fmt.Errorf("empty key")
	}
	if strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid key contains '..'")
	}
	if strings.HasPrefix(key, "/") || filepath.IsAbs(key) {
		return "", fmt.Errorf("invalid absolute key")
	}
	return filepath.ToSlash(filepath.Clean(key)), nil
}

func (s *Store) pathFor(key string) (string, error) {
	k, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	return filepath.Join(s.root, filepath.FromSlash(k)+valueSuffix), nil
}

// GetItem reads the file backing key.
func (s *Store) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return nil, false, err
	}
	b, err := os.ReadFile(path)
	if errors.Is(err, iofs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", key, err)
	}
	return b, true, nil
}

// SetItem atomically replaces the file backing key.
func (s *Store) SetItem(ctx context.Context, key string, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create dir for %s: %w", key, err)
	}
	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", key, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()
	if _, err := tmp.Write(value); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", key, err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync %s: %w", key, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", key, err)
	}
	return nil
}
