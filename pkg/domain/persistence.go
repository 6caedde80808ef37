package domain

import "context"

// Driver identifies a concrete key-value backend implementation.
type Driver string

const (
	DriverMemory   Driver = "memory"   // in-memory only (tests / ephemeral)
	DriverFS       Driver = "fs"       // one file per key under a root directory (default)
	DriverSQLite   Driver = "sqlite"   // embedded sqlite file
	DriverPostgres Driver = "postgres" // PostgreSQL server
	DriverS3       Driver = "s3"       // S3 / MinIO compatible bucket
)

// KVStore is a persisted mapping from an opaque key to a whole value. There
// are no partial updates, queries or transactions: a value is read or
// replaced in full.
type KVStore interface {
	// GetItem returns the stored value. found is false, with a nil error, when
	// the key has never been written.
	GetItem(ctx context.Context, key string) (value []byte, found bool, err error)
	// SetItem replaces the value stored at key.
	SetItem(ctx context.Context, key string, value []byte) error
	// Driver returns the backend identifier.
	Driver() Driver
}
