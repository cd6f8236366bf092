// Package store resolves the relative file paths named in project metadata
// against a backing location: a local directory or an S3-compatible bucket.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// Driver identifies a concrete store backend.
type Driver string

const (
	// DriverFilesystem reads objects from a local directory.
	DriverFilesystem Driver = "fs"
	// DriverS3 reads objects from an S3 / MinIO compatible bucket.
	DriverS3 Driver = "s3"
)

// ErrNotFound is returned when a key does not exist in the store.
var ErrNotFound = errors.New("store: object not found")

// Fingerprint holds the identity of a stored object at a point in time.
// Two fingerprints of the same key are equal only if the object is unchanged.
type Fingerprint struct {
	Key     string
	Size    int64
	ModTime time.Time
	ETag    string
}

// Equal reports whether two fingerprints describe the same object version.
func (f Fingerprint) Equal(o Fingerprint) bool {
	return f.Key == o.Key && f.Size == o.Size && f.ModTime.Equal(o.ModTime) && f.ETag == o.ETag
}

// Store provides read access to project data files.
type Store interface {
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Stat(ctx context.Context, key string) (Fingerprint, error)
	Driver() Driver
}

// Config selects and configures a store backend.
type Config struct {
	Driver Driver
	Root   string // filesystem root directory
	S3     S3Config
}

// Open constructs the store described by cfg. An empty driver means filesystem.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch cfg.Driver {
	case "", DriverFilesystem:
		return NewFS(cfg.Root)
	case DriverS3:
		return NewS3(ctx, cfg.S3)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
}
