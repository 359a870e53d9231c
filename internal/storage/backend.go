package storage

import (
	"context"
	"io"
	"time"
)

// StorageBackend is the scratch store used while a request is in flight.
// Keys are "/"-separated and validated with security.ValidateStorageKey.
type StorageBackend interface {
	// Put stores data at the given key, replacing any existing object.
	Put(ctx context.Context, key string, data io.Reader) error

	// Get retrieves data from the given key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object at the given key. Missing keys are not an error.
	Delete(ctx context.Context, key string) error

	// DeletePrefix removes every object under prefix.
	DeletePrefix(ctx context.Context, prefix string) error

	// List returns all keys with the given prefix.
	List(ctx context.Context, prefix string) ([]string, error)

	// Exists checks if an object exists at the given key.
	Exists(ctx context.Context, key string) (bool, error)

	// Stat returns metadata for a single object.
	Stat(ctx context.Context, key string) (*StorageInfo, error)
}

// StorageInfo describes one stored object.
type StorageInfo struct {
	Key      string
	Size     int64
	Modified time.Time
}
