// internal/storage/pricecache/backend.go
package pricecache

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Backend.Read when the key does not exist.
var ErrNotFound = errors.New("pricecache: key not found")

// Backend is a flat key/blob store. Keys use forward slashes.
type Backend interface {
	// Write stores data at the given key, replacing any previous value
	Write(ctx context.Context, key string, data []byte) error

	// Read retrieves data at the given key or returns ErrNotFound
	Read(ctx context.Context, key string) ([]byte, error)

	// List returns all keys matching the prefix
	List(ctx context.Context, prefix string) ([]string, error)

	// Delete removes the data at the given key
	Delete(ctx context.Context, key string) error
}
