// Package kv defines the key-value store that holds project records, and its
// PostgreSQL, BoltDB, JSON-file and in-memory implementations.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a key doesn't exist in the store.
var ErrNotFound = errors.New("key not found")

// Store is a minimal key-value store. Values are opaque bytes, callers store
// JSON documents. Writes replace the whole value; the last write wins.
type Store interface {
	// Get returns the value for key or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)
	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key string, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
	// Close releases the underlying resources.
	Close() error
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
