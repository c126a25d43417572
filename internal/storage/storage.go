// Package storage defines the interface for blob storage operations.
// The MinIO implementation works with any S3-compatible provider; the local
// implementation keeps blobs on disk and is served by the API itself.
package storage

import (
	"context"
	"errors"
	"io"
	"strings"
)

// ErrInvalidKey is returned for object keys that are empty or escape the store.
var ErrInvalidKey = errors.New("invalid object key")

// Storage is the interface for uploading and retrieving blobs.
type Storage interface {
	// Upload streams data to the store under the given key.
	Upload(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	// Delete removes an object identified by key.
	Delete(ctx context.Context, key string) error
	// PublicURL constructs the browser-accessible URL for a given key.
	PublicURL(key string) string
}

// ValidKey reports whether key is a relative, slash-separated object name
// without empty or dot segments.
func ValidKey(key string) bool {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return false
	}
	for _, seg := range strings.Split(key, "/") {
		if seg == "" || seg == "." || seg == ".." {
			return false
		}
	}
	return true
}
