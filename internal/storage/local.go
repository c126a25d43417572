package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// LocalStorage keeps blobs under a root directory. The API serves them from
// the public base path through Handler.
type LocalStorage struct {
	root       string
	publicBase string
}

// NewLocalStorage creates root if needed and returns a LocalStorage.
func NewLocalStorage(root, publicBase string) (*LocalStorage, error) {
	if root == "" {
		return nil, errors.New("local storage: root is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: create root: %w", err)
	}
	return &LocalStorage{
		root:       root,
		publicBase: strings.TrimRight(publicBase, "/"),
	}, nil
}

func (s *LocalStorage) Upload(_ context.Context, key string, reader io.Reader, size int64, _ string) error {
	if !ValidKey(key) {
		return fmt.Errorf("local storage: upload %q: %w", key, ErrInvalidKey)
	}
	dst := filepath.Join(s.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return fmt.Errorf("local storage: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), ".upload-*")
	if err != nil {
		return fmt.Errorf("local storage: temp file: %w", err)
	}
	n, err := io.Copy(tmp, reader)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err == nil && size >= 0 && n != size {
		err = fmt.Errorf("short write: got %d of %d bytes", n, size)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("local storage: upload %q: %w", key, err)
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("local storage: upload %q: %w", key, err)
	}
	return nil
}

func (s *LocalStorage) Delete(_ context.Context, key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("local storage: delete %q: %w", key, ErrInvalidKey)
	}
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(key)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("local storage: delete %q: %w", key, err)
	}
	return nil
}

func (s *LocalStorage) PublicURL(key string) string {
	return s.publicBase + "/" + key
}

// Handler serves stored blobs. Mount it with the public base path stripped.
func (s *LocalStorage) Handler() http.Handler {
	fs := http.FileServer(http.Dir(s.root))
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// No directory listings.
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Disposition", "attachment")
		fs.ServeHTTP(w, r)
	})
}
