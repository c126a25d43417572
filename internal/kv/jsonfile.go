package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// ErrInvalidJSON is returned by JSONFileStore.Set for values that aren't JSON.
var ErrInvalidJSON = errors.New("value is not valid JSON")

// JSONFileStore keeps every entry in one human-readable JSON object on disk:
// {"projects": [...], "favorites": {...}}. It is the fallback used when the
// primary store is unavailable, and a complete backend on its own for small
// deployments. Values must be JSON documents.
type JSONFileStore struct {
	mu   sync.Mutex
	path string
}

// NewJSONFileStore returns a store backed by the file at path. The file is
// created on the first write.
func NewJSONFileStore(path string) (*JSONFileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("jsonfile: path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("jsonfile: create dir: %w", err)
	}
	return &JSONFileStore{path: path}, nil
}

// Path returns the backing file path.
func (s *JSONFileStore) Path() string { return s.path }

func (s *JSONFileStore) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return nil, err
	}
	v, ok := doc[key]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(v), nil
}

func (s *JSONFileStore) Set(_ context.Context, key string, value []byte) error {
	if !json.Valid(value) {
		return fmt.Errorf("jsonfile: set %q: %w", key, ErrInvalidJSON)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	doc[key] = clone(value)
	return s.write(doc)
}

func (s *JSONFileStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.read()
	if err != nil {
		return err
	}
	if _, ok := doc[key]; !ok {
		return nil
	}
	delete(doc, key)
	return s.write(doc)
}

func (s *JSONFileStore) Close() error { return nil }

func (s *JSONFileStore) read() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("jsonfile: read: %w", err)
	}
	doc := map[string]json.RawMessage{}
	if len(data) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("jsonfile: decode %s: %w", s.path, err)
	}
	return doc, nil
}

// write replaces the file atomically so a crash never leaves half a document.
func (s *JSONFileStore) write(doc map[string]json.RawMessage) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: encode: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".kv-*.json")
	if err != nil {
		return fmt.Errorf("jsonfile: temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("jsonfile: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("jsonfile: close: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("jsonfile: rename: %w", err)
	}
	return nil
}
