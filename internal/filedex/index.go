// Package filedex is the in-memory lookup layer behind file uploads and
// downloads. It de-duplicates uploads by content checksum, gives every stored
// file a collision-free slug, and resolves an identifier (id, slug or original
// filename) to the blob URL.
//
// The index is not persisted. On startup it is rebuilt from the file records
// kept on projects; files uploaded without being attached to a project are
// forgotten on restart.
package filedex

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when an identifier resolves to nothing.
var ErrNotFound = errors.New("file not found")

// Entry is one stored blob.
type Entry struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Slug        string    `json:"slug"`
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	Hash        string    `json:"hash"`
	Size        int64     `json:"size"`
	ContentType string    `json:"contentType"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Upload describes content about to be registered.
type Upload struct {
	Name        string
	Hash        string
	Size        int64
	ContentType string
}

// Blob is where minted content ended up.
type Blob struct {
	Key string
	URL string
}

// MintFunc stores new content under a name derived from slug.
type MintFunc func(ctx context.Context, slug string) (Blob, error)

// contentKey pairs the checksum with the size so that a checksum collision
// between files of different lengths never aliases them.
type contentKey struct {
	hash string
	size int64
}

// Index maps ids, slugs and content checksums to entries. Lookups take a read
// lock; Register calls are serialized so two uploads of the same bytes can't
// both reach blob storage.
type Index struct {
	register sync.Mutex

	mu     sync.RWMutex
	byID   map[string]Entry
	bySlug map[string]string
	byHash map[contentKey]string

	now   func() time.Time
	newID func() string
}

// New returns an empty Index.
func New() *Index {
	return &Index{
		byID:   make(map[string]Entry),
		bySlug: make(map[string]string),
		byHash: make(map[contentKey]string),
		now:    time.Now,
		newID:  func() string { return uuid.NewString() },
	}
}

// Register returns the existing entry when the same content was stored before
// (duplicate=true, mint is not called). Otherwise it picks a free slug for
// u.Name, calls mint to store the content, and records the new entry.
func (ix *Index) Register(ctx context.Context, u Upload, mint MintFunc) (Entry, bool, error) {
	if u.Hash == "" {
		return Entry{}, false, errors.New("register: empty content hash")
	}

	ix.register.Lock()
	defer ix.register.Unlock()

	if e, ok := ix.Lookup(u.Hash, u.Size); ok {
		return e, true, nil
	}

	ix.mu.RLock()
	slug := Unique(Slugify(u.Name), ix.slugTaken)
	ix.mu.RUnlock()

	blob, err := mint(ctx, slug)
	if err != nil {
		return Entry{}, false, fmt.Errorf("register %q: %w", slug, err)
	}

	e := Entry{
		ID:          ix.newID(),
		Name:        u.Name,
		Slug:        slug,
		Key:         blob.Key,
		URL:         blob.URL,
		Hash:        u.Hash,
		Size:        u.Size,
		ContentType: u.ContentType,
		CreatedAt:   ix.now().UTC(),
	}

	ix.mu.Lock()
	ix.put(e)
	ix.mu.Unlock()
	return e, false, nil
}

// Lookup finds an entry by content checksum and size.
func (ix *Index) Lookup(hash string, size int64) (Entry, bool) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	id, ok := ix.byHash[contentKey{hash: hash, size: size}]
	if !ok {
		return Entry{}, false
	}
	return ix.byID[id], true
}

// Resolve finds an entry by id, then by slug, then by the slug the given
// filename would have.
func (ix *Index) Resolve(identifier string) (Entry, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if e, ok := ix.byID[identifier]; ok {
		return e, nil
	}
	if id, ok := ix.bySlug[identifier]; ok {
		return ix.byID[id], nil
	}
	if id, ok := ix.bySlug[Slugify(identifier)]; ok {
		return ix.byID[id], nil
	}
	return Entry{}, ErrNotFound
}

// Forget removes the entry with the given id and returns it.
func (ix *Index) Forget(id string) (Entry, bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	e, ok := ix.byID[id]
	if !ok {
		return Entry{}, false
	}
	delete(ix.byID, id)
	if ix.bySlug[e.Slug] == id {
		delete(ix.bySlug, e.Slug)
	}
	k := contentKey{hash: e.Hash, size: e.Size}
	if ix.byHash[k] == id {
		delete(ix.byHash, k)
	}
	return e, true
}

// Load adds previously stored entries, e.g. the files referenced by persisted
// projects. Entries with an id, slug or content already present are skipped.
// It returns how many entries were added.
func (ix *Index) Load(entries []Entry) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	added := 0
	for _, e := range entries {
		if e.ID == "" || e.Slug == "" {
			continue
		}
		if _, ok := ix.byID[e.ID]; ok {
			continue
		}
		if ix.slugTaken(e.Slug) {
			continue
		}
		if _, ok := ix.byHash[contentKey{hash: e.Hash, size: e.Size}]; ok && e.Hash != "" {
			continue
		}
		ix.put(e)
		added++
	}
	return added
}

// Entries returns all entries, oldest first.
func (ix *Index) Entries() []Entry {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	out := make([]Entry, 0, len(ix.byID))
	for _, e := range ix.byID {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Slug < out[j].Slug
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Len returns the number of entries.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.byID)
}

// put must be called with mu held for writing.
func (ix *Index) put(e Entry) {
	ix.byID[e.ID] = e
	ix.bySlug[e.Slug] = e.ID
	if e.Hash != "" {
		ix.byHash[contentKey{hash: e.Hash, size: e.Size}] = e.ID
	}
}

// slugTaken must be called with mu held.
func (ix *Index) slugTaken(slug string) bool {
	_, ok := ix.bySlug[slug]
	return ok
}
