package project

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/showcase/service/internal/kv"
)

const (
	keyProjects  = "projects"
	keyFavorites = "favorites"
)

// State is everything the repository persists: the project list and, per
// project id, the visitors who favorited it.
type State struct {
	Projects  []Project
	Favorites map[string][]string
}

// Repository stores the project list as one JSON document in the KV store.
// Writes are read-modify-write cycles serialized by a process-local mutex;
// between processes the last write wins.
type Repository struct {
	kv kv.Store
	mu sync.Mutex
}

// NewRepository creates a Repository over the given store.
func NewRepository(store kv.Store) *Repository {
	return &Repository{kv: store}
}

// Load returns the current state.
func (r *Repository) Load(ctx context.Context) (*State, error) {
	projects, err := r.loadProjects(ctx)
	if err != nil {
		return nil, err
	}
	favorites, err := r.loadFavorites(ctx)
	if err != nil {
		return nil, err
	}
	return &State{Projects: projects, Favorites: favorites}, nil
}

// Mutate loads the state, applies fn and saves the result. Nothing is
// written if fn returns an error.
func (r *Repository) Mutate(ctx context.Context, fn func(s *State) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, err := r.Load(ctx)
	if err != nil {
		return err
	}
	favs, err := json.Marshal(s.Favorites)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}

	if err := fn(s); err != nil {
		return err
	}

	if err := r.save(ctx, keyProjects, s.Projects); err != nil {
		return err
	}
	// Favorites only change on favorite/unfavorite and deletes; skip the
	// second write otherwise.
	after, err := json.Marshal(s.Favorites)
	if err != nil {
		return fmt.Errorf("encode favorites: %w", err)
	}
	if string(favs) != string(after) {
		if err := r.kv.Set(ctx, keyFavorites, after); err != nil {
			return fmt.Errorf("save favorites: %w", err)
		}
	}
	return nil
}

// Replace overwrites the project list, e.g. from an import.
func (r *Repository) Replace(ctx context.Context, projects []Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.save(ctx, keyProjects, projects)
}

func (r *Repository) loadProjects(ctx context.Context) ([]Project, error) {
	data, err := r.kv.Get(ctx, keyProjects)
	if errors.Is(err, kv.ErrNotFound) {
		return []Project{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}
	var projects []Project
	if err := json.Unmarshal(data, &projects); err != nil {
		return nil, fmt.Errorf("decode projects: %w", err)
	}
	if projects == nil {
		projects = []Project{}
	}
	return projects, nil
}

func (r *Repository) loadFavorites(ctx context.Context) (map[string][]string, error) {
	favorites := map[string][]string{}
	data, err := r.kv.Get(ctx, keyFavorites)
	if errors.Is(err, kv.ErrNotFound) {
		return favorites, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load favorites: %w", err)
	}
	if err := json.Unmarshal(data, &favorites); err != nil {
		return nil, fmt.Errorf("decode favorites: %w", err)
	}
	if favorites == nil {
		favorites = map[string][]string{}
	}
	return favorites, nil
}

func (r *Repository) save(ctx context.Context, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := r.kv.Set(ctx, key, data); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
