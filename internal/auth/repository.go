package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/showcase/service/internal/kv"
)

const keyLoginAttempts = "auth:login_attempts"

// attempts is the persisted record of recent failed logins.
type attempts struct {
	Failures    int       `json:"failures"`
	LockedUntil time.Time `json:"lockedUntil,omitempty"`
}

// Repository persists failed login attempts so a lockout survives restarts.
type Repository struct {
	kv kv.Store
	mu sync.Mutex
}

// NewRepository creates a new auth Repository.
func NewRepository(store kv.Store) *Repository {
	return &Repository{kv: store}
}

// Reserve claims one login attempt before the password is checked, so a
// burst of concurrent attempts can't test more than limit passwords. It fails
// with ErrLocked while a lockout runs. The attempt that reaches limit starts a
// lockout until now+lockout and returns its end; otherwise the zero time.
// A successful login calls Reset, which also clears a lockout.
func (r *Repository) Reserve(ctx context.Context, now time.Time, limit int, lockout time.Duration) (time.Time, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	a, err := r.load(ctx)
	if err != nil {
		return time.Time{}, err
	}
	if now.Before(a.LockedUntil) {
		return time.Time{}, ErrLocked
	}
	a.Failures++
	var until time.Time
	if a.Failures >= limit {
		a.Failures = 0
		a.LockedUntil = now.Add(lockout)
		until = a.LockedUntil
	}
	if err := r.save(ctx, a); err != nil {
		return time.Time{}, err
	}
	return until, nil
}

// Reset clears the failure counter after a successful login.
func (r *Repository) Reset(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.kv.Delete(ctx, keyLoginAttempts)
	if err != nil && !errors.Is(err, kv.ErrNotFound) {
		return fmt.Errorf("reset login attempts: %w", err)
	}
	return nil
}

func (r *Repository) load(ctx context.Context) (attempts, error) {
	var a attempts
	data, err := r.kv.Get(ctx, keyLoginAttempts)
	if errors.Is(err, kv.ErrNotFound) {
		return a, nil
	}
	if err != nil {
		return a, fmt.Errorf("load login attempts: %w", err)
	}
	if err := json.Unmarshal(data, &a); err != nil {
		return a, fmt.Errorf("decode login attempts: %w", err)
	}
	return a, nil
}

func (r *Repository) save(ctx context.Context, a attempts) error {
	data, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("encode login attempts: %w", err)
	}
	if err := r.kv.Set(ctx, keyLoginAttempts, data); err != nil {
		return fmt.Errorf("save login attempts: %w", err)
	}
	return nil
}
