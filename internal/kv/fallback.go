package kv

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// pendingKey lists, in the secondary, the keys whose latest write only the
// secondary holds.
const pendingKey = "fallback:pending"

// Fallback serves reads from Primary and falls back to Secondary when the
// primary fails. Writes go to both so the secondary stays a usable copy; a
// write is successful if either side accepted it.
//
// A key written while the primary was failing is marked pending. Reads of a
// pending key are served from the secondary, and the value is copied back to
// the primary on the first access that succeeds.
type Fallback struct {
	Primary   Store
	Secondary Store

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewFallback wires primary with a secondary fallback store.
func NewFallback(primary, secondary Store) *Fallback {
	return &Fallback{Primary: primary, Secondary: secondary}
}

func (f *Fallback) Get(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.isPending(ctx, key) {
		v, err := f.Secondary.Get(ctx, key)
		switch {
		case err == nil:
			f.resync(ctx, key, func() error { return f.Primary.Set(ctx, key, v) })
			return v, nil
		case errors.Is(err, ErrNotFound):
			f.resync(ctx, key, func() error { return f.Primary.Delete(ctx, key) })
			return nil, err
		}
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("kv: pending key unreadable in fallback")
	}

	v, err := f.Primary.Get(ctx, key)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, ErrNotFound) {
		zerolog.Ctx(ctx).Warn().Err(err).Str("key", key).Msg("kv: primary read failed, using fallback")
		return f.Secondary.Get(ctx, key)
	}
	// A key the primary has never seen may still live in the fallback file.
	v, serr := f.Secondary.Get(ctx, key)
	if serr != nil {
		return nil, err
	}
	return v, nil
}

func (f *Fallback) Set(ctx context.Context, key string, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	perr := f.Primary.Set(ctx, key, value)
	serr := f.Secondary.Set(ctx, key, value)
	return f.settle(ctx, key, "set", perr, serr)
}

func (f *Fallback) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	perr := f.Primary.Delete(ctx, key)
	serr := f.Secondary.Delete(ctx, key)
	return f.settle(ctx, key, "delete", perr, serr)
}

func (f *Fallback) Close() error {
	return errors.Join(f.Primary.Close(), f.Secondary.Close())
}

// settle applies the either-side-succeeds policy to a mirrored write and
// keeps the pending set in step with it.
func (f *Fallback) settle(ctx context.Context, key, op string, perr, serr error) error {
	switch {
	case perr != nil && serr != nil:
		return fmt.Errorf("%s %q: %w", op, key, errors.Join(perr, serr))
	case perr != nil:
		zerolog.Ctx(ctx).Warn().Err(perr).Str("key", key).Msgf("kv: primary %s failed, kept in fallback", op)
		f.markPending(ctx, key, true)
	case serr != nil:
		zerolog.Ctx(ctx).Warn().Err(serr).Str("key", key).Msgf("kv: fallback %s failed", op)
		f.markPending(ctx, key, false)
	default:
		f.markPending(ctx, key, false)
	}
	return nil
}

// resync replays a pending key onto the primary and clears the mark once the
// primary accepts it.
func (f *Fallback) resync(ctx context.Context, key string, apply func() error) {
	if err := apply(); err != nil {
		zerolog.Ctx(ctx).Debug().Err(err).Str("key", key).Msg("kv: primary still unavailable")
		return
	}
	f.markPending(ctx, key, false)
	zerolog.Ctx(ctx).Info().Str("key", key).Msg("kv: pending key restored to primary")
}

// The helpers below must be called with mu held.

func (f *Fallback) loadPending(ctx context.Context) {
	if f.pending != nil {
		return
	}
	f.pending = make(map[string]struct{})
	raw, err := f.Secondary.Get(ctx, pendingKey)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			zerolog.Ctx(ctx).Warn().Err(err).Msg("kv: read pending keys")
		}
		return
	}
	var keys []string
	if err := json.Unmarshal(raw, &keys); err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("kv: decode pending keys")
		return
	}
	for _, k := range keys {
		f.pending[k] = struct{}{}
	}
}

func (f *Fallback) isPending(ctx context.Context, key string) bool {
	f.loadPending(ctx)
	_, ok := f.pending[key]
	return ok
}

func (f *Fallback) markPending(ctx context.Context, key string, pending bool) {
	f.loadPending(ctx)
	if _, ok := f.pending[key]; ok == pending {
		return
	}
	if pending {
		f.pending[key] = struct{}{}
	} else {
		delete(f.pending, key)
	}

	keys := make([]string, 0, len(f.pending))
	for k := range f.pending {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	raw, err := json.Marshal(keys)
	if err == nil {
		err = f.Secondary.Set(ctx, pendingKey, raw)
	}
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("kv: save pending keys")
	}
}
