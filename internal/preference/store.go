// Package preference persists per-profile user preferences (hidden and
// favorited listing ids) in a key-value backend.
//
// Values are JSON-encoded. A missing, corrupt or unreadable entry is never an
// error for the caller: reads fall back to the supplied default.
package preference

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
)

// Fixed storage keys, one per preference kind.
const (
	KeyHidden    = "hiddenJobsIds"
	KeyFavorites = "favoriteJobsIds"
)

// KV is a string key-value backend scoped to a single profile.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
}

// Profiles hands out a KV scoped to one browser profile.
type Profiles interface {
	ForProfile(profileID string) KV
}

// Store reads and writes JSON values on top of a KV.
// Read-modify-write cycles through Update are serialized on the Store's lock.
type Store struct {
	kv KV
	mu *sync.Mutex
}

// NewStore wraps kv with a lock of its own.
func NewStore(kv KV) *Store {
	return &Store{kv: kv, mu: new(sync.Mutex)}
}

// NewLockedStore wraps kv and serializes updates on mu, which may be shared
// with other Stores over the same backend.
func NewLockedStore(kv KV, mu *sync.Mutex) *Store {
	return &Store{kv: kv, mu: mu}
}

// Read returns the value stored under key, or def when the entry is missing,
// cannot be decoded, or the backend fails.
func Read[T any](ctx context.Context, s *Store, key string, def T) T {
	return read(ctx, s, key, def)
}

// Write stores v under key.
func Write[T any](ctx context.Context, s *Store, key string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return write(ctx, s, key, v)
}

// Update applies fn to the current value (or def) and stores the result,
// which it returns. Consecutive calls observe each other's writes.
func Update[T any](ctx context.Context, s *Store, key string, def T, fn func(T) T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := fn(read(ctx, s, key, def))
	if err := write(ctx, s, key, next); err != nil {
		return next, err
	}
	return next, nil
}

func read[T any](ctx context.Context, s *Store, key string, def T) T {
	raw, found, err := s.kv.Get(ctx, key)
	if err != nil {
		slog.Warn("preference read failed, using default", "key", key, "err", err)
		return def
	}
	if !found {
		return def
	}
	var v T
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		slog.Warn("preference entry is corrupt, using default", "key", key, "err", err)
		return def
	}
	return v
}

func write[T any](ctx context.Context, s *Store, key string, v T) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode preference %q: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, string(b)); err != nil {
		return fmt.Errorf("store preference %q: %w", key, err)
	}
	return nil
}

// IDs returns the id sequence stored under key (empty when unset).
func (s *Store) IDs(ctx context.Context, key string) []string {
	ids := Read(ctx, s, key, []string{})
	if ids == nil {
		return []string{}
	}
	return ids
}

// ToggleID flips id's membership in the sequence under key and reports
// whether id is a member afterwards.
func (s *Store) ToggleID(ctx context.Context, key, id string) ([]string, bool, error) {
	ids, err := Update(ctx, s, key, []string{}, func(cur []string) []string {
		return Toggle(cur, id)
	})
	return ids, Contains(ids, id), err
}

// RemoveID drops id from the sequence under key.
func (s *Store) RemoveID(ctx context.Context, key, id string) ([]string, error) {
	return Update(ctx, s, key, []string{}, func(cur []string) []string {
		return Remove(cur, id)
	})
}
