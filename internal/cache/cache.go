// Package cache provides a TTL key/value store used to memoize expensive
// derived data (company research, profile extraction). The Store is an
// explicitly constructed instance injected into the components that need it,
// never a package-level singleton, so tests can supply a fake clock.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Store is the get/set/ttl contract shared by the in-memory and Redis
// implementations. Values are opaque byte slices; callers serialize with
// GetJSON/SetJSON.
type Store interface {
	// Get returns the value for key, or ok=false on a miss (absent or expired).
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores value under key with an absolute expiry of now + ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Delete removes key if present.
	Delete(ctx context.Context, key string) error
	// Clear removes all entries.
	Clear(ctx context.Context) error
}

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is a single-process in-memory Store. Expired entries are evicted
// lazily on access; there is no background sweep. Concurrent access on the
// same key is last-write-wins, acceptable because staleness is bounded by
// the ttl and values are idempotently recomputable.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

// NewMemory creates an in-memory store using the wall clock.
func NewMemory() *Memory {
	return NewMemoryWithClock(time.Now)
}

// NewMemoryWithClock creates an in-memory store with an injectable clock.
func NewMemoryWithClock(now func() time.Time) *Memory {
	return &Memory{
		entries: make(map[string]memoryEntry),
		now:     now,
	}
}

// Get implements Store.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, false, nil
	}
	if m.now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, false, nil
	}
	return entry.data, true, nil
}

// Set implements Store.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.entries[key] = memoryEntry{
		data:      value,
		expiresAt: m.now().Add(ttl),
	}
	return nil
}

// Delete implements Store.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// Clear implements Store.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
	return nil
}

// GetJSON fetches key and unmarshals it into T. A decode failure is treated
// as a miss so a corrupted entry can never poison callers.
func GetJSON[T any](ctx context.Context, s Store, key string) (*T, bool, error) {
	data, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		_ = s.Delete(ctx, key)
		return nil, false, nil
	}
	return &v, true, nil
}

// SetJSON marshals v and stores it under key with the given ttl.
func SetJSON[T any](ctx context.Context, s Store, key string, v *T, ttl time.Duration) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, data, ttl)
}
