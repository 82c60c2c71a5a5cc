package storage

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryBackend implements Backend using in-memory storage.
// This is the default backend and provides fast access with no persistence.
// All data is lost when the process exits.
//
// MemoryBackend is thread-safe and supports concurrent access using sync.RWMutex.
type MemoryBackend struct {
	// states maps client key to bucket state.
	states map[string]*BucketState

	// mu protects access to states map.
	mu sync.RWMutex

	// maxEntries is the maximum number of entries before eviction.
	maxEntries int
}

// MemoryBackendConfig configures the memory backend.
type MemoryBackendConfig struct {
	// MaxEntries is the maximum number of state entries to store.
	// The oldest entry is evicted when this limit is reached.
	// Default: 100,000
	MaxEntries int
}

// NewMemoryBackend creates a new in-memory storage backend with default settings.
func NewMemoryBackend() *MemoryBackend {
	return NewMemoryBackendWithConfig(MemoryBackendConfig{
		MaxEntries: 100000,
	})
}

// NewMemoryBackendWithConfig creates a new in-memory backend with custom configuration.
func NewMemoryBackendWithConfig(cfg MemoryBackendConfig) *MemoryBackend {
	if cfg.MaxEntries == 0 {
		cfg.MaxEntries = 100000
	}

	return &MemoryBackend{
		states:     make(map[string]*BucketState),
		maxEntries: cfg.MaxEntries,
	}
}

// Save persists the bucket state for a client key.
func (m *MemoryBackend) Save(ctx context.Context, state *BucketState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if state.Key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.states[state.Key]; !exists && len(m.states) >= m.maxEntries {
		m.evictOldestLocked()
	}

	now := time.Now()
	if state.CreatedAt.IsZero() {
		state.CreatedAt = now
	}
	state.LastUpdated = now

	m.states[state.Key] = state

	return nil
}

// Load retrieves the bucket state for a client key.
// Returns nil if no state exists.
func (m *MemoryBackend) Load(ctx context.Context, key string) (*BucketState, error) {
	if key == "" {
		return nil, fmt.Errorf("key cannot be empty")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.states[key]
	if !exists {
		return nil, nil
	}

	// Return a copy so callers cannot mutate stored state.
	copied := *state
	return &copied, nil
}

// Delete removes the bucket state for a client key.
func (m *MemoryBackend) Delete(ctx context.Context, key string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.states, key)
	return nil
}

// Cleanup removes entries not updated since olderThan.
func (m *MemoryBackend) Cleanup(ctx context.Context, olderThan time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	deleted := 0
	for key, state := range m.states {
		if state.LastUpdated.Before(olderThan) {
			delete(m.states, key)
			deleted++
		}
	}

	return deleted, nil
}

// Close releases resources. For the memory backend this drops all state.
func (m *MemoryBackend) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.states = make(map[string]*BucketState)
	return nil
}

// evictOldestLocked removes the least recently updated entry.
// Caller must hold lock.
func (m *MemoryBackend) evictOldestLocked() {
	var oldestKey string
	var oldestTime time.Time

	for key, state := range m.states {
		if oldestKey == "" || state.LastUpdated.Before(oldestTime) {
			oldestKey = key
			oldestTime = state.LastUpdated
		}
	}

	if oldestKey != "" {
		delete(m.states, oldestKey)
	}
}
