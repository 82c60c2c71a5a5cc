package storage

import (
	"context"
	"time"
)

// Backend defines the interface for rate limit state persistence.
// Implementations must be thread-safe and support concurrent access.
type Backend interface {
	// Save persists the bucket state for a client key.
	// If state already exists, it is updated. Returns error on failure.
	Save(ctx context.Context, state *BucketState) error

	// Load retrieves the bucket state for a client key.
	// Returns nil if no state exists. Returns error on system failure.
	Load(ctx context.Context, key string) (*BucketState, error)

	// Delete removes the bucket state for a client key.
	// Returns error on failure. No-op if state doesn't exist.
	Delete(ctx context.Context, key string) error

	// Cleanup removes state entries not updated since olderThan.
	// Returns the number of entries deleted and any error.
	Cleanup(ctx context.Context, olderThan time.Time) (int, error)

	// Close releases any resources held by the backend.
	// The backend should not be used after calling Close.
	Close() error
}

// BucketState is the persisted state of one client's token bucket.
type BucketState struct {
	// Key identifies the client the bucket belongs to.
	Key string

	// Tokens is the number of tokens available at LastRefill.
	Tokens int64

	// LastRefill is when tokens were last refilled.
	LastRefill time.Time

	// LastUpdated is when this state was last modified.
	LastUpdated time.Time

	// CreatedAt is when this state was first created.
	CreatedAt time.Time
}
