package ratelimit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"openquery-hq/vanguard/pkg/limits/storage"
)

// Config holds the per-client token bucket parameters.
type Config struct {
	// Capacity is the maximum number of tokens per client (burst size).
	Capacity int64

	// RefillPerSecond is the number of tokens restored per second.
	RefillPerSecond float64
}

// Limiter enforces a per-client token bucket over ingest requests.
//
// Buckets are created lazily per client key and optionally persisted
// through a storage backend so limits survive restarts. Persistence is
// best-effort: a failing backend degrades to in-memory limiting rather
// than failing requests.
type Limiter struct {
	config  Config
	backend storage.Backend
	log     *slog.Logger

	mu      sync.Mutex
	buckets map[string]*clientBucket
}

// clientBucket pairs a bucket with the last time its client was seen,
// so idle buckets can be pruned.
type clientBucket struct {
	bucket   *TokenBucket
	lastSeen time.Time
}

// NewLimiter creates a per-client rate limiter. backend may be nil for
// purely in-memory operation.
func NewLimiter(config Config, backend storage.Backend, log *slog.Logger) *Limiter {
	return &Limiter{
		config:  config,
		backend: backend,
		log:     log,
		buckets: make(map[string]*clientBucket),
	}
}

// Allow reports whether the client identified by key may proceed,
// consuming one token if so.
func (l *Limiter) Allow(ctx context.Context, key string) bool {
	entry := l.bucketFor(ctx, key)
	allowed := entry.bucket.Take(1)

	if l.backend != nil {
		tokens, lastRefill := entry.bucket.Snapshot()
		err := l.backend.Save(ctx, &storage.BucketState{
			Key:        key,
			Tokens:     tokens,
			LastRefill: lastRefill,
		})
		if err != nil {
			l.log.Warn("failed to persist rate limit state", "key", key, "error", err)
		}
	}

	return allowed
}

// RetryAfter returns how long the client must wait for its next token.
// Returns 0 when a token is immediately available.
func (l *Limiter) RetryAfter(ctx context.Context, key string) time.Duration {
	return l.bucketFor(ctx, key).bucket.TimeUntilAvailable(1)
}

// Prune drops buckets idle since the cutoff and removes their persisted
// state. Returns the number of in-memory buckets dropped.
func (l *Limiter) Prune(ctx context.Context, olderThan time.Time) int {
	l.mu.Lock()
	pruned := 0
	for key, entry := range l.buckets {
		if entry.lastSeen.Before(olderThan) {
			delete(l.buckets, key)
			pruned++
		}
	}
	l.mu.Unlock()

	if l.backend != nil {
		deleted, err := l.backend.Cleanup(ctx, olderThan)
		if err != nil {
			l.log.Warn("failed to prune persisted rate limit state", "error", err)
		} else if deleted > 0 {
			l.log.Debug("pruned persisted rate limit state", "deleted", deleted)
		}
	}

	return pruned
}

// Close releases the storage backend, if any.
func (l *Limiter) Close() error {
	if l.backend == nil {
		return nil
	}
	return l.backend.Close()
}

// bucketFor returns the bucket for a client key, creating it (and
// restoring persisted state) on first sight.
func (l *Limiter) bucketFor(ctx context.Context, key string) *clientBucket {
	l.mu.Lock()
	defer l.mu.Unlock()

	if entry, ok := l.buckets[key]; ok {
		entry.lastSeen = time.Now()
		return entry
	}

	entry := &clientBucket{
		bucket:   NewTokenBucket(l.config.Capacity, l.config.RefillPerSecond),
		lastSeen: time.Now(),
	}

	if l.backend != nil {
		state, err := l.backend.Load(ctx, key)
		if err != nil {
			l.log.Warn("failed to load rate limit state", "key", key, "error", err)
		} else if state != nil {
			entry.bucket.Restore(state.Tokens, state.LastRefill)
		}
	}

	l.buckets[key] = entry
	return entry
}
