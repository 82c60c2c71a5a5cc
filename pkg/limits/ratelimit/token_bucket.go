package ratelimit

import (
	"sync"
	"time"
)

// TokenBucket implements the token bucket rate limiting algorithm.
//
// The token bucket allows bursts up to the capacity while maintaining
// an average rate over time. Tokens are added at a constant refill rate.
// Each request consumes one or more tokens. If insufficient tokens are
// available, the request is rejected.
//
// TokenBucket is thread-safe using sync.Mutex for all operations.
type TokenBucket struct {
	capacity   int64     // Maximum tokens in bucket
	tokens     int64     // Current available tokens
	refillRate float64   // Tokens added per second
	lastRefill time.Time // Last time tokens were refilled
	mu         sync.Mutex
}

// NewTokenBucket creates a new token bucket rate limiter.
//
// Parameters:
//   - capacity: Maximum number of tokens in the bucket (burst size)
//   - refillRate: Number of tokens added per second (average rate)
//
// Example:
//
//	// 50 requests/sec average, burst up to 100
//	bucket := NewTokenBucket(100, 50)
func NewTokenBucket(capacity int64, refillRate float64) *TokenBucket {
	return &TokenBucket{
		capacity:   capacity,
		tokens:     capacity, // Start with full bucket
		refillRate: refillRate,
		lastRefill: time.Now(),
	}
}

// Take attempts to consume n tokens from the bucket.
// Returns true if tokens were available and consumed, false otherwise.
//
// This method refills tokens based on elapsed time before checking availability.
func (tb *TokenBucket) Take(n int64) bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()

	if tb.tokens >= n {
		tb.tokens -= n
		return true
	}

	return false
}

// Remaining returns the number of tokens currently available,
// refilling first.
func (tb *TokenBucket) Remaining() int64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	return tb.tokens
}

// Capacity returns the maximum bucket capacity.
func (tb *TokenBucket) Capacity() int64 {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	return tb.capacity
}

// Reset resets the bucket to full capacity.
func (tb *TokenBucket) Reset() {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.tokens = tb.capacity
	tb.lastRefill = time.Now()
}

// TimeUntilAvailable returns how long until n tokens will be available.
// Returns 0 if tokens are immediately available.
func (tb *TokenBucket) TimeUntilAvailable(n int64) time.Duration {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()

	if tb.tokens >= n {
		return 0
	}

	tokensNeeded := n - tb.tokens
	secondsNeeded := float64(tokensNeeded) / tb.refillRate

	return time.Duration(secondsNeeded * float64(time.Second))
}

// Snapshot returns the current token count and refill timestamp for
// persistence. The bucket is refilled first so the snapshot is current.
func (tb *TokenBucket) Snapshot() (tokens int64, lastRefill time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	tb.refillLocked()
	return tb.tokens, tb.lastRefill
}

// Restore replaces the bucket's state with a previously persisted snapshot.
// Token counts are clamped to [0, capacity].
func (tb *TokenBucket) Restore(tokens int64, lastRefill time.Time) {
	tb.mu.Lock()
	defer tb.mu.Unlock()

	if tokens < 0 {
		tokens = 0
	}
	if tokens > tb.capacity {
		tokens = tb.capacity
	}
	tb.tokens = tokens
	tb.lastRefill = lastRefill
}

// refillLocked adds tokens based on elapsed time since last refill.
// Caller must hold lock.
func (tb *TokenBucket) refillLocked() {
	now := time.Now()
	elapsed := now.Sub(tb.lastRefill)

	tokensToAdd := int64(elapsed.Seconds() * tb.refillRate)

	if tokensToAdd > 0 {
		tb.tokens += tokensToAdd
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastRefill = now
	}
}
