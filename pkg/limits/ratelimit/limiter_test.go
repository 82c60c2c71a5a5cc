package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"openquery-hq/vanguard/pkg/limits/storage"
)

func TestTokenBucket(t *testing.T) {
	t.Run("starts full and allows bursts up to capacity", func(t *testing.T) {
		bucket := NewTokenBucket(5, 1)

		for i := 0; i < 5; i++ {
			if !bucket.Take(1) {
				t.Fatalf("take %d should succeed", i+1)
			}
		}
		if bucket.Take(1) {
			t.Error("take beyond capacity should fail")
		}
	})

	t.Run("refills over time", func(t *testing.T) {
		bucket := NewTokenBucket(2, 100) // 100 tokens/sec, fast enough to test

		bucket.Take(2)
		if bucket.Take(1) {
			t.Fatal("bucket should be empty")
		}

		time.Sleep(50 * time.Millisecond)
		if !bucket.Take(1) {
			t.Error("bucket should have refilled")
		}
	})

	t.Run("never exceeds capacity", func(t *testing.T) {
		bucket := NewTokenBucket(3, 1000)
		time.Sleep(20 * time.Millisecond)
		if got := bucket.Remaining(); got > 3 {
			t.Errorf("remaining = %d, exceeds capacity 3", got)
		}
	})

	t.Run("reports time until available", func(t *testing.T) {
		bucket := NewTokenBucket(1, 10)
		bucket.Take(1)

		wait := bucket.TimeUntilAvailable(1)
		if wait <= 0 || wait > 100*time.Millisecond {
			t.Errorf("wait = %v, expected around 100ms", wait)
		}
	})

	t.Run("snapshot and restore round-trip", func(t *testing.T) {
		bucket := NewTokenBucket(10, 1)
		bucket.Take(4)

		tokens, lastRefill := bucket.Snapshot()
		if tokens != 6 {
			t.Fatalf("snapshot tokens = %d, want 6", tokens)
		}

		restored := NewTokenBucket(10, 1)
		restored.Restore(tokens, lastRefill)
		if got := restored.Remaining(); got != 6 {
			t.Errorf("restored remaining = %d, want 6", got)
		}
	})

	t.Run("restore clamps out-of-range counts", func(t *testing.T) {
		bucket := NewTokenBucket(5, 1)

		bucket.Restore(100, time.Now())
		if got := bucket.Remaining(); got != 5 {
			t.Errorf("remaining = %d, want clamp to 5", got)
		}

		bucket.Restore(-3, time.Now())
		if got := bucket.Remaining(); got != 0 {
			t.Errorf("remaining = %d, want clamp to 0", got)
		}
	})
}

func TestLimiter(t *testing.T) {
	ctx := context.Background()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("isolates clients from each other", func(t *testing.T) {
		limiter := NewLimiter(Config{Capacity: 1, RefillPerSecond: 0.1}, nil, log)

		if !limiter.Allow(ctx, "client-a") {
			t.Fatal("first request for client-a should pass")
		}
		if limiter.Allow(ctx, "client-a") {
			t.Error("second request for client-a should be limited")
		}
		if !limiter.Allow(ctx, "client-b") {
			t.Error("client-b has its own bucket and should pass")
		}
	})

	t.Run("reports a retry hint when exhausted", func(t *testing.T) {
		limiter := NewLimiter(Config{Capacity: 1, RefillPerSecond: 1}, nil, log)

		limiter.Allow(ctx, "client")
		if wait := limiter.RetryAfter(ctx, "client"); wait <= 0 {
			t.Errorf("expected positive retry hint, got %v", wait)
		}
	})

	t.Run("persists and restores bucket state", func(t *testing.T) {
		backend := storage.NewMemoryBackend()
		defer backend.Close()

		limiter := NewLimiter(Config{Capacity: 2, RefillPerSecond: 0.1}, backend, log)
		limiter.Allow(ctx, "client")
		limiter.Allow(ctx, "client")

		// A fresh limiter over the same backend sees the drained bucket.
		restored := NewLimiter(Config{Capacity: 2, RefillPerSecond: 0.1}, backend, log)
		if restored.Allow(ctx, "client") {
			t.Error("restored bucket should still be empty")
		}
	})

	t.Run("prune drops idle buckets", func(t *testing.T) {
		limiter := NewLimiter(Config{Capacity: 1, RefillPerSecond: 1000}, nil, log)

		limiter.Allow(ctx, "idle-client")
		time.Sleep(5 * time.Millisecond)

		if pruned := limiter.Prune(ctx, time.Now()); pruned != 1 {
			t.Errorf("pruned = %d, want 1", pruned)
		}
		// A pruned client starts over with a fresh bucket.
		if !limiter.Allow(ctx, "idle-client") {
			t.Error("pruned client should get a fresh bucket")
		}
	})
}
