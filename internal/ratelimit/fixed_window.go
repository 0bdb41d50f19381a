package ratelimit

import (
	"context"
	"sync"
	"time"
)

// FixedWindowLimiter counts requests per key in fixed windows, entirely in
// process memory. State resets on restart.
type FixedWindowLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*windowBucket
	now     func() time.Time
}

type windowBucket struct {
	start time.Time
	count int
}

func NewFixedWindow(limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*windowBucket),
		now:     time.Now,
	}
}

func (f *FixedWindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, ok := f.buckets[key]
	if !ok || now.Sub(bucket.start) >= f.window {
		f.buckets[key] = &windowBucket{start: now, count: 1}
		return true, nil
	}

	bucket.count++
	return bucket.count <= f.limit, nil
}

func (f *FixedWindowLimiter) Remaining(_ context.Context, key string) (int, error) {
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, ok := f.buckets[key]
	if !ok || now.Sub(bucket.start) >= f.window {
		return f.limit, nil
	}

	remaining := f.limit - bucket.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (f *FixedWindowLimiter) Limit() int {
	return f.limit
}

func (f *FixedWindowLimiter) Window() time.Duration {
	return f.window
}

// Reset returns the time at which the key's current window expires.
func (f *FixedWindowLimiter) Reset(_ context.Context, key string) (time.Time, error) {
	now := f.now()

	f.mu.Lock()
	defer f.mu.Unlock()

	bucket, ok := f.buckets[key]
	if !ok || now.Sub(bucket.start) >= f.window {
		return now.Add(f.window), nil
	}
	return bucket.start.Add(f.window), nil
}

func (f *FixedWindowLimiter) Keys() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buckets)
}
