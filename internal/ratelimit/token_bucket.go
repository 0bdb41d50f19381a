package ratelimit

import (
	"context"
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// TokenBucket maintains one x/time rate.Limiter per key, refilling limit
// tokens over each window with a burst of the full limit.
type TokenBucket struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	buckets map[string]*rate.Limiter
	now     func() time.Time
}

func NewTokenBucket(limit int, window time.Duration) *TokenBucket {
	return &TokenBucket{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*rate.Limiter),
		now:     time.Now,
	}
}

func (t *TokenBucket) bucket(key string) *rate.Limiter {
	t.mu.Lock()
	defer t.mu.Unlock()

	lim, ok := t.buckets[key]
	if !ok {
		refill := rate.Limit(float64(t.limit) / t.window.Seconds())
		lim = rate.NewLimiter(refill, t.limit)
		t.buckets[key] = lim
	}
	return lim
}

func (t *TokenBucket) Allow(_ context.Context, key string) (bool, error) {
	return t.bucket(key).AllowN(t.now(), 1), nil
}

func (t *TokenBucket) Remaining(_ context.Context, key string) (int, error) {
	tokens := t.bucket(key).TokensAt(t.now())
	if tokens < 0 {
		tokens = 0
	}
	return int(tokens), nil
}

func (t *TokenBucket) Limit() int {
	return t.limit
}

func (t *TokenBucket) Window() time.Duration {
	return t.window
}

// Reset returns when the bucket is full again at the current drain level.
func (t *TokenBucket) Reset(_ context.Context, key string) (time.Time, error) {
	now := t.now()
	lim := t.bucket(key)

	missing := float64(t.limit) - lim.TokensAt(now)
	if missing <= 0 {
		return now, nil
	}

	secondsToFull := missing / float64(lim.Limit())
	return now.Add(time.Duration(math.Ceil(secondsToFull * float64(time.Second)))), nil
}

func (t *TokenBucket) Keys() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.buckets)
}
