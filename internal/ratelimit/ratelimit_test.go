package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedWindowAllowsUpToLimit(t *testing.T) {
	ctx := context.Background()
	lim := NewFixedWindow(3, time.Minute)

	for i := 0; i < 3; i++ {
		allowed, err := lim.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, allowed, "request %d should pass", i+1)
	}

	allowed, err := lim.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, allowed, "request over the limit should be rejected")
}

func TestFixedWindowIsolatesKeys(t *testing.T) {
	ctx := context.Background()
	lim := NewFixedWindow(1, time.Minute)

	allowed, _ := lim.Allow(ctx, "client-a")
	assert.True(t, allowed)
	allowed, _ = lim.Allow(ctx, "client-a")
	assert.False(t, allowed)

	allowed, _ = lim.Allow(ctx, "client-b")
	assert.True(t, allowed, "other clients keep their own quota")
	assert.Equal(t, 2, lim.Keys())
}

func TestFixedWindowResetsAfterWindow(t *testing.T) {
	ctx := context.Background()
	lim := NewFixedWindow(1, time.Minute)

	now := time.Unix(1000, 0)
	lim.now = func() time.Time { return now }

	allowed, _ := lim.Allow(ctx, "client-a")
	assert.True(t, allowed)
	allowed, _ = lim.Allow(ctx, "client-a")
	assert.False(t, allowed)

	now = now.Add(61 * time.Second)
	allowed, _ = lim.Allow(ctx, "client-a")
	assert.True(t, allowed, "new window admits again")
}

func TestFixedWindowRemainingAndReset(t *testing.T) {
	ctx := context.Background()
	lim := NewFixedWindow(5, time.Minute)

	now := time.Unix(2000, 0)
	lim.now = func() time.Time { return now }

	remaining, err := lim.Remaining(ctx, "client-a")
	require.NoError(t, err)
	assert.Equal(t, 5, remaining, "untouched key has the full quota")

	_, _ = lim.Allow(ctx, "client-a")
	_, _ = lim.Allow(ctx, "client-a")

	remaining, _ = lim.Remaining(ctx, "client-a")
	assert.Equal(t, 3, remaining)

	reset, err := lim.Reset(ctx, "client-a")
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Minute), reset)
}

func TestSlidingWindowAdmitsAsOldRequestsExpire(t *testing.T) {
	ctx := context.Background()
	lim := NewSlidingWindow(2, time.Minute)

	now := time.Unix(3000, 0)
	lim.now = func() time.Time { return now }

	allowed, _ := lim.Allow(ctx, "client-a")
	assert.True(t, allowed)

	now = now.Add(30 * time.Second)
	allowed, _ = lim.Allow(ctx, "client-a")
	assert.True(t, allowed)

	allowed, _ = lim.Allow(ctx, "client-a")
	assert.False(t, allowed)

	// First request slides out; one slot frees up.
	now = now.Add(31 * time.Second)
	allowed, _ = lim.Allow(ctx, "client-a")
	assert.True(t, allowed)
}

func TestSlidingWindowReset(t *testing.T) {
	ctx := context.Background()
	lim := NewSlidingWindow(2, time.Minute)

	start := time.Unix(4000, 0)
	now := start
	lim.now = func() time.Time { return now }

	_, _ = lim.Allow(ctx, "client-a")

	reset, err := lim.Reset(ctx, "client-a")
	require.NoError(t, err)
	assert.Equal(t, start.Add(time.Minute), reset)
}

func TestSlidingWindowPrunesIdleKeys(t *testing.T) {
	ctx := context.Background()
	lim := NewSlidingWindow(2, time.Minute)

	now := time.Unix(5000, 0)
	lim.now = func() time.Time { return now }

	_, _ = lim.Allow(ctx, "client-a")
	assert.Equal(t, 1, lim.Keys())

	now = now.Add(2 * time.Minute)
	_, _ = lim.Remaining(ctx, "client-a")
	assert.Equal(t, 0, lim.Keys(), "fully expired keys are dropped")
}

func TestTokenBucketBurstThenDrain(t *testing.T) {
	ctx := context.Background()
	lim := NewTokenBucket(3, time.Minute)

	now := time.Unix(6000, 0)
	lim.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		allowed, err := lim.Allow(ctx, "client-a")
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, _ := lim.Allow(ctx, "client-a")
	assert.False(t, allowed, "bucket drained")

	// One window refills the whole bucket.
	now = now.Add(time.Minute)
	allowed, _ = lim.Allow(ctx, "client-a")
	assert.True(t, allowed)
}

func TestTokenBucketRemaining(t *testing.T) {
	ctx := context.Background()
	lim := NewTokenBucket(10, time.Minute)

	now := time.Unix(7000, 0)
	lim.now = func() time.Time { return now }

	remaining, err := lim.Remaining(ctx, "client-a")
	require.NoError(t, err)
	assert.Equal(t, 10, remaining)

	_, _ = lim.Allow(ctx, "client-a")
	remaining, _ = lim.Remaining(ctx, "client-a")
	assert.Equal(t, 9, remaining)
}

func TestFactorySelectsStrategy(t *testing.T) {
	lim := NewLimiter("fixed_window", "memory", 10, time.Minute, nil)
	assert.IsType(t, &FixedWindowLimiter{}, lim)

	lim = NewLimiter("sliding_window", "memory", 10, time.Minute, nil)
	assert.IsType(t, &SlidingWindowLimiter{}, lim)

	lim = NewLimiter("token_bucket", "memory", 10, time.Minute, nil)
	assert.IsType(t, &TokenBucket{}, lim)

	lim = NewLimiter("unknown", "memory", 10, time.Minute, nil)
	assert.IsType(t, &FixedWindowLimiter{}, lim, "unknown strategy falls back to fixed window")

	lim = NewLimiter("fixed_window", "redis", 10, time.Minute, nil)
	assert.IsType(t, &FixedWindowLimiter{}, lim, "redis store without a client stays in memory")
}

func TestLimiterMetadata(t *testing.T) {
	lim := NewLimiter("fixed_window", "memory", 42, 30*time.Second, nil)
	assert.Equal(t, 42, lim.Limit())
	assert.Equal(t, 30*time.Second, lim.Window())
}
