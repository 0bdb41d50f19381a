package ratelimit

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/deployprobe/deployprobe/internal/storage"
)

// RedisFixedWindowLimiter shares fixed-window counters through Redis so
// multiple instances behind one load balancer enforce a single quota.
type RedisFixedWindowLimiter struct {
	redis  *storage.RedisClient
	limit  int
	window time.Duration
}

func NewRedisFixedWindow(redis *storage.RedisClient, limit int, window time.Duration) *RedisFixedWindowLimiter {
	return &RedisFixedWindowLimiter{
		redis:  redis,
		limit:  limit,
		window: window,
	}
}

func (f *RedisFixedWindowLimiter) windowKey(key string) string {
	currentWindow := time.Now().Unix() / int64(f.window.Seconds())
	return fmt.Sprintf("ratelimit:fixed:%s:%d", key, currentWindow)
}

func (f *RedisFixedWindowLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := f.windowKey(key)

	count, err := f.redis.Incr(ctx, redisKey)
	if err != nil {
		return false, err
	}

	if count == 1 {
		if err := f.redis.Expire(ctx, redisKey, f.window); err != nil {
			return false, err
		}
	}

	return count <= int64(f.limit), nil
}

func (f *RedisFixedWindowLimiter) Remaining(ctx context.Context, key string) (int, error) {
	val, err := f.redis.Get(ctx, f.windowKey(key))
	if err == redis.Nil {
		return f.limit, nil
	}
	if err != nil {
		return 0, err
	}

	count, _ := strconv.Atoi(val)
	remaining := f.limit - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (f *RedisFixedWindowLimiter) Limit() int {
	return f.limit
}

func (f *RedisFixedWindowLimiter) Window() time.Duration {
	return f.window
}

// Reset returns the start of the next window.
func (f *RedisFixedWindowLimiter) Reset(_ context.Context, _ string) (time.Time, error) {
	currentWindow := time.Now().Unix() / int64(f.window.Seconds())
	nextWindow := (currentWindow + 1) * int64(f.window.Seconds())
	return time.Unix(nextWindow, 0), nil
}
