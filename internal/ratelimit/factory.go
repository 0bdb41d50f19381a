package ratelimit

import (
	"time"

	"github.com/deployprobe/deployprobe/internal/storage"
)

// NewLimiter selects a strategy and backing store. A nil redis client always
// yields an in-memory limiter; the token bucket has no Redis form and stays
// in memory regardless of store.
func NewLimiter(strategy, store string, limit int, window time.Duration, redis *storage.RedisClient) Limiter {
	useRedis := store == "redis" && redis != nil

	switch strategy {
	case "sliding_window":
		if useRedis {
			return NewRedisSlidingWindow(redis, limit, window)
		}
		return NewSlidingWindow(limit, window)
	case "token_bucket":
		return NewTokenBucket(limit, window)
	case "fixed_window":
		fallthrough
	default:
		if useRedis {
			return NewRedisFixedWindow(redis, limit, window)
		}
		return NewFixedWindow(limit, window)
	}
}
