package ratelimit

import (
	"context"
	"sync"
	"time"
)

// SlidingWindowLimiter keeps per-key request timestamps and admits a request
// only while fewer than limit requests landed inside the trailing window.
type SlidingWindowLimiter struct {
	mu      sync.Mutex
	limit   int
	window  time.Duration
	entries map[string][]time.Time
	now     func() time.Time
}

func NewSlidingWindow(limit int, window time.Duration) *SlidingWindowLimiter {
	return &SlidingWindowLimiter{
		limit:   limit,
		window:  window,
		entries: make(map[string][]time.Time),
		now:     time.Now,
	}
}

func (s *SlidingWindowLimiter) Allow(_ context.Context, key string) (bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	recent := s.prune(key, now)

	if len(recent) >= s.limit {
		s.entries[key] = recent
		return false, nil
	}

	s.entries[key] = append(recent, now)
	return true, nil
}

func (s *SlidingWindowLimiter) Remaining(_ context.Context, key string) (int, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	recent := s.prune(key, now)
	s.entries[key] = recent

	remaining := s.limit - len(recent)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

func (s *SlidingWindowLimiter) Limit() int {
	return s.limit
}

func (s *SlidingWindowLimiter) Window() time.Duration {
	return s.window
}

// Reset returns when the oldest tracked request slides out of the window.
func (s *SlidingWindowLimiter) Reset(_ context.Context, key string) (time.Time, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	recent := s.prune(key, now)
	s.entries[key] = recent

	if len(recent) == 0 {
		return now, nil
	}
	return recent[0].Add(s.window), nil
}

func (s *SlidingWindowLimiter) Keys() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// prune drops timestamps older than the window. Caller holds the lock.
func (s *SlidingWindowLimiter) prune(key string, now time.Time) []time.Time {
	cutoff := now.Add(-s.window)
	stamps := s.entries[key]

	i := 0
	for ; i < len(stamps); i++ {
		if stamps[i].After(cutoff) {
			break
		}
	}
	if i == len(stamps) {
		delete(s.entries, key)
		return nil
	}
	return stamps[i:]
}
