package ratelimiter

import (
	"sync"
	"time"
)

type counter struct {
	start time.Time
	count int
}

// FixedWindowRateLimiter allows limit requests per key in each window that
// starts with the key's first request.
type FixedWindowRateLimiter struct {
	mu      sync.Mutex
	clients map[string]*counter
	limit   int
	window  time.Duration
	now     func() time.Time
	stop    chan struct{}
	once    sync.Once
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowRateLimiter {
	rl := newFixedWindow(limit, window, time.Now)
	go rl.cleanup()
	return rl
}

func newFixedWindow(limit int, window time.Duration, now func() time.Time) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*counter),
		limit:   limit,
		window:  window,
		now:     now,
		stop:    make(chan struct{}),
	}
}

// Allow counts a request for key and reports whether it may proceed; when it
// may not, the duration says how long until the window resets.
func (rl *FixedWindowRateLimiter) Allow(key string) (bool, time.Duration) {
	now := rl.now()

	rl.mu.Lock()
	defer rl.mu.Unlock()

	c, ok := rl.clients[key]
	if !ok || now.Sub(c.start) >= rl.window {
		rl.clients[key] = &counter{start: now, count: 1}
		return true, 0
	}

	if c.count < rl.limit {
		c.count++
		return true, 0
	}
	return false, c.start.Add(rl.window).Sub(now)
}

// Close stops the cleanup goroutine.
func (rl *FixedWindowRateLimiter) Close() {
	rl.once.Do(func() { close(rl.stop) })
}

func (rl *FixedWindowRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.evictExpired()
		}
	}
}

func (rl *FixedWindowRateLimiter) evictExpired() {
	now := rl.now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, c := range rl.clients {
		if now.Sub(c.start) >= rl.window {
			delete(rl.clients, key)
		}
	}
}
