package fwdlib

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const rateLimiterCleanupInterval = time.Minute

// RateLimiter limits a rate of accepted connections per client IP.
type RateLimiter struct {
	mutex    sync.RWMutex
	limiters map[string]*rateLimiterEntry
	limit    rate.Limit
	burst    int
	cleanup  time.Duration
	stopOnce sync.Once
	stopCh   chan struct{}
}

type rateLimiterEntry struct {
	limiter  *rate.Limiter
	lastUsed atomic64Time
}

// atomic64Time хранит время последнего обращения без write lock.
type atomic64Time struct {
	value atomic.Int64
}

func (a *atomic64Time) Store(t time.Time) {
	a.value.Store(t.UnixNano())
}

func (a *atomic64Time) Load() time.Time {
	return time.Unix(0, a.value.Load())
}

// Allow checks if a new connection from the given IP should be accepted.
func (r *RateLimiter) Allow(ip net.IP) bool {
	// string(ip) это сырые 4/16 байт, дешевле ip.String().
	key := string(ip.To16())
	now := time.Now()

	r.mutex.RLock()
	entry, exists := r.limiters[key]
	r.mutex.RUnlock()

	if !exists {
		r.mutex.Lock()

		// другая горутина могла добавить запись между локами
		if entry, exists = r.limiters[key]; !exists {
			entry = &rateLimiterEntry{
				limiter: rate.NewLimiter(r.limit, r.burst),
			}
			r.limiters[key] = entry
		}

		r.mutex.Unlock()
	}

	entry.lastUsed.Store(now)

	return entry.limiter.AllowN(now, 1)
}

// Size returns a number of tracked IPs.
func (r *RateLimiter) Size() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.limiters)
}

// Stop stops a cleanup goroutine. It is safe to call it several times.
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() {
		close(r.stopCh)
	})
}

func (r *RateLimiter) cleanupLoop() {
	ticker := time.NewTicker(r.cleanup)
	defer ticker.Stop()

	for {
		select {
		case <-r.stopCh:
			return
		case now := <-ticker.C:
			r.evict(now)
		}
	}
}

func (r *RateLimiter) evict(now time.Time) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	for key, entry := range r.limiters {
		if now.Sub(entry.lastUsed.Load()) > 2*r.cleanup {
			delete(r.limiters, key)
		}
	}
}

// NewRateLimiter creates a new rate limiter. limit is a number of allowed
// connections per second, burst is a max number of connections in a
// burst, cleanup defines how often forgotten IPs are evicted.
func NewRateLimiter(limit rate.Limit, burst int, cleanup time.Duration) *RateLimiter {
	rl := &RateLimiter{
		limiters: make(map[string]*rateLimiterEntry),
		limit:    limit,
		burst:    burst,
		cleanup:  cleanup,
		stopCh:   make(chan struct{}),
	}

	go rl.cleanupLoop()

	return rl
}
