package fwdlib

import (
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterPerIP(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(0.001, 2, time.Hour)
	defer limiter.Stop()

	first := net.ParseIP("10.0.0.1")
	second := net.ParseIP("10.0.0.2")

	assert.True(t, limiter.Allow(first))
	assert.True(t, limiter.Allow(first))
	assert.False(t, limiter.Allow(first))

	assert.True(t, limiter.Allow(second))
	assert.Equal(t, 2, limiter.Size())
}

func TestRateLimiterSameIPDifferentForms(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(0.001, 1, time.Hour)
	defer limiter.Stop()

	assert.True(t, limiter.Allow(net.IPv4(10, 0, 0, 1)))
	assert.False(t, limiter.Allow(net.IP{10, 0, 0, 1}))
	assert.Equal(t, 1, limiter.Size())
}

func TestRateLimiterEvict(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(1, 1, time.Minute)
	defer limiter.Stop()

	limiter.Allow(net.ParseIP("10.0.0.1"))
	limiter.evict(time.Now())
	assert.Equal(t, 1, limiter.Size())

	limiter.evict(time.Now().Add(3 * time.Minute))
	assert.Equal(t, 0, limiter.Size())
}

func TestRateLimiterStopTwice(t *testing.T) {
	t.Parallel()

	limiter := NewRateLimiter(1, 1, time.Minute)

	assert.NotPanics(t, func() {
		limiter.Stop()
		limiter.Stop()
	})
}
