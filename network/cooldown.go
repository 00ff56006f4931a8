package network

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/portseal/portseal/essentials"
)

// cooldownDialer: упрощённый circuit breaker.
//
// После threshold последовательных неудач адрес уходит на cooldown на
// timeout: попытки отклоняются сразу с ErrCooldown. Состояние хранится
// отдельно для каждого адреса, чтобы упавший remote одного правила не
// блокировал остальные.
type cooldownDialer struct {
	Dialer

	mutex     sync.Mutex
	states    map[string]*cooldownState
	threshold uint32
	timeout   time.Duration
}

type cooldownState struct {
	failures      uint32
	cooldownUntil time.Time
}

func (c *cooldownDialer) DialContext(ctx context.Context, network, address string) (essentials.Conn, error) {
	if c.onCooldown(address) {
		return nil, fmt.Errorf("%w: %s", ErrCooldown, address)
	}

	conn, err := c.Dialer.DialContext(ctx, network, address)

	select {
	case <-ctx.Done():
		// отмена вызывающей стороной не считается неудачей адреса
		if conn != nil {
			conn.Close()
		}

		return nil, ctx.Err() //nolint: wrapcheck
	default:
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	if err == nil {
		delete(c.states, address)

		return conn, nil
	}

	state, ok := c.states[address]
	if !ok {
		state = &cooldownState{}
		c.states[address] = state
	}

	state.failures++

	if state.failures >= c.threshold {
		state.failures = 0
		state.cooldownUntil = time.Now().Add(c.timeout)
	}

	return nil, err //nolint: wrapcheck
}

func (c *cooldownDialer) onCooldown(address string) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	state, ok := c.states[address]

	return ok && time.Now().Before(state.cooldownUntil)
}

// NewCooldownDialer wraps a dialer: after threshold consecutive failures
// to dial an address, this address is rejected immediately for timeout.
func NewCooldownDialer(baseDialer Dialer, threshold uint, timeout time.Duration) Dialer {
	if threshold == 0 {
		threshold = DefaultCooldownThreshold
	}

	if timeout == 0 {
		timeout = DefaultCooldownTimeout
	}

	return &cooldownDialer{
		Dialer:    baseDialer,
		states:    map[string]*cooldownState{},
		threshold: uint32(threshold),
		timeout:   timeout,
	}
}
