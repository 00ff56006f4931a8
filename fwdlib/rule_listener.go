package fwdlib

import (
	"errors"
	"fmt"
	"net"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/portseal/portseal/essentials"
	"golang.org/x/time/rate"
)

// RuleListener owns a bound local socket of a single rule.
type RuleListener struct {
	forwarder   *Forwarder
	listener    net.Listener
	rule        Rule
	logger      Logger
	rateLimiter *RateLimiter
	closeOnce   sync.Once
}

// Rule returns a rule this listener serves.
func (r *RuleListener) Rule() Rule {
	return r.rule
}

// Addr returns an address of the bound socket.
func (r *RuleListener) Addr() net.Addr {
	return r.listener.Addr()
}

// Close closes the bound socket. It is safe to call Close several times.
func (r *RuleListener) Close() error {
	var err error

	r.closeOnce.Do(func() {
		if r.rateLimiter != nil {
			r.rateLimiter.Stop()
		}

		err = r.listener.Close()
	})

	return err //nolint: wrapcheck
}

// Serve accepts connections until stop is closed or accept fails.
//
// Every accepted connection is handed to a worker pool of the forwarder.
// Serve does not wait for these connections and does not interrupt them on
// exit. Stop is not an error: Serve returns nil then. An accept failure is
// returned as ErrAccept and the listener is not restarted.
func (r *RuleListener) Serve(stop <-chan struct{}) error {
	defer r.Close() //nolint: errcheck

	stopped := make(chan struct{})
	done := make(chan struct{})

	defer close(done)

	// Accept нельзя прервать иначе, чем закрыв сокет.
	go func() {
		select {
		case <-stop:
			close(stopped)
			r.Close() //nolint: errcheck
		case <-done:
		}
	}()

	for {
		conn, err := r.listener.Accept()
		if err != nil {
			select {
			case <-stopped:
				r.logger.Info("Listener has been stopped")

				return nil
			default:
				return fmt.Errorf("%w on %s: %w", ErrAccept, r.rule.LocalAddr, err)
			}
		}

		r.handle(conn)
	}
}

func (r *RuleListener) handle(conn net.Conn) {
	clientConn, ok := conn.(essentials.Conn)
	if !ok {
		conn.Close()
		r.logger.Warning("accepted connection does not support half-close")

		return
	}

	ipAddr := clientIP(conn)
	logger := r.logger.BindStr("client", r.forwarder.clientIPForLogs(ipAddr))

	if r.rule.Allowlist != nil && !r.rule.Allowlist.Contains(ipAddr) {
		conn.Close()
		logger.Info("ip was rejected by allowed networks")
		r.forwarder.eventStream.Send(r.forwarder.ctx, NewEventIPRejected(r.rule.Name, ipAddr))

		return
	}

	if r.rateLimiter != nil && !r.rateLimiter.Allow(ipAddr) {
		conn.Close()
		logger.Warning("Rate limited")
		r.forwarder.eventStream.Send(r.forwarder.ctx, NewEventRateLimited(r.rule.Name, ipAddr))

		return
	}

	r.forwarder.streamWaitGroup.Add(1)

	err := r.forwarder.workerPool.Invoke(acceptedConn{
		listener: r,
		conn:     clientConn,
	})
	if err == nil {
		return
	}

	r.forwarder.streamWaitGroup.Done()
	conn.Close()

	switch {
	case errors.Is(err, ants.ErrPoolOverload):
		logger.Info("connection was concurrency limited")
		r.forwarder.eventStream.Send(r.forwarder.ctx, NewEventConcurrencyLimited(r.rule.Name))
	case errors.Is(err, ants.ErrPoolClosed):
		logger.Info("connection was rejected because forwarder is shutting down")
	default:
		logger.WarningError("cannot serve connection", err)
	}
}

func clientIP(conn net.Conn) net.IP {
	if addr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		return addr.IP
	}

	return net.IPv4zero
}

func newRuleListener(forwarder *Forwarder, rule Rule, listener net.Listener) *RuleListener {
	rl := &RuleListener{
		forwarder: forwarder,
		listener:  listener,
		rule:      rule,
		logger:    forwarder.logger.BindStr("rule", rule.Name),
	}

	if rule.RateLimitPerSecond > 0 {
		rl.rateLimiter = NewRateLimiter(
			rate.Limit(rule.RateLimitPerSecond),
			rule.getRateLimitBurst(),
			rateLimiterCleanupInterval)
	}

	return rl
}
