// Package fwdlib implements a TCP port forwarder where every rule can mark
// its local and remote sides as encrypted.
//
// An encrypted side talks frames: 4 bytes of big-endian length followed by
// AES-256-GCM sealed payload of exactly that length. A plain side talks raw
// application bytes. Forwarder translates between these representations
// for each accepted connection.
package fwdlib

import (
	"context"
	"net"
	"time"

	"github.com/portseal/portseal/essentials"
)

const (
	// DefaultConcurrency is a default max count of simultaneously relayed
	// connections.
	DefaultConcurrency = 8192

	// DefaultDialTimeout is a default timeout to connect to a remote
	// address.
	DefaultDialTimeout = 10 * time.Second

	// DefaultBufferSize is a default size of a chunk read from a socket.
	DefaultBufferSize = 4096

	// DefaultMaxFrameSize limits a declared length of incoming frames.
	DefaultMaxFrameSize = 16 * 1024 * 1024

	// DefaultRateLimitBurst is a burst used when a rule has rate limit but
	// does not define a burst.
	DefaultRateLimitBurst = 20
)

// Network defines a way to dial remote addresses.
type Network interface {
	// DialContext establishes a connection to address. Network is always
	// tcp, tcp4 or tcp6.
	DialContext(ctx context.Context, network, address string) (essentials.Conn, error)
}

// IPFilter decides if a client IP is allowed to use a rule.
type IPFilter interface {
	Contains(ip net.IP) bool
}

// Event is a data structure which is populated during forwarding
// lifecycle.
type Event interface {
	// StreamID returns an identifier of a connection this event belongs
	// to. Events which do not belong to a connection return an empty
	// string.
	StreamID() string

	// Timestamp returns a time when this event was generated.
	Timestamp() time.Time
}

// EventStream is an abstraction which accepts a set of events produced
// by a forwarder.
//
// Send has to be non-blocking or quickly return: it is called from the
// hot path of accept loops and relays.
type EventStream interface {
	Send(ctx context.Context, evt Event)
}

// Logger defines a set of methods a forwarder expects from its logger.
type Logger interface {
	Named(name string) Logger

	BindInt(name string, value int) Logger
	BindStr(name, value string) Logger

	Printf(format string, args ...interface{})

	Info(msg string)
	Warning(msg string)
	Debug(msg string)

	InfoError(msg string, err error)
	WarningError(msg string, err error)
	DebugError(msg string, err error)
}

// ListenFunc binds a local address.
type ListenFunc func(network, address string) (net.Listener, error)
