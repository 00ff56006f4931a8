package fwdlib

import (
	"net"
	"time"
)

// ForwarderOpts is a structure with settings of a forwarder.
//
// This is not required per se, but this is to shorten function signature
// and give an ability to conveniently provide default values.
type ForwarderOpts struct {
	// Network defines a way to dial remote addresses of rules.
	//
	// This is a mandatory setting.
	Network Network

	// EventStream defines an instance of event stream.
	//
	// This is a mandatory setting.
	EventStream EventStream

	// Logger defines an instance of the logger.
	//
	// This is a mandatory setting.
	Logger Logger

	// Sealer encrypts and decrypts encrypted sides of rules.
	//
	// This is an optional setting. Default: NewDefaultSealer()
	Sealer Sealer

	// Listen binds local addresses of rules.
	//
	// This is an optional setting. Default: net.Listen
	Listen ListenFunc

	// Concurrency is a size of the worker pool for connection management.
	// If we have more connections than this number, they are going to be
	// rejected.
	//
	// This is an optional setting.
	Concurrency uint

	// DialTimeout is a timeout to establish a connection to a remote
	// address.
	//
	// This is an optional setting.
	DialTimeout time.Duration

	// BufferSize is a size of a chunk read from a socket at once. For a
	// plain source which is relayed to an encrypted destination this is
	// also a max payload size of produced frames.
	//
	// This is an optional setting.
	BufferSize uint

	// MaxFrameSize limits a declared length of incoming frames.
	//
	// This is an optional setting.
	MaxFrameSize uint

	// StrictBind makes a failure to bind any rule fatal for a whole rule
	// set. Otherwise each rule is served independently and failed rules are
	// reported only.
	//
	// This is an optional setting.
	StrictBind bool

	// HashClientIPs replaces client IP addresses in logs with short
	// hashes.
	//
	// This is an optional setting.
	HashClientIPs bool
}

func (f ForwarderOpts) valid() error {
	switch {
	case f.Network == nil:
		return ErrNetworkIsNotDefined
	case f.EventStream == nil:
		return ErrEventStreamIsNotDefined
	case f.Logger == nil:
		return ErrLoggerIsNotDefined
	}

	return nil
}

func (f ForwarderOpts) getSealer() Sealer {
	if f.Sealer == nil {
		return NewDefaultSealer()
	}

	return f.Sealer
}

func (f ForwarderOpts) getListen() ListenFunc {
	if f.Listen == nil {
		return net.Listen
	}

	return f.Listen
}

func (f ForwarderOpts) getConcurrency() int {
	if f.Concurrency == 0 {
		return DefaultConcurrency
	}

	return int(f.Concurrency)
}

func (f ForwarderOpts) getDialTimeout() time.Duration {
	if f.DialTimeout == 0 {
		return DefaultDialTimeout
	}

	return f.DialTimeout
}

func (f ForwarderOpts) getBufferSize() int {
	if f.BufferSize == 0 {
		return DefaultBufferSize
	}

	return int(f.BufferSize)
}

func (f ForwarderOpts) getMaxFrameSize() int {
	if f.MaxFrameSize == 0 {
		return DefaultMaxFrameSize
	}

	return int(f.MaxFrameSize)
}

func (f ForwarderOpts) getLogger(name string) Logger {
	return f.Logger.Named(name)
}
