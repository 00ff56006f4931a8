package fwdlib

import (
	"errors"

	"github.com/portseal/portseal/fwdlib/internal/frame"
	"github.com/portseal/portseal/fwdlib/internal/relay"
	"github.com/portseal/portseal/fwdlib/internal/sealing"
)

var (
	// ErrConfiguration is returned when a rule set is malformed. Nothing is
	// started in that case.
	ErrConfiguration = errors.New("invalid configuration")

	// ErrBind is returned when a local address of a rule cannot be bound.
	ErrBind = errors.New("cannot bind local address")

	// ErrAccept is returned when a listener fails to accept a connection.
	// It stops serving of a single rule only.
	ErrAccept = errors.New("cannot accept connection")

	// ErrConnect is returned when a remote address cannot be dialed. It
	// aborts a single connection only.
	ErrConnect = errors.New("cannot connect to remote address")

	// ErrFrame is returned when an encrypted side sends a frame which
	// cannot be parsed or authenticated.
	ErrFrame = relay.ErrFrame

	// ErrIO is returned when read or write on a relayed socket fails.
	ErrIO = relay.ErrIO

	ErrNetworkIsNotDefined     = errors.New("network is not defined")
	ErrEventStreamIsNotDefined = errors.New("event stream is not defined")
	ErrLoggerIsNotDefined      = errors.New("logger is not defined")
)

var (
	// ErrDecryption means that a frame has not passed authentication.
	ErrDecryption = sealing.ErrDecryption

	// ErrFrameTooLarge means that a frame declares a length bigger than
	// allowed.
	ErrFrameTooLarge = frame.ErrFrameTooLarge

	// ErrFrameTruncated means that a stream ends in the middle of a frame.
	ErrFrameTruncated = frame.ErrFrameTruncated
)
