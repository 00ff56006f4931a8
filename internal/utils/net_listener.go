package utils

import (
	"fmt"
	"net"

	"github.com/portseal/portseal/network"
)

// Listener tunes sockets of accepted connections. A connection which
// cannot be tuned is dropped: this is a problem of that connection and
// not of a listener.
type Listener struct {
	net.Listener
}

func (l Listener) Accept() (net.Conn, error) {
	for {
		conn, err := l.Listener.Accept()
		if err != nil {
			return nil, err //nolint: wrapcheck
		}

		if err := network.SetClientSocketOptions(conn); err != nil {
			conn.Close()

			continue
		}

		return conn, nil
	}
}

// NewListener creates TCP listener. Its signature is compatible with
// [fwdlib.ListenFunc].
func NewListener(protocol, bindTo string) (net.Listener, error) {
	base, err := net.Listen(protocol, bindTo)
	if err != nil {
		return nil, fmt.Errorf("cannot build a base listener: %w", err)
	}

	return Listener{
		Listener: base,
	}, nil
}
