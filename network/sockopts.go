package network

import (
	"fmt"
	"net"
)

// SetClientSocketOptions tunes a TCP socket that represents a connection
// accepted from a client of a rule.
func SetClientSocketOptions(conn net.Conn) error {
	return setCommonSocketOptions(conn)
}

// SetServerSocketOptions tunes a TCP socket that represents a connection
// to a remote address of a rule.
func SetServerSocketOptions(conn net.Conn) error {
	return setCommonSocketOptions(conn)
}

func setCommonSocketOptions(conn net.Conn) error {
	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		return nil
	}

	if err := tcpConn.SetNoDelay(true); err != nil {
		return fmt.Errorf("cannot set TCP_NODELAY: %w", err)
	}

	if err := tcpConn.SetKeepAlive(true); err != nil {
		return fmt.Errorf("cannot enable TCP keepalive: %w", err)
	}

	if err := tcpConn.SetKeepAlivePeriod(DefaultTCPKeepAlivePeriod); err != nil {
		return fmt.Errorf("cannot set time period of TCP keepalive probes: %w", err)
	}

	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		return fmt.Errorf("cannot get underlying raw connection: %w", err)
	}

	return setPlatformSocketOptions(rawConn)
}
