//go:build !linux

package relay

import "net"

// TCP_QUICKACK и TCP_USER_TIMEOUT есть только в Linux.

func setTCPQuickACK(conn net.Conn) {}

func setTCPUserTimeout(conn net.Conn, timeoutMs int) {}
