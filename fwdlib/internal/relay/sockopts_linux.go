//go:build linux

package relay

import (
	"net"

	"golang.org/x/sys/unix"
)

// setTCPQuickACK включает TCP_QUICKACK для немедленной отправки ACK.
func setTCPQuickACK(conn net.Conn) {
	control(conn, func(fd int) {
		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_QUICKACK, 1) //nolint: nosnakecase,errcheck
	})
}

// setTCPUserTimeout: закрыть соединение если нет ACK timeoutMs.
// Без этого мёртвые соединения висят до TCP retransmit timeout (~15 мин).
func setTCPUserTimeout(conn net.Conn, timeoutMs int) {
	control(conn, func(fd int) {
		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT, timeoutMs) //nolint: nosnakecase,errcheck
	})
}

func control(conn net.Conn, callback func(fd int)) {
	tcpConn, ok := asTCPConn(conn)
	if !ok {
		return
	}

	rawConn, err := tcpConn.SyscallConn()
	if err != nil {
		return
	}

	rawConn.Control(func(fd uintptr) { //nolint: errcheck
		callback(int(fd))
	})
}
