//go:build linux

package network

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// Увеличенные буферы сокетов для лучшей пропускной способности.
const socketBufferSize = 256 * 1024

func setPlatformSocketOptions(conn syscall.RawConn) error {
	var err error

	controlErr := conn.Control(func(fd uintptr) {
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF, socketBufferSize) //nolint: nosnakecase,errcheck
		_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_SNDBUF, socketBufferSize) //nolint: nosnakecase,errcheck

		// TCP_QUICKACK: без задержки ACK
		err = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_QUICKACK, 1) //nolint: nosnakecase
		if err != nil {
			err = fmt.Errorf("cannot set TCP_QUICKACK: %w", err)
		}
	})
	if controlErr != nil {
		return fmt.Errorf("cannot access socket: %w", controlErr)
	}

	return err
}
