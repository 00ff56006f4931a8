//go:build !linux

package network

import "syscall"

func setPlatformSocketOptions(_ syscall.RawConn) error {
	return nil
}
