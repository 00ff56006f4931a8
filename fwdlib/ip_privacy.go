package fwdlib

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
)

// hashIP хэширует IP-адрес для логов: первые 12 hex символов SHA-256
// достаточно для корреляции записей, но не для восстановления адреса.
func hashIP(ip net.IP) string {
	h := sha256.Sum256(ip)

	return hex.EncodeToString(h[:6])
}

func (f *Forwarder) clientIPForLogs(ip net.IP) string {
	if f.hashClientIPs {
		return hashIP(ip)
	}

	return ip.String()
}
