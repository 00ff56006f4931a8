package config

import (
	"fmt"
	"net"
)

// TypeCIDR is a network in CIDR notation. A single IP address is a network
// of one address.
type TypeCIDR struct {
	Value net.IPNet
}

func (t *TypeCIDR) Set(value string) error {
	if _, ipNet, err := net.ParseCIDR(value); err == nil {
		t.Value = *ipNet

		return nil
	}

	ip := net.ParseIP(value)
	if ip == nil {
		return fmt.Errorf("incorrect network %q", value)
	}

	if ip4 := ip.To4(); ip4 != nil {
		t.Value = net.IPNet{IP: ip4, Mask: net.CIDRMask(32, 32)} //nolint: gomnd
	} else {
		t.Value = net.IPNet{IP: ip, Mask: net.CIDRMask(128, 128)} //nolint: gomnd
	}

	return nil
}

func (t *TypeCIDR) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeCIDR) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeCIDR) String() string {
	if t.Value.IP == nil {
		return ""
	}

	return t.Value.String()
}
