package config

import (
	"fmt"
	"strings"

	"github.com/portseal/portseal/network"
)

const (
	TypeDNSModeSystem = "system"
	TypeDNSModeDOH    = "doh"
)

// TypeDNSMode defines how hostnames of remote addresses are resolved:
// with a system resolver or DNS-over-HTTPS.
type TypeDNSMode struct {
	Value string
}

func (t *TypeDNSMode) Set(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "system", "plain", "":
		t.Value = TypeDNSModeSystem
	case "doh", "dns-over-https":
		t.Value = TypeDNSModeDOH
	default:
		return fmt.Errorf("unknown dns mode %q, expected 'system' or 'doh'", value)
	}

	return nil
}

func (t TypeDNSMode) Get(defaultValue network.DNSMode) network.DNSMode {
	switch t.Value {
	case TypeDNSModeSystem:
		return network.DNSModeSystem
	case TypeDNSModeDOH:
		return network.DNSModeDOH
	}

	return defaultValue
}

func (t *TypeDNSMode) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeDNSMode) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeDNSMode) String() string {
	return t.Value
}
