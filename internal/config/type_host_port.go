package config

import (
	"fmt"
	"net"
	"strconv"
)

// TypeHostPort is an address in host:port form. Host may be a name, IPv4
// or bracketed IPv6 address; empty host means all interfaces.
type TypeHostPort struct {
	Value string
}

func (t *TypeHostPort) Set(value string) error {
	_, port, err := net.SplitHostPort(value)
	if err != nil {
		return fmt.Errorf("incorrect host:port value (%s): %w", value, err)
	}

	portValue, err := strconv.ParseUint(port, 10, 16) //nolint: gomnd
	if err != nil {
		return fmt.Errorf("incorrect port number (%s): %w", value, err)
	}

	if portValue == 0 {
		return fmt.Errorf("incorrect port number (%s)", value)
	}

	t.Value = value

	return nil
}

func (t TypeHostPort) Get(defaultValue string) string {
	if t.Value == "" {
		return defaultValue
	}

	return t.Value
}

func (t *TypeHostPort) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeHostPort) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeHostPort) String() string {
	return t.Value
}
