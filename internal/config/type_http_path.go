package config

import (
	"fmt"
	"net/url"
	"strings"
)

type TypeHTTPPath struct {
	Value string
}

func (t *TypeHTTPPath) Set(value string) error {
	parsed, err := url.Parse(value)
	if err != nil || parsed.Host != "" || parsed.RawQuery != "" {
		return fmt.Errorf("incorrect http path %q", value)
	}

	if !strings.HasPrefix(value, "/") {
		value = "/" + value
	}

	t.Value = value

	return nil
}

func (t TypeHTTPPath) Get(defaultValue string) string {
	if t.Value == "" {
		return defaultValue
	}

	return t.Value
}

func (t *TypeHTTPPath) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeHTTPPath) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeHTTPPath) String() string {
	return t.Value
}
