package config

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// TypeHexBytes is a binary value written as a hex string. It is never
// printed back: String masks it.
type TypeHexBytes struct {
	Value []byte
}

func (t *TypeHexBytes) Set(value string) error {
	decoded, err := hex.DecodeString(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("incorrect hex value: %w", err)
	}

	t.Value = decoded

	return nil
}

func (t TypeHexBytes) Empty() bool {
	return len(t.Value) == 0
}

func (t *TypeHexBytes) UnmarshalText(data []byte) error {
	return t.Set(string(data))
}

func (t TypeHexBytes) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeHexBytes) String() string {
	if t.Empty() {
		return ""
	}

	return "***"
}
