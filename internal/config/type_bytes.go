package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alecthomas/units"
)

// TypeBytes is a size in bytes. It accepts plain numbers and human
// readable values like 4KB or 16MiB (both are powers of 1024).
type TypeBytes struct {
	Value uint
}

func (t *TypeBytes) Set(value string) error {
	value = strings.TrimSpace(value)

	if plain, err := strconv.ParseUint(value, 10, 64); err == nil { //nolint: gomnd
		t.Value = uint(plain)

		return nil
	}

	parsed, err := units.ParseBase2Bytes(value)
	if err != nil {
		return fmt.Errorf("incorrect bytes value (%s): %w", value, err)
	}

	if parsed < 0 {
		return fmt.Errorf("bytes value should be positive (%s)", value)
	}

	t.Value = uint(parsed)

	return nil
}

func (t TypeBytes) Get(defaultValue uint) uint {
	if t.Value == 0 {
		return defaultValue
	}

	return t.Value
}

func (t *TypeBytes) UnmarshalJSON(data []byte) error {
	return t.Set(unquote(data))
}

func (t TypeBytes) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(t.String())), nil
}

func (t TypeBytes) String() string {
	return units.Base2Bytes(t.Value).String()
}
