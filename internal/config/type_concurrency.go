package config

import (
	"fmt"
	"strconv"
)

// TypeConcurrency is a positive integer: a number of workers, files,
// attempts and so on.
type TypeConcurrency struct {
	Value uint
}

func (t *TypeConcurrency) Set(value string) error {
	parsed, err := strconv.ParseUint(value, 10, 32) //nolint: gomnd
	if err != nil {
		return fmt.Errorf("value is not uint (%s): %w", value, err)
	}

	if parsed == 0 {
		return fmt.Errorf("value should be positive (%s)", value)
	}

	t.Value = uint(parsed)

	return nil
}

func (t TypeConcurrency) Get(defaultValue uint) uint {
	if t.Value == 0 {
		return defaultValue
	}

	return t.Value
}

func (t *TypeConcurrency) UnmarshalJSON(data []byte) error {
	return t.Set(unquote(data))
}

func (t TypeConcurrency) MarshalJSON() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeConcurrency) String() string {
	return strconv.FormatUint(uint64(t.Value), 10) //nolint: gomnd
}
