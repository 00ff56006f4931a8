package config

import (
	"encoding/json"
	"fmt"
	"strconv"
)

type TypeBool struct {
	Value bool
}

func (t *TypeBool) Set(value string) error {
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("value is not a boolean (%s): %w", value, err)
	}

	t.Value = parsed

	return nil
}

func (t TypeBool) Get(defaultValue bool) bool {
	return t.Value || defaultValue
}

func (t *TypeBool) UnmarshalJSON(data []byte) error {
	var value bool

	if err := json.Unmarshal(data, &value); err != nil {
		return fmt.Errorf("value is not a boolean (%s): %w", string(data), err)
	}

	t.Value = value

	return nil
}

func (t TypeBool) MarshalJSON() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t TypeBool) String() string {
	return strconv.FormatBool(t.Value)
}
