package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/pelletier/go-toml"
)

// Parse reads TOML config. Keys of TOML file are mapped to json tags of
// Config: a tree is converted to a map and decoded through JSON so every
// value goes through its typed wrapper. Unknown keys are errors.
func Parse(rawData []byte) (*Config, error) {
	tree, err := toml.LoadBytes(rawData)
	if err != nil {
		return nil, fmt.Errorf("cannot parse toml config: %w", err)
	}

	jsonBuf := &bytes.Buffer{}
	jsonEncoder := json.NewEncoder(jsonBuf)

	jsonEncoder.SetEscapeHTML(false)
	jsonEncoder.SetIndent("", "")

	if err := jsonEncoder.Encode(tree.ToMap()); err != nil {
		return nil, fmt.Errorf("cannot convert toml to json: %w", err)
	}

	conf := &Config{}
	jsonDecoder := json.NewDecoder(jsonBuf)

	jsonDecoder.DisallowUnknownFields()

	if err := jsonDecoder.Decode(conf); err != nil {
		return nil, fmt.Errorf("cannot parse a config: %w", err)
	}

	return conf, nil
}
