package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
	"gopkg.in/yaml.v3"
)

// FromFile loads configuration from a file, auto-detecting format by extension.
// Supported extensions: .yaml, .yml, .json
func FromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		return FromYAML(data)
	case ".json":
		return FromJSON(data)
	default:
		return nil, fmt.Errorf("unsupported config file extension: %s", ext)
	}
}

// FromYAML parses a YAML mapping into a Config, keeping document key order.
func FromYAML(data []byte) (*Config, error) {
	om := orderedmap.New[string, any]()
	if len(strings.TrimSpace(string(data))) == 0 {
		return Empty(), nil
	}
	if err := yaml.Unmarshal(data, om); err != nil {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	return FromOrdered(om), nil
}

// FromJSON parses a JSON object into a Config, keeping document key order.
func FromJSON(data []byte) (*Config, error) {
	om := orderedmap.New[string, any]()
	if err := json.Unmarshal(data, om); err != nil {
		return nil, fmt.Errorf("parse json: %w", err)
	}
	return FromOrdered(om), nil
}
