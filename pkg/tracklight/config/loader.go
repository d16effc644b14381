package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FromFile reads an analytics settings file, detecting the format from the
// extension (.yaml, .yml, or .json). Keys follow the tracklight settings
// vocabulary: analytics_version, process_type, install_type, adaptors, the
// prefix blocks, and so on.
func FromFile(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read settings file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return FromYAML(raw)
	case ".json":
		return FromJSON(raw)
	default:
		return Config{}, fmt.Errorf("unsupported settings file extension %q", ext)
	}
}

// FromYAML parses YAML settings into a Config. The document must be a
// mapping at the top level.
func FromYAML(raw []byte) (Config, error) {
	var m map[string]any
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Config{}, fmt.Errorf("parse yaml settings: %w", err)
	}
	return New(m), nil
}

// FromJSON parses JSON settings into a Config. The document must be an
// object at the top level.
func FromJSON(raw []byte) (Config, error) {
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return Config{}, fmt.Errorf("parse json settings: %w", err)
	}
	return New(m), nil
}
