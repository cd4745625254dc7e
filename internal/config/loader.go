package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// LoadFile reads a TOML configuration file and returns its contents as a
// flattened path->value map ("advanced.blame.delayAfterEdit" style keys).
func LoadFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var raw map[string]any
	if err := toml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	flat := make(map[string]any)
	flatten("", raw, flat)
	return flat, nil
}

// flatten converts nested TOML tables into dot-separated paths.
func flatten(prefix string, in map[string]any, out map[string]any) {
	for key, value := range in {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		if table, ok := value.(map[string]any); ok {
			flatten(path, table, out)
			continue
		}
		out[path] = value
	}
}
