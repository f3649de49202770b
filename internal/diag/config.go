package diag

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Config overrides the severity of error codes.
type Config map[string]Severity

type tomlConfig struct {
	Errors Config `toml:"errors"`
}

// LoadConfig reads a severity configuration. Files ending in .toml use
// an [errors] table; anything else is read as a JSON object.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read error configuration: %w", err)
	}
	cfg, err := ParseConfig(data, strings.EqualFold(filepath.Ext(path), ".toml"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cfg, nil
}

// ParseConfig decodes a configuration in TOML or JSON form.
func ParseConfig(data []byte, isTOML bool) (Config, error) {
	if isTOML {
		var tc tomlConfig
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&tc); err != nil {
			return nil, err
		}
		if tc.Errors == nil {
			return Config{}, nil
		}
		return normalize(tc.Errors), nil
	}
	cfg := Config{}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return normalize(cfg), nil
}

func normalize(cfg Config) Config {
	out := make(Config, len(cfg))
	for code, sev := range cfg {
		out[strings.ToUpper(code)] = sev
	}
	return out
}

// MarshalTOML encodes cfg as an [errors] table.
func (cfg Config) MarshalTOML() ([]byte, error) {
	return toml.Marshal(tomlConfig{Errors: cfg})
}
