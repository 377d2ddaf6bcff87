package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"rld/internal/common/fsutil"
	"rld/internal/space"
	"rld/internal/tensor"
)

// Defaults applied by ApplyDefaults when fields are unset.
const (
	DefaultAddr         = ":8080"
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "console"
	DefaultMaxBodyBytes = 1 << 20
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and are replaced by ApplyDefaults.
type Config struct {
	Addr         string `json:"addr" yaml:"addr" toml:"addr"`
	LogLevel     string `json:"log_level" yaml:"log_level" toml:"log_level"`
	LogFormat    string `json:"log_format" yaml:"log_format" toml:"log_format"`
	MaxBodyBytes int64  `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`
	// ForwardTimeoutSeconds bounds each forward call; 0 disables the limit.
	ForwardTimeoutSeconds int64 `json:"forward_timeout_seconds" yaml:"forward_timeout_seconds" toml:"forward_timeout_seconds"`
	// DefaultModel is used when a request names no model. Defaults to the first model.
	DefaultModel string `json:"default_model" yaml:"default_model" toml:"default_model"`

	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
	CORSAllowedMethods []string `json:"cors_allowed_methods" yaml:"cors_allowed_methods" toml:"cors_allowed_methods"`
	CORSAllowedHeaders []string `json:"cors_allowed_headers" yaml:"cors_allowed_headers" toml:"cors_allowed_headers"`

	Models []ModelConfig `json:"models" yaml:"models" toml:"models"`
}

// ModelConfig declares one linear policy model served by rld.
type ModelConfig struct {
	ID       string           `json:"id" yaml:"id" toml:"id"`
	ObsSpace space.Descriptor `json:"obs_space" yaml:"obs_space" toml:"obs_space"`
	Actions  int              `json:"actions" yaml:"actions" toml:"actions"`
	// ActionSpace is optional; when unset the model declares Discrete(actions).
	ActionSpace *space.Descriptor `json:"action_space,omitempty" yaml:"action_space,omitempty" toml:"action_space,omitempty"`
	Device      string            `json:"device" yaml:"device" toml:"device"`
	Seed        int64             `json:"seed" yaml:"seed" toml:"seed"`
	// Flatten exposes the observation space through the host preprocessor,
	// as RLlib does for dict observations.
	Flatten bool        `json:"flatten" yaml:"flatten" toml:"flatten"`
	Weights [][]float64 `json:"weights,omitempty" yaml:"weights,omitempty" toml:"weights,omitempty"`
	Bias    []float64   `json:"bias,omitempty" yaml:"bias,omitempty" toml:"bias,omitempty"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	path, err := fsutil.ExpandHome(path)
	if err != nil {
		return cfg, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.LogFormat == "" {
		c.LogFormat = DefaultLogFormat
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.DefaultModel == "" && len(c.Models) > 0 {
		c.DefaultModel = c.Models[0].ID
	}
}

// Validate checks model declarations: unique ids, positive action counts,
// decodable spaces and known devices.
func (c Config) Validate() error {
	seen := make(map[string]struct{}, len(c.Models))
	for i, m := range c.Models {
		if strings.TrimSpace(m.ID) == "" {
			return fmt.Errorf("models[%d]: id is required", i)
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("models[%d]: duplicate id %q", i, m.ID)
		}
		seen[m.ID] = struct{}{}
		if m.Actions <= 0 {
			return fmt.Errorf("model %q: actions must be positive", m.ID)
		}
		if _, err := space.Decode(m.ObsSpace); err != nil {
			return fmt.Errorf("model %q: obs_space: %w", m.ID, err)
		}
		if m.ActionSpace != nil {
			if _, err := space.Decode(*m.ActionSpace); err != nil {
				return fmt.Errorf("model %q: action_space: %w", m.ID, err)
			}
		}
		if _, err := tensor.ParseDevice(m.Device); err != nil {
			return fmt.Errorf("model %q: %w", m.ID, err)
		}
	}
	if c.DefaultModel != "" {
		if _, ok := seen[c.DefaultModel]; !ok {
			return fmt.Errorf("default_model %q is not declared", c.DefaultModel)
		}
	}
	if c.ForwardTimeoutSeconds < 0 {
		return fmt.Errorf("forward_timeout_seconds must not be negative")
	}
	switch c.LogFormat {
	case "", "console", "json":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}
