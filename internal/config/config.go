package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/qzx-dev/go-qzx/pkg/phase"
)

// OutputFormat selects how commands render results.
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
	FormatYAML OutputFormat = "yaml"
)

// Config holds all configuration for go-qzx
type Config struct {
	// DefaultDimension is the qudit dimension assumed when a circuit
	// file does not declare one. Must be an odd prime.
	DefaultDimension int `yaml:"default_dimension" env:"QZX_DEFAULT_DIMENSION"`

	// MaxIterations bounds the rewrite loops of the simplification and
	// optimization engines.
	MaxIterations int `yaml:"max_iterations" env:"QZX_MAX_ITERATIONS"`

	// OutputFormat selects the rendering of command results.
	OutputFormat OutputFormat `yaml:"output_format" env:"QZX_OUTPUT_FORMAT"`

	// Workers is the number of parallel workers for batch simplification.
	Workers int `yaml:"workers" env:"QZX_WORKERS"`

	// Logging
	Verbose bool `yaml:"verbose" env:"QZX_VERBOSE"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		DefaultDimension: 3,
		MaxIterations:    100000,
		OutputFormat:     FormatText,
		Workers:          4,
		Verbose:          false,
	}
}

// GlobalPath returns the global config file path (~/.qzx/config.yaml)
func GlobalPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".qzx/config.yaml"
	}
	return filepath.Join(home, ".qzx", "config.yaml")
}

// ProjectPath returns the project-level config file path (./.qzx/config.yaml)
func ProjectPath() string {
	return ".qzx/config.yaml"
}

// Load reads configuration with the following priority (highest to lowest):
// 1. Environment variables
// 2. Project-level config (./.qzx/config.yaml)
// 3. Global config (~/.qzx/config.yaml)
// 4. Defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	globalConfigPath := GlobalPath()
	if data, err := os.ReadFile(globalConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", globalConfigPath, err)
		}
	}

	projectConfigPath := ProjectPath()
	if data, err := os.ReadFile(projectConfigPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", projectConfigPath, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromFile reads configuration from a specific YAML file path
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	if data, err := os.ReadFile(path); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	} else if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to the specified YAML file path.
// It creates parent directories if they don't exist.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file %s: %w", path, err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("QZX_DEFAULT_DIMENSION"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.DefaultDimension = i
		}
	}
	if v := os.Getenv("QZX_MAX_ITERATIONS"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.MaxIterations = i
		}
	}
	if v := os.Getenv("QZX_OUTPUT_FORMAT"); v != "" {
		cfg.OutputFormat = OutputFormat(v)
	}
	if v := os.Getenv("QZX_WORKERS"); v != "" {
		if i := parseInt(v); i > 0 {
			cfg.Workers = i
		}
	}
	if v := os.Getenv("QZX_VERBOSE"); v != "" {
		cfg.Verbose = v == "true" || v == "1" || v == "yes"
	}
}

// Validate checks that the configuration has valid required fields
func (c *Config) Validate() error {
	if err := phase.ValidateDimension(c.DefaultDimension); err != nil {
		return fmt.Errorf("default_dimension %d: %w", c.DefaultDimension, err)
	}
	if c.MaxIterations <= 0 {
		return fmt.Errorf("max_iterations must be positive")
	}
	switch c.OutputFormat {
	case FormatText, FormatJSON, FormatYAML:
		// Valid
	default:
		return fmt.Errorf("invalid output_format: %s (must be 'text', 'json' or 'yaml')", c.OutputFormat)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive")
	}
	return nil
}

// parseInt attempts to parse a string as int
func parseInt(s string) int {
	var i int
	if _, err := fmt.Sscanf(s, "%d", &i); err != nil {
		return 0
	}
	return i
}
