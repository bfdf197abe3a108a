package main

import (
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the diagnose settings. A YAML file supplies them; command
// line flags override single fields.
type Config struct {
	// Format is the output format: text, yaml or cbor.
	Format string `yaml:"format"`

	// Records parses the records of every data group.
	Records bool `yaml:"records"`

	// Digest prints the BLAKE3 digest of each joined record stream.
	Digest bool `yaml:"digest"`

	// Mmap maps the input file instead of reading it.
	Mmap bool `yaml:"mmap"`

	// TempDir is where fragmented data regions are staged.
	TempDir string `yaml:"temp_dir"`

	// MaxDepth bounds DL/HL nesting; 0 keeps the library default.
	MaxDepth int `yaml:"max_depth"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the settings used without a config file.
func DefaultConfig() *Config {
	return &Config{
		Format:   "text",
		LogLevel: "warn",
	}
}

// LoadConfig reads path over the defaults.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	switch c.Format {
	case "text", "yaml", "cbor":
	default:
		return fmt.Errorf("unknown format %q (want text, yaml or cbor)", c.Format)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.MaxDepth < 0 {
		return fmt.Errorf("max_depth must not be negative, got %d", c.MaxDepth)
	}
	return nil
}

// Level returns the slog level named by LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
