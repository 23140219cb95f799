// Package config manages the rcmdr configuration directory.
//
// Two files live there: config.yaml (serve credentials, port scheme, bind
// address) and flags.json (per-remote-type extra serve flags, see flags.go).
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Default serve settings, used when config.yaml is absent or partial.
// They are injected into the serve planner as immutable inputs, never
// consulted as process-wide mutable state.
const (
	DefaultUser     = "user"
	DefaultPass     = "pass"
	DefaultBasePort = 8080
)

// Config is the persisted rcmdr configuration.
type Config struct {
	// Serve holds settings for the serve-local / serve-remote commands.
	Serve ServeConfig `yaml:"serve"`
}

// ServeConfig configures the serve orchestrator.
type ServeConfig struct {
	// User and Pass are the fixed credential pair handed to every
	// spawned server.
	User string `yaml:"user"`
	Pass string `yaml:"pass"`

	// BasePort is the first port of the positional allocation scheme.
	BasePort int `yaml:"base_port"`

	// BindAddr overrides LAN-address auto-detection when set.
	BindAddr string `yaml:"bind_addr,omitempty"`
}

// Dir returns the rcmdr configuration directory, creating it if needed.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to resolve config directory: %w", err)
	}
	dir := filepath.Join(base, "rcmdr")
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	return dir, nil
}

// Path returns the config.yaml path.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// FlagsPath returns the flags.json path.
func FlagsPath() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "flags.json"), nil
}

// defaults returns a fully populated default configuration.
func defaults() *Config {
	return &Config{
		Serve: ServeConfig{
			User:     DefaultUser,
			Pass:     DefaultPass,
			BasePort: DefaultBasePort,
		},
	}
}

// Load reads config.yaml, applying defaults for missing fields. A missing
// file yields the defaults without error.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads a configuration from an explicit path.
func LoadFrom(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cfg.Serve.User == "" {
		cfg.Serve.User = DefaultUser
	}
	if cfg.Serve.Pass == "" {
		cfg.Serve.Pass = DefaultPass
	}
	if cfg.Serve.BasePort <= 0 {
		cfg.Serve.BasePort = DefaultBasePort
	}
	return cfg, nil
}

// Save writes the configuration to config.yaml.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to an explicit path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
