// Package config loads persistent CLI configuration from
// ~/.keycrate/config.yaml, with KEYCRATE_* environment overrides applied on
// top of whatever the file provides.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds CLI defaults for the record identity and the diagnostic and
// audit sinks.
type Config struct {
	Service        string `yaml:"service" env:"KEYCRATE_SERVICE"`
	Account        string `yaml:"account" env:"KEYCRATE_ACCOUNT"`
	Synchronizable bool   `yaml:"synchronizable" env:"KEYCRATE_SYNCHRONIZABLE"`
	ProtectedVault bool   `yaml:"protected_vault" env:"KEYCRATE_PROTECTED_VAULT"`
	AuditLog       string `yaml:"audit_log" env:"KEYCRATE_AUDIT_LOG"`
	LogLevel       string `yaml:"log_level" env:"KEYCRATE_LOG_LEVEL"`
}

// DefaultPath returns the default config file path: ~/.keycrate/config.yaml.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".keycrate", "config.yaml")
}

// Load reads a YAML config file from path and applies environment overrides.
// A missing file is not an error: defaults plus environment apply. An empty
// or all-comment file behaves the same way.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist):
		// Start from defaults.
	default:
		return nil, err
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("applying environment overrides: %w", err)
	}
	return cfg, nil
}
