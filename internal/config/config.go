// Package config loads the player's YAML configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config is the player runtime configuration.
type Config struct {
	Learner LearnerConfig `yaml:"learner"`
	// Path to the SQLite database file. Empty means the default location.
	DBPath string `yaml:"db_path"`
	// Maximum executions of the same activity before the loop aborts.
	MaxExecutions int    `yaml:"max_executions"`
	LogLevel      string `yaml:"log_level"`
}

// LearnerConfig identifies the local learner.
type LearnerConfig struct {
	ID   string `yaml:"id"`
	Name string `yaml:"name"`
}

// Load reads the YAML config file at the given path. A missing file yields
// the defaults; an empty path uses DefaultPath.
func Load(path string) (*Config, error) {
	var cfg Config
	if path == "" {
		path = DefaultPath()
	}
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.SetDefaults()
			return &cfg, nil
		}
		return nil, fmt.Errorf("open config file %s: %w", path, err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode YAML config: %w", err)
	}
	cfg.SetDefaults()
	return &cfg, nil
}

// SetDefaults fills in default values for unset fields.
func (c *Config) SetDefaults() {
	if c.Learner.ID == "" {
		c.Learner.ID = "local"
	}
	if c.Learner.Name == "" {
		c.Learner.Name = "Local Learner"
	}
	if c.MaxExecutions <= 0 {
		c.MaxExecutions = 3
	}
	if c.LogLevel == "" {
		c.LogLevel = "warn"
	}
}

// SlogLevel maps the configured log level to a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}

// DefaultPath resolves the config file location:
// $XDG_CONFIG_HOME/lernmar/config.yaml, falling back to
// ~/.config/lernmar/config.yaml.
func DefaultPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, "lernmar", "config.yaml")
}
