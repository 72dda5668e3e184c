package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v2"
)

type Config struct {
	HistoryFile string `yaml:"history_file"`
	HomeDir     string `yaml:"home_dir"`
	Debug       bool   `yaml:"debug"`
	LogLevel    string `yaml:"log_level"`
	LogFormat   string `yaml:"log_format"`
	Color       bool   `yaml:"color"`
}

// DefaultFile is the config path used when none is given on the command line.
func DefaultFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".myshell.yml"
	}
	return filepath.Join(home, ".myshell.yml")
}

// Load reads a YAML config file. A missing file is not an error: the
// shell starts with defaults.
func Load(file string) (*Config, error) {
	cfg := &Config{}
	data, err := os.ReadFile(file)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("reading config %s: %w", file, err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", file, err)
		}
	}

	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyDefaults() error {
	if c.HomeDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("error getting home directory: %w", err)
		}
		c.HomeDir = home
	}

	if c.HistoryFile == "" {
		c.HistoryFile = filepath.Join(c.HomeDir, ".myshell_history")
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogFormat == "" {
		c.LogFormat = "text"
	}
	return nil
}
