package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.convsync/config.toml.
type Config struct {
	BackendURL       string `toml:"backend_url"`
	DataDir          string `toml:"data_dir"`
	FetchIntervalSec int    `toml:"fetch_interval_seconds"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:          BaseDir(),
		FetchIntervalSec: 300,
	}
}

// FetchInterval returns the remote fetch interval as a duration.
func (c *Config) FetchInterval() time.Duration {
	if c.FetchIntervalSec <= 0 {
		return 5 * time.Minute
	}
	return time.Duration(c.FetchIntervalSec) * time.Second
}

// Load reads config from the given path. Returns zero config and error if file missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	_, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}
