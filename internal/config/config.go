// Package config loads application configuration from an optional YAML file
// and environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the application configuration.
type Config struct {
	DBPath     string     `yaml:"db_path"`
	ListenAddr string     `yaml:"listen_addr"`
	LogLevel   slog.Level `yaml:"-"`

	// RawLogLevel is the textual level from the YAML file; see LogLevel.
	RawLogLevel string `yaml:"log_level"`
}

// Load returns a validated Config. Values come from, in increasing priority:
// built-in defaults, the YAML file named by SECRETVAULT_CONFIG, and the
// SECRETVAULT_DB_PATH, SECRETVAULT_LISTEN_ADDR and SECRETVAULT_LOG_LEVEL
// environment variables. Defaults: secrets.db, 127.0.0.1:8080, info.
func Load() (*Config, error) {
	cfg := &Config{
		DBPath:      "secrets.db",
		ListenAddr:  "127.0.0.1:8080",
		RawLogLevel: "info",
	}

	if path, ok := os.LookupEnv("SECRETVAULT_CONFIG"); ok && path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("SECRETVAULT_CONFIG %q: %w", path, err)
		}
	}

	if v, ok := os.LookupEnv("SECRETVAULT_DB_PATH"); ok {
		cfg.DBPath = v
	}
	if v, ok := os.LookupEnv("SECRETVAULT_LISTEN_ADDR"); ok {
		cfg.ListenAddr = v
	}
	if v, ok := os.LookupEnv("SECRETVAULT_LOG_LEVEL"); ok {
		cfg.RawLogLevel = v
	}

	if cfg.DBPath == "" {
		return nil, errors.New("SECRETVAULT_DB_PATH must not be empty")
	}
	if err := cfg.LogLevel.UnmarshalText([]byte(cfg.RawLogLevel)); err != nil {
		return nil, fmt.Errorf("SECRETVAULT_LOG_LEVEL has invalid level %q: %w", cfg.RawLogLevel, err)
	}

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
