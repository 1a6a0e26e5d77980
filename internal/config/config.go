// Package config loads engine configuration from the environment, with an
// optional TOML file overlay for local development.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Preview PreviewConfig
	Bridge  BridgeConfig
	Logging LogConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8400" toml:"port"`
	Host string `envconfig:"HOST" default:"0.0.0.0" toml:"host"`
}

// PreviewConfig holds preview engine configuration.
type PreviewConfig struct {
	Root       string        `envconfig:"PREVIEW_ROOT" default:"/" toml:"root"`
	DebounceMS int           `envconfig:"PREVIEW_DEBOUNCE_MS" default:"250" toml:"debounce_ms"`
	Debounce   time.Duration `ignored:"true" toml:"-"`
}

// BridgeConfig holds network bridge configuration.
type BridgeConfig struct {
	RequestsPerSecond int  `envconfig:"BRIDGE_RPS" default:"200" toml:"requests_per_second"`
	Burst             int  `envconfig:"BRIDGE_BURST" default:"400" toml:"burst"`
	AllowPassthrough  bool `envconfig:"BRIDGE_PASSTHROUGH" default:"false" toml:"allow_passthrough"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" toml:"development"`
}

// Load loads configuration from environment variables. When path is non-empty
// the TOML file at path is used instead, applied over the built-in defaults.
func Load(path string) (*Config, error) {
	if path != "" {
		return loadFile(path)
	}
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	cfg.Preview.Debounce = time.Duration(cfg.Preview.DebounceMS) * time.Millisecond
	return &cfg, nil
}

func loadFile(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	cfg := Default()
	if err := toml.Unmarshal(raw, cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	cfg.Preview.Debounce = time.Duration(cfg.Preview.DebounceMS) * time.Millisecond
	return cfg, nil
}

// Default returns the built-in defaults.
func Default() *Config {
	return &Config{
		Server:  ServerConfig{Port: "8400", Host: "0.0.0.0"},
		Preview: PreviewConfig{Root: "/", DebounceMS: 250, Debounce: 250 * time.Millisecond},
		Bridge:  BridgeConfig{RequestsPerSecond: 200, Burst: 400},
		Logging: LogConfig{Level: "info"},
	}
}
