package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Pebble  PebbleConfig  `yaml:"pebble"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// ServerConfig represents the HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// PebbleConfig represents the Pebble database configuration
type PebbleConfig struct {
	Path    string `yaml:"path"`
	CacheMB int    `yaml:"cache_mb"`
	NoSync  bool   `yaml:"no_sync"` // skip fsync per write, faster but may lose the tail on crash
}

// LogConfig represents the logger configuration
type LogConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// MetricsConfig represents the Prometheus endpoint configuration
type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

// Load loads configuration from a YAML file and environment variables
func Load(path string) (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port: 8080,
			Host: "0.0.0.0",
		},
		Pebble: PebbleConfig{
			Path:    "./data/pebble",
			CacheMB: 512,
		},
		Log: LogConfig{
			Level: "info",
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}

	// Load from YAML file if it exists
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	// Override with environment variables
	cfg.loadEnv()

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Pebble.Path == "" {
		return fmt.Errorf("pebble path is required")
	}
	if c.Pebble.CacheMB <= 0 {
		return fmt.Errorf("invalid pebble cache size: %d", c.Pebble.CacheMB)
	}
	return nil
}

func parseBool(s string) bool {
	return s == "true" || s == "1"
}

func (c *Config) loadEnv() {
	// Server config
	if port := os.Getenv("SERVER_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			c.Server.Port = p
		}
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}

	// Pebble config
	if path := os.Getenv("PEBBLE_PATH"); path != "" {
		c.Pebble.Path = path
	}
	if cache := os.Getenv("PEBBLE_CACHE_MB"); cache != "" {
		if n, err := strconv.Atoi(cache); err == nil {
			c.Pebble.CacheMB = n
		}
	}
	if noSync := os.Getenv("PEBBLE_NO_SYNC"); noSync != "" {
		c.Pebble.NoSync = parseBool(noSync)
	}

	// Log config
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if dev := os.Getenv("LOG_DEVELOPMENT"); dev != "" {
		c.Log.Development = parseBool(dev)
	}

	// Metrics config
	if enabled := os.Getenv("METRICS_ENABLED"); enabled != "" {
		c.Metrics.Enabled = parseBool(enabled)
	}
}
