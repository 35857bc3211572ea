package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Loader  LoaderConfig
	Logging LogConfig
	Metrics MetricsConfig
}

// LoaderConfig holds module loader configuration.
type LoaderConfig struct {
	Whitelist        []string      `envconfig:"LOADER_WHITELIST" default:"console"`
	Timeout          time.Duration `envconfig:"LOADER_TIMEOUT" default:"0s"`
	MaxCallStackSize int           `envconfig:"LOADER_MAX_CALL_STACK" default:"1024"`
	EnableConsole    bool          `envconfig:"LOADER_CONSOLE" default:"true"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// MetricsConfig holds metrics configuration.
type MetricsConfig struct {
	Enabled bool `envconfig:"METRICS_ENABLED" default:"true"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Loader: LoaderConfig{
			Whitelist:        []string{"console"},
			Timeout:          0,
			MaxCallStackSize: 1024,
			EnableConsole:    true,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}
