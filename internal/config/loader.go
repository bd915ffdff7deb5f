// Package config provides configuration management for the theory engine.
package config

import (
	"bytes"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Load reads and parses the configuration from file and environment variables.
// It expands environment variable placeholders in the YAML file (${VAR_NAME}).
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config file not found at %s: %w", configPath, err)
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	v := viper.New()
	v.SetConfigType("yaml")

	if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	v.SetEnvPrefix("THEORY_ENGINE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}

// LoadWithDefaults loads configuration with default values for optional fields.
// Missing config files are tolerated; defaults and environment variables apply.
func LoadWithDefaults(configPath string) (*Config, error) {
	v := viper.New()

	if configPath == "" {
		configPath = "config/config.yaml"
	}

	v.SetConfigType("yaml")
	v.SetEnvPrefix("THEORY_ENGINE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("app.name", "theory-engine")
	v.SetDefault("app.environment", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("game_store.backend", "postgres")
	v.SetDefault("game_store.timeout_seconds", 30)
	v.SetDefault("game_store.max_retries", 4)
	v.SetDefault("game_store.rate_limit_per_sec", 10)
	v.SetDefault("game_store.cache_ttl_seconds", 300)
	v.SetDefault("game_store.cache_max_entries", 10000)
	v.SetDefault("engine.monte_carlo_trials", 2000)
	v.SetDefault("engine.monte_carlo_min_bets", 10)
	v.SetDefault("engine.max_missing_fraction", 0.5)
	v.SetDefault("engine.correlation_threshold", 0.98)
	v.SetDefault("engine.regularization_lambda", 0.01)
	v.SetDefault("engine.fit_iterations", 500)
	v.SetDefault("engine.strong_lift_delta", 0.10)
	v.SetDefault("engine.moderate_lift_delta", 0.05)
	v.SetDefault("engine.large_sample_size", 5000)
	v.SetDefault("engine.moderate_sample_size", 1000)
	v.SetDefault("snapshots.retention_days", 90)
	v.SetDefault("snapshots.sweep_schedule", "0 4 * * *")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")

	if data, err := os.ReadFile(configPath); err == nil {
		expanded := os.ExpandEnv(string(data))
		if err := v.ReadConfig(bytes.NewBufferString(expanded)); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	return cfg, nil
}
