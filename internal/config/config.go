// Package config provides configuration management for the theory engine.
package config

import (
	"fmt"
)

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	GameStore GameStoreConfig `mapstructure:"game_store" validate:"required"`
	Engine    EngineConfig    `mapstructure:"engine" validate:"required"`
	Snapshots SnapshotConfig  `mapstructure:"snapshots" validate:"required"`
	Metrics   MetricsConfig   `mapstructure:"metrics" validate:"required"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// DatabaseConfig represents database connection configuration
type DatabaseConfig struct {
	Host           string `mapstructure:"host" validate:"required"`
	Port           int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Name           string `mapstructure:"name" validate:"required"`
	User           string `mapstructure:"user" validate:"required"`
	Password       string `mapstructure:"password" validate:"required"`
	SSLMode        string `mapstructure:"ssl_mode" validate:"required,oneof=disable require verify-full"`
	MaxConnections int    `mapstructure:"max_connections" validate:"required,gt=0"`
}

// GameStoreConfig selects and tunes the Historical Game Store backend
type GameStoreConfig struct {
	// Backend is "postgres" or "http".
	Backend         string  `mapstructure:"backend" validate:"required,oneof=postgres http"`
	APIURL          string  `mapstructure:"api_url" validate:"required_if=Backend http,omitempty,url"`
	APIKey          string  `mapstructure:"api_key"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds" validate:"required,gt=0"`
	MaxRetries      int     `mapstructure:"max_retries" validate:"gte=0"`
	RateLimitPerSec float64 `mapstructure:"rate_limit_per_sec" validate:"gte=0"`
	CacheTTLSeconds int     `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	CacheMaxEntries int     `mapstructure:"cache_max_entries" validate:"gte=0"`
}

// EngineConfig tunes the analysis pipeline
type EngineConfig struct {
	MonteCarloTrials     int     `mapstructure:"monte_carlo_trials" validate:"required,gt=0"`
	MonteCarloMinBets    int     `mapstructure:"monte_carlo_min_bets" validate:"required,gt=0"`
	MaxMissingFraction   float64 `mapstructure:"max_missing_fraction" validate:"gte=0,lte=1"`
	CorrelationThreshold float64 `mapstructure:"correlation_threshold" validate:"gte=0,lte=1"`
	RegularizationLambda float64 `mapstructure:"regularization_lambda" validate:"gte=0"`
	FitIterations        int     `mapstructure:"fit_iterations" validate:"required,gt=0"`
	WorkerCount          int     `mapstructure:"worker_count" validate:"gte=0"`
	// Verdict policy thresholds, tunable rather than contractual.
	StrongLiftDelta    float64 `mapstructure:"strong_lift_delta" validate:"gt=0"`
	ModerateLiftDelta  float64 `mapstructure:"moderate_lift_delta" validate:"gt=0"`
	LargeSampleSize    int     `mapstructure:"large_sample_size" validate:"gt=0"`
	ModerateSampleSize int     `mapstructure:"moderate_sample_size" validate:"gt=0"`
}

// SnapshotConfig controls the run snapshot store
type SnapshotConfig struct {
	RetentionDays int    `mapstructure:"retention_days" validate:"required,gt=0"`
	SweepSchedule string `mapstructure:"sweep_schedule" validate:"required"`
}

// MetricsConfig represents metrics and monitoring configuration
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Port    int    `mapstructure:"port" validate:"required,min=1,max=65535"`
	Path    string `mapstructure:"path" validate:"required"`
}

// IsDevelopment checks if the application is running in development mode
func (c *Config) IsDevelopment() bool {
	return c.App.Environment == "development"
}

// IsProduction checks if the application is running in production mode
func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// GetDatabaseDSN returns a PostgreSQL DSN string
func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}
