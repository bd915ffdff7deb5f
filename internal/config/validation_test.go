package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:        "theory-engine",
			Environment: "development",
			LogLevel:    "info",
		},
		Database: DatabaseConfig{
			Host:           "localhost",
			Port:           5432,
			Name:           "theory",
			User:           "theory",
			Password:       "secret",
			SSLMode:        "disable",
			MaxConnections: 10,
		},
		GameStore: GameStoreConfig{
			Backend:        "postgres",
			TimeoutSeconds: 30,
			MaxRetries:     3,
		},
		Engine: EngineConfig{
			MonteCarloTrials:     1000,
			MonteCarloMinBets:    20,
			MaxMissingFraction:   0.5,
			CorrelationThreshold: 0.95,
			RegularizationLambda: 0.01,
			FitIterations:        500,
			WorkerCount:          4,
			StrongLiftDelta:      0.10,
			ModerateLiftDelta:    0.05,
			LargeSampleSize:      5000,
			ModerateSampleSize:   1000,
		},
		Snapshots: SnapshotConfig{
			RetentionDays: 90,
			SweepSchedule: "0 4 * * *",
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
	}
}

func TestValidateAcceptsValidConfig(t *testing.T) {
	assert.NoError(t, Validate(validConfig()))
}

func TestValidateRejectsUnknownEnvironment(t *testing.T) {
	cfg := validConfig()
	cfg.App.Environment = "testing"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "environment")
}

func TestValidateRejectsUnknownLogLevel(t *testing.T) {
	cfg := validConfig()
	cfg.App.LogLevel = "verbose"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loglevel")
}

func TestValidateRejectsBadDatabasePort(t *testing.T) {
	cfg := validConfig()
	cfg.Database.Port = 70000
	assert.Error(t, Validate(cfg))
}

func TestValidateHTTPBackendRequiresURL(t *testing.T) {
	cfg := validConfig()
	cfg.GameStore.Backend = "http"
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APIURL")

	cfg.GameStore.APIURL = "https://gamestore.internal/api"
	assert.NoError(t, Validate(cfg))
}

func TestValidateVerdictBandOrdering(t *testing.T) {
	cfg := validConfig()
	cfg.Engine.ModerateLiftDelta = 0.10
	err := Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moderate_lift_delta")

	cfg = validConfig()
	cfg.Engine.ModerateSampleSize = 5000
	err = Validate(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "moderate_sample_size")
}

func TestValidateStructChecksRequestPayloads(t *testing.T) {
	type payload struct {
		Limit int `validate:"gte=1,lte=500"`
	}
	cv := NewValidator()
	assert.NoError(t, cv.ValidateStruct(payload{Limit: 50}))
	assert.Error(t, cv.ValidateStruct(payload{Limit: 0}))
}
