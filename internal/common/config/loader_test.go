package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

// ==========================
// Defaults
// ==========================

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, "app:\n  name: career-predictor\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "stub", cfg.Prediction.Provider)
	assert.Equal(t, 2000, cfg.Prediction.StubDelay)
	assert.Equal(t, 3, cfg.Prediction.MaxRetries)
	assert.Equal(t, 500, cfg.Lifecycle.ProgressInterval)
	assert.Equal(t, 10, cfg.Lifecycle.ProgressStep)
	assert.Equal(t, 90, cfg.Lifecycle.ProgressCap)
	assert.Equal(t, 500, cfg.Lifecycle.SettleDelay)
	assert.Equal(t, 2000, cfg.Lifecycle.SuccessAutoClose)
	assert.Equal(t, "Career Prediction", cfg.Share.Title)
	assert.Equal(t, "[Your App Link]", cfg.Share.AppLink)
	assert.Equal(t, "#Hackathon2025", cfg.Share.Hashtag)
	assert.True(t, cfg.Notifications.Sound)
	assert.Equal(t, "career:session:", cfg.Guard.KeyPrefix)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, 5432, cfg.Database.Postgres.Port)
	assert.Equal(t, "disable", cfg.Database.Postgres.SSLMode)
}

func TestLoadFromFile_Overrides(t *testing.T) {
	path := writeConfig(t, `
prediction:
  provider: http
  base_url: http://model.local
  timeout: 2500
lifecycle:
  progress_interval: 100
  settle_delay: 0
workers:
  predict-career:
    enabled: true
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "http", cfg.Prediction.Provider)
	assert.Equal(t, "http://model.local", cfg.Prediction.BaseURL)
	assert.Equal(t, 2500, cfg.Prediction.Timeout)
	assert.Equal(t, 100, cfg.Lifecycle.ProgressInterval)
	assert.Equal(t, 0, cfg.Lifecycle.SettleDelay)

	w := cfg.Workers["predict-career"]
	assert.True(t, w.Enabled)
	assert.Equal(t, 5, w.MaxJobsActive)
	assert.Equal(t, 30000, w.Timeout)
}

func TestLoadFromFile_ZeroPredictionRetries(t *testing.T) {
	path := writeConfig(t, "prediction:\n  provider: http\n  base_url: http://model.local\n  max_retries: 0\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.Prediction.MaxRetries)
}

func TestLoadFromFile_EnvOverride(t *testing.T) {
	t.Setenv("PREDICTION_STUB_DELAY", "50")
	t.Setenv("MODEL_URL", "http://from-env")
	path := writeConfig(t, "prediction:\n  provider: http\n  base_url: ${MODEL_URL}\n")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 50, cfg.Prediction.StubDelay)
	assert.Equal(t, "http://from-env", cfg.Prediction.BaseURL)
}

// ==========================
// Validation
// ==========================

func TestLoadFromFile_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown provider", "prediction:\n  provider: oracle\n"},
		{"http without url", "prediction:\n  provider: http\n"},
		{"catalog without postgres", "prediction:\n  provider: catalog\n"},
		{"zero interval", "lifecycle:\n  progress_interval: -1\n"},
		{"cap above 100", "lifecycle:\n  progress_cap: 120\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidateForWorkers(t *testing.T) {
	cfg := &Config{}
	assert.Error(t, ValidateForWorkers(cfg))

	cfg.Camunda.BrokerAddress = "localhost:26500"
	assert.Error(t, ValidateForWorkers(cfg))

	cfg.Database.Redis.Address = "localhost:6379"
	assert.NoError(t, ValidateForWorkers(cfg))
}

// ==========================
// Helpers
// ==========================

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}

func TestGetWorkerConfig(t *testing.T) {
	cfg := &Config{Workers: map[string]WorkerConfig{
		"validate-career-form": {Enabled: false, MaxJobsActive: 2},
	}}

	assert.False(t, IsWorkerEnabled(cfg, "validate-career-form"))
	assert.True(t, IsWorkerEnabled(cfg, "share-prediction"))
	assert.Equal(t, 2, GetWorkerConfig(cfg, "validate-career-form").MaxJobsActive)
	assert.Equal(t, 5, GetWorkerConfig(cfg, "share-prediction").MaxJobsActive)
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5432, User: "u", Password: "p", Database: "careers", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=careers sslmode=disable", p.GetDSN())
	assert.True(t, p.Configured())
	assert.False(t, PostgresConfig{Host: "db"}.Configured())
}
