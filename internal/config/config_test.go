package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setEnvs is a helper that sets multiple env vars for one test.
func setEnvs(t *testing.T, envs map[string]string) {
	t.Helper()
	for k, v := range envs {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnvs(t, map[string]string{
		"SECRET": "test-signing-secret",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.HTTPPort)
	assert.Equal(t, time.Hour, cfg.TokenExpiry)
	assert.Equal(t, 10*time.Second, cfg.OperationTimeout)
	assert.False(t, cfg.DatabaseSSL)
	assert.Empty(t, cfg.KafkaBrokers)
}

func TestLoad_MissingSecretFailsStartup(t *testing.T) {
	// No insecure fallback: a process without a signing secret must not start.
	setEnvs(t, map[string]string{
		"SECRET": "",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SECRET must be set")
}

func TestLoad_InvalidPort(t *testing.T) {
	setEnvs(t, map[string]string{
		"SECRET":    "test-signing-secret",
		"HTTP_PORT": "70000",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoad_InvalidTokenExpiry(t *testing.T) {
	setEnvs(t, map[string]string{
		"SECRET":       "test-signing-secret",
		"TOKEN_EXPIRY": "-5m",
	})

	cfg, err := Load()

	assert.Nil(t, cfg)
	assert.Error(t, err)
}

func TestLoad_Overrides(t *testing.T) {
	setEnvs(t, map[string]string{
		"SECRET":        "test-signing-secret",
		"HTTP_PORT":     "8080",
		"DATABASE_URL":  "postgres://u:p@db:5432/users",
		"DATABASE_SSL":  "true",
		"KAFKA_BROKERS": "broker1:9092,broker2:9092",
		"TOKEN_EXPIRY":  "30m",
	})

	cfg, err := Load()

	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, "postgres://u:p@db:5432/users", cfg.DatabaseURL)
	assert.True(t, cfg.DatabaseSSL)
	assert.Equal(t, []string{"broker1:9092", "broker2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 30*time.Minute, cfg.TokenExpiry)
}
