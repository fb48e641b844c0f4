package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hf-eolus/sar-catalog/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LOG_LEVEL", "LOG_FORMAT",
		"S3_ENDPOINT", "AWS_REGION", "AWS_PROFILE",
		"WRITE_RETRIES", "WRITE_BACKOFF",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "s3.amazonaws.com", cfg.S3Endpoint)
	assert.Equal(t, 5, cfg.WriteRetries)
	assert.Equal(t, 5*time.Second, cfg.WriteBackoff)
}

func TestLoad_Custom(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("S3_ENDPOINT", "localhost:9000")
	t.Setenv("AWS_REGION", "eu-west-3")
	t.Setenv("AWS_PROFILE", "catalog")
	t.Setenv("WRITE_RETRIES", "8")
	t.Setenv("WRITE_BACKOFF", "250ms")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
	assert.Equal(t, "localhost:9000", cfg.S3Endpoint)
	assert.Equal(t, "eu-west-3", cfg.AWSRegion)
	assert.Equal(t, "catalog", cfg.AWSProfile)
	assert.Equal(t, 8, cfg.WriteRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.WriteBackoff)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "bad retries", key: "WRITE_RETRIES", value: "zero"},
		{name: "negative retries", key: "WRITE_RETRIES", value: "-1"},
		{name: "bad backoff", key: "WRITE_BACKOFF", value: "fast"},
		{name: "negative backoff", key: "WRITE_BACKOFF", value: "-5s"},
		{name: "bad log format", key: "LOG_FORMAT", value: "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			_, err := config.Load()
			require.Error(t, err)
		})
	}
}
