package config

import (
	"errors"
	"os"
	"strconv"
	"time"
)

// Config holds all builder settings, populated from environment variables.
// Object-store credentials are not part of Config: the storage client reads
// them from the ambient environment (AWS_* variables, optionally a named
// profile).
type Config struct {
	LogLevel  string
	LogFormat string

	// Object-store routing for s3:// metadata paths.
	S3Endpoint string
	AWSRegion  string
	AWSProfile string

	// Dataset write retry policy.
	WriteRetries int
	WriteBackoff time.Duration
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	retries, err := parseWriteRetries()
	if err != nil {
		return nil, err
	}

	backoffStr := envOrDefault("WRITE_BACKOFF", "5s")
	backoff, err := time.ParseDuration(backoffStr)
	if err != nil || backoff <= 0 {
		return nil, errors.New("invalid WRITE_BACKOFF")
	}

	cfg := &Config{
		LogLevel:  envOrDefault("LOG_LEVEL", "info"),
		LogFormat: envOrDefault("LOG_FORMAT", "json"),

		S3Endpoint: envOrDefault("S3_ENDPOINT", "s3.amazonaws.com"),
		AWSRegion:  os.Getenv("AWS_REGION"),
		AWSProfile: os.Getenv("AWS_PROFILE"),

		WriteRetries: retries,
		WriteBackoff: backoff,
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "text" {
		return nil, errors.New("LOG_FORMAT must be json or text")
	}

	return cfg, nil
}

func parseWriteRetries() (int, error) {
	s := os.Getenv("WRITE_RETRIES")
	if s == "" {
		return 5, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, errors.New("invalid WRITE_RETRIES")
	}
	return n, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
