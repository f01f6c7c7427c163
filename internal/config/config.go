// Package config loads service configuration from an optional YAML file with
// environment variable overrides.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the runtime configuration for the pairing service.
type Config struct {
	Environment string         `yaml:"environment"`
	HTTP        HTTPConfig     `yaml:"http"`
	Database    DatabaseConfig `yaml:"database"`
	Matching    MatchingConfig `yaml:"matching"`
}

type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

type DatabaseConfig struct {
	DSN string `yaml:"dsn"`
}

// MatchingConfig overrides the pairing thresholds. Zero values keep the
// built-in defaults.
type MatchingConfig struct {
	MaxTimeDiffMS     int64   `yaml:"max_time_diff_ms"`
	MaxDistanceMeters float64 `yaml:"max_distance_meters"`
}

// IsProduction reports whether the service runs with production hardening.
func (c Config) IsProduction() bool {
	return strings.EqualFold(strings.TrimSpace(c.Environment), "production")
}

// Load reads the config file named by PAIRLINK_CONFIG (if any), then applies
// environment overrides and defaults.
func Load() (Config, error) {
	cfg := Config{
		Environment: "development",
		HTTP:        HTTPConfig{Addr: ":8080"},
	}

	if path := strings.TrimSpace(os.Getenv("PAIRLINK_CONFIG")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, err
		}
	}

	if value := strings.TrimSpace(os.Getenv("PAIRLINK_ENVIRONMENT")); value != "" {
		cfg.Environment = value
	}
	if value := strings.TrimSpace(os.Getenv("PAIRLINK_HTTP_ADDR")); value != "" {
		cfg.HTTP.Addr = value
	}
	if value := strings.TrimSpace(os.Getenv("DATABASE_URL")); value != "" {
		cfg.Database.DSN = value
	}
	if value := strings.TrimSpace(os.Getenv("PAIRLINK_MATCH_MAX_TIME_DIFF_MS")); value != "" {
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return Config{}, errors.New("invalid_max_time_diff_ms")
		}
		cfg.Matching.MaxTimeDiffMS = parsed
	}
	if value := strings.TrimSpace(os.Getenv("PAIRLINK_MATCH_MAX_DISTANCE_METERS")); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return Config{}, errors.New("invalid_max_distance_meters")
		}
		cfg.Matching.MaxDistanceMeters = parsed
	}

	if cfg.Database.DSN == "" {
		return Config{}, errors.New("missing_database_dsn")
	}
	return cfg, nil
}
