// Package config layers defaults, an optional YAML file and HOOPSTATS_*
// environment variables into a validated Config.
package config

import (
	"os"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix = "HOOPSTATS_"
	// EnvFile names the YAML file to load when no explicit path is given.
	EnvFile = EnvPrefix + "CONFIG"
)

// Config holds every tunable of the CLI.
type Config struct {
	LogLevel  string `koanf:"log_level" validate:"oneof=debug info warn error"`
	LogFormat string `koanf:"log_format" validate:"oneof=json console"`

	PlayersPath  string `koanf:"players_path" validate:"required"`
	TeamsPath    string `koanf:"teams_path" validate:"required"`
	ArtifactPath string `koanf:"artifact_path" validate:"required"`
	// MetricsPath receives a Prometheus textfile after each build; empty disables it.
	MetricsPath string `koanf:"metrics_path"`

	FetchTimeout  time.Duration `koanf:"fetch_timeout" validate:"gt=0"`
	FetchRetries  int           `koanf:"fetch_retries" validate:"gte=0,lte=10"`
	FetchBackoff  time.Duration `koanf:"fetch_backoff" validate:"gte=0"`
	FetchWorkers  int           `koanf:"fetch_workers" validate:"gte=0"`
	FetchMaxBytes int64         `koanf:"fetch_max_bytes" validate:"gt=0"`

	// ArtifactMaxAge makes the reader recompute once the artifact is older; 0 never expires.
	ArtifactMaxAge time.Duration `koanf:"artifact_max_age" validate:"gte=0"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:      "info",
		LogFormat:     "console",
		PlayersPath:   "data/players.json",
		TeamsPath:     "data/teams.json",
		ArtifactPath:  "data/leaders.json",
		FetchTimeout:  20 * time.Second,
		FetchRetries:  1,
		FetchMaxBytes: 8 << 20,
	}
}

// Load builds a Config by layering, lowest precedence first:
//  1. defaults
//  2. YAML file at path, or at $HOOPSTATS_CONFIG when path is empty
//  3. HOOPSTATS_* environment variables
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path == "" {
		path = os.Getenv(EnvFile)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, errors.Wrapf(err, "load config %s", path)
		}
	}

	// HOOPSTATS_FETCH_RETRIES -> fetch_retries
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.TrimPrefix(strings.ToLower(s), strings.ToLower(EnvPrefix))
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, errors.Wrap(err, "load env")
	}

	cfg := *Default()
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return errors.Wrap(err, "invalid config")
	}
	return nil
}
