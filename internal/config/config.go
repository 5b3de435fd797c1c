// Package config loads process configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the settings shared by broodcore commands. All fields map to
// BROODCORE_* environment variables.
type Config struct {
	StorageDriver string `env:"STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath    string `env:"SQLITE_PATH"`
	PostgresDSN   string `env:"POSTGRES_DSN"`

	BlobDriver string `env:"BLOB_DRIVER" envDefault:"fs"`
	BlobFSRoot string `env:"BLOB_FS_ROOT"`

	SweepSchedule string `env:"SWEEP_SCHEDULE" envDefault:"@hourly"`
	LookbackDays  int    `env:"SWEEP_LOOKBACK_DAYS" envDefault:"0"`
	LookaheadDays int    `env:"SWEEP_LOOKAHEAD_DAYS" envDefault:"7"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// Load parses the environment with the BROODCORE_ prefix.
func Load() (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "BROODCORE_"}); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}
