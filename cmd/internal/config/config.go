// Package config loads the binaries' configuration from the environment.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config is the shared configuration of the simulator and the study runner.
type Config struct {
	// Enabled is the initial state of the time-warp effect.
	Enabled bool `env:"ATW_ENABLED" envDefault:"true"`
	// HighFPS is the cadence while correction is enabled.
	HighFPS int `env:"ATW_HIGH_FPS" envDefault:"90"`
	// LowFPS is the cadence while correction is disabled.
	LowFPS int `env:"ATW_LOW_FPS" envDefault:"45"`

	WindowWidth  int `env:"ATW_WINDOW_WIDTH"  envDefault:"1280"`
	WindowHeight int `env:"ATW_WINDOW_HEIGHT" envDefault:"720"`

	// StudyDB is the SQLite file study results are written to. Empty disables persistence.
	StudyDB string `env:"ATW_STUDY_DB" envDefault:"atw-study.db"`
	// StudyWorkers bounds concurrent study sessions. Zero means one per CPU.
	StudyWorkers int `env:"ATW_STUDY_WORKERS" envDefault:"0"`

	// OtelEndpoint is the OTLP/HTTP trace endpoint. Empty disables tracing.
	OtelEndpoint string `env:"ATW_OTEL_ENDPOINT"`
}

// ParseEnv loads configuration from environment variables.
//
// Parameters:
//   - target: a pointer to a struct with env tags
//
// Returns:
//   - error: a parse error, or nil
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Load parses Config from the environment and checks the cadence pair.
//
// Returns:
//   - Config: the loaded configuration
//   - error: a parse or validation error
func Load() (Config, error) {
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	if cfg.HighFPS <= 0 || cfg.LowFPS <= 0 {
		return Config{}, fmt.Errorf("frame rates must be positive: high=%d low=%d", cfg.HighFPS, cfg.LowFPS)
	}
	if cfg.WindowWidth <= 0 || cfg.WindowHeight <= 0 {
		return Config{}, fmt.Errorf("window size must be positive: %dx%d", cfg.WindowWidth, cfg.WindowHeight)
	}
	if cfg.StudyWorkers < 0 {
		return Config{}, fmt.Errorf("study workers must not be negative: %d", cfg.StudyWorkers)
	}
	return cfg, nil
}
