// Package config loads process configuration from the environment and
// the region-of-interest definitions from disk.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds everything tunable from the environment. Region
// polygons and the annotations path come from flags and files; secrets
// and policy knobs come from here.
type Config struct {
	SlackToken     string   `env:"SLACK_TOKEN"`
	SlackChannel   string   `env:"SLACK_CHANNEL"`
	MaxFrameDiff   int      `env:"VIGIL_MAX_FRAME_DIFF" envDefault:"1"`
	DBPath         string   `env:"VIGIL_DB_PATH" envDefault:"vigil.db"`
	ListenAddr     string   `env:"VIGIL_LISTEN_ADDR" envDefault:"localhost:8080"`
	OutDir         string   `env:"VIGIL_OUT_DIR" envDefault:"out"`
	TrackedClasses []string `env:"VIGIL_TRACKED_CLASSES" envSeparator:"," envDefault:"car,person,truck"`
}

// Load parses and validates configuration from the environment.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate enforces startup invariants so the process fails before any
// frame is processed rather than at notify time.
func (c *Config) Validate() error {
	if c.SlackToken != "" && c.SlackChannel == "" {
		return fmt.Errorf("SLACK_CHANNEL is required when SLACK_TOKEN is set")
	}
	if c.MaxFrameDiff < 0 {
		return fmt.Errorf("VIGIL_MAX_FRAME_DIFF must be >= 0, got %d", c.MaxFrameDiff)
	}
	if len(c.TrackedClasses) == 0 {
		return fmt.Errorf("VIGIL_TRACKED_CLASSES must not be empty")
	}
	return nil
}
