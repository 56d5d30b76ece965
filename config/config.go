// Package config loads front-end settings from an optional YAML file and
// PARLEY_* environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v2"
)

// Clock modes.
const (
	ClockVirtual  = "virtual"
	ClockRealtime = "realtime"
)

type Config struct {
	Audio       AudioConfig       `yaml:"audio"`
	Clock       ClockConfig       `yaml:"clock"`
	Interaction InteractionConfig `yaml:"interaction"`
	Trace       bool              `yaml:"trace" env:"PARLEY_TRACE"`
}

type AudioConfig struct {
	// PlayFromManager plays clips on the engine's own channel instead of
	// publishing them as events.
	PlayFromManager bool `yaml:"play_from_manager" env:"PARLEY_AUDIO_PLAY_FROM_MANAGER"`
}

type ClockConfig struct {
	// Mode is virtual or realtime. Empty lets the front end choose.
	Mode string        `yaml:"mode" env:"PARLEY_CLOCK_MODE"`
	Tick time.Duration `yaml:"tick" env:"PARLEY_CLOCK_TICK"`
}

type InteractionConfig struct {
	// PlayerTag overrides the game's player tag. Empty keeps the game's,
	// then "Player".
	PlayerTag string `yaml:"player_tag" env:"PARLEY_PLAYER_TAG"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Audio: AudioConfig{PlayFromManager: true},
		Clock: ClockConfig{Tick: 50 * time.Millisecond},
	}
}

// Load starts from Default, applies the YAML file at path (if path is not
// empty) and then the environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := ParseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseEnv overrides target fields from environment variables. Unset
// variables leave fields untouched.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	switch c.Clock.Mode {
	case "", ClockVirtual, ClockRealtime:
	default:
		return fmt.Errorf("clock.mode: unknown mode %q (want %s or %s)", c.Clock.Mode, ClockVirtual, ClockRealtime)
	}
	if c.Clock.Tick <= 0 {
		return fmt.Errorf("clock.tick: must be positive, got %s", c.Clock.Tick)
	}
	return nil
}

// ClockMode returns the configured mode, or fallback when none is set.
func (c *Config) ClockMode(fallback string) string {
	if c.Clock.Mode == "" {
		return fallback
	}
	return c.Clock.Mode
}
