// Package config provides centralized configuration management: a YAML
// settings file with environment overrides. Invalid values fall back to
// the documented defaults rather than erroring.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"flowtrack/internal/timer"
)

const configFileName = "config.yaml"

// Defaults.
const (
	DefaultFlowDivisor          = 5
	DefaultIdleThresholdMinutes = 180
	DefaultCountdownMinutes     = 25
	DefaultTickIntervalMS       = 100
)

// Config holds all runtime settings.
type Config struct {
	// FlowDivisor derives break length: break = work / FlowDivisor.
	FlowDivisor int `yaml:"flow_divisor"`
	// IdleThresholdMinutes flags sessions longer than this as unattended.
	IdleThresholdMinutes int `yaml:"idle_threshold_minutes"`
	// CountdownMinutes is the default countdown target.
	CountdownMinutes int `yaml:"countdown_minutes"`
	// TickIntervalMS is the dashboard re-evaluation interval.
	TickIntervalMS int `yaml:"tick_interval_ms"`
	// DataDir holds the sqlite database. Empty means the user data dir.
	DataDir string `yaml:"data_dir,omitempty"`
	// NoColor disables pretty terminal output.
	NoColor bool `yaml:"no_color,omitempty"`
}

// Default returns the documented defaults.
func Default() Config {
	return Config{
		FlowDivisor:          DefaultFlowDivisor,
		IdleThresholdMinutes: DefaultIdleThresholdMinutes,
		CountdownMinutes:     DefaultCountdownMinutes,
		TickIntervalMS:       DefaultTickIntervalMS,
	}
}

// Load reads the config file at path. A missing file yields defaults; so
// does any out-of-range field.
func Load(path string) (Config, error) {
	cfg := Default()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return applyEnv(cfg), nil
		}
		return applyEnv(cfg), fmt.Errorf("read config file: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return applyEnv(cfg), fmt.Errorf("parse config yaml: %w", err)
	}

	if file.FlowDivisor > 0 {
		cfg.FlowDivisor = file.FlowDivisor
	}
	if file.IdleThresholdMinutes > 0 {
		cfg.IdleThresholdMinutes = file.IdleThresholdMinutes
	}
	if file.CountdownMinutes > 0 {
		cfg.CountdownMinutes = file.CountdownMinutes
	}
	if file.TickIntervalMS > 0 {
		cfg.TickIntervalMS = file.TickIntervalMS
	}
	cfg.DataDir = file.DataDir
	cfg.NoColor = file.NoColor

	return applyEnv(cfg), nil
}

// Save writes the config file, creating its directory if needed.
func Save(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config yaml: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// DefaultPath resolves the config file under the user config dir.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "flowtrack", configFileName), nil
}

func applyEnv(cfg Config) Config {
	e := Env()
	if e.DataDir != "" {
		cfg.DataDir = e.DataDir
	}
	if e.NoColor {
		cfg.NoColor = true
	}
	return cfg
}

// ResolveDataDir returns the directory for the database, creating it.
func (c Config) ResolveDataDir() (string, error) {
	dir := c.DataDir
	if dir == "" {
		base, err := userDataDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "flowtrack")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create data dir: %w", err)
	}
	return dir, nil
}

func userDataDir() (string, error) {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".local", "share"), nil
}

// Engine maps the config onto engine settings.
func (c Config) Engine() timer.Config {
	return timer.Config{
		FlowDivisor:   c.FlowDivisor,
		DefaultTarget: time.Duration(c.CountdownMinutes) * time.Minute,
	}
}

// IdleThreshold is the session flag cutoff.
func (c Config) IdleThreshold() time.Duration {
	return time.Duration(c.IdleThresholdMinutes) * time.Minute
}

// TickInterval is the dashboard tick period.
func (c Config) TickInterval() time.Duration {
	if c.TickIntervalMS <= 0 {
		return DefaultTickIntervalMS * time.Millisecond
	}
	return time.Duration(c.TickIntervalMS) * time.Millisecond
}
