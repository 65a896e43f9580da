// Package config loads the face configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"bgmatrix/internal/units"

	"gopkg.in/yaml.v3"
)

// Config is the top-level application configuration.
type Config struct {
	Units units.Unit `yaml:"units"`
	// StaleAfter is the reading age after which text is dimmed.
	StaleAfter time.Duration `yaml:"stale_after"`
	// Refresh is how often the face is redrawn when no new reading arrives.
	Refresh time.Duration `yaml:"refresh"`

	Width  int `yaml:"width"`
	Height int `yaml:"height"`
	Scale  int `yaml:"scale"`

	// HistorySize is the number of readings the collector keeps.
	HistorySize int `yaml:"history_size"`
	// SeedFile optionally preloads readings (see collector.LoadFile).
	SeedFile string `yaml:"seed_file"`

	MetricsAddr string `yaml:"metrics_addr"`
	Debug       bool   `yaml:"debug"`

	Sim SimConfig `yaml:"sim"`
}

// SimConfig drives the simulated reading source.
type SimConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Seed     int64         `yaml:"seed"`
	StartSGV int           `yaml:"start_sgv"`
	Interval time.Duration `yaml:"interval"`
	// Speed compresses sensor time: 60 turns a 5 minute interval into 5 seconds.
	Speed float64 `yaml:"speed"`
	// DropRate is the probability that a reading goes missing, which lets the
	// freshness blocks and stale color show up.
	DropRate float64 `yaml:"drop_rate"`
}

// Defaults returns a Config with sane defaults.
func Defaults() Config {
	return Config{
		Units:       units.MgDL,
		StaleAfter:  11 * time.Minute,
		Refresh:     time.Second,
		Width:       64,
		Height:      64,
		Scale:       8,
		HistorySize: 36,
		Sim: SimConfig{
			Enabled:  true,
			Seed:     1,
			StartSGV: 120,
			Interval: 5 * time.Minute,
			Speed:    1,
		},
	}
}

// Load reads a YAML config file on top of Defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %q: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %q: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, nil
}

// Validate rejects values the face cannot run with.
func (c Config) Validate() error {
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("invalid matrix size %dx%d", c.Width, c.Height)
	}
	if c.StaleAfter <= 0 {
		return fmt.Errorf("stale_after must be positive, got %v", c.StaleAfter)
	}
	if c.Sim.Enabled && c.Sim.Interval <= 0 {
		return fmt.Errorf("sim.interval must be positive, got %v", c.Sim.Interval)
	}
	if c.Sim.Speed < 0 {
		return fmt.Errorf("sim.speed must not be negative, got %v", c.Sim.Speed)
	}
	if c.Sim.DropRate < 0 || c.Sim.DropRate >= 1 {
		return fmt.Errorf("sim.drop_rate must be in [0, 1), got %v", c.Sim.DropRate)
	}
	return nil
}
