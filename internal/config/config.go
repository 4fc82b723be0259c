package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/pitwall/internal/telemetry/lookup"
	"github.com/banshee-data/pitwall/internal/telemetry/packet"
)

// DefaultConfigPath is the path to the canonical defaults file.
const DefaultConfigPath = "config/pitwall.defaults.json"

// Config holds the ingestion and analysis tuning knobs. Every field is
// optional; the Get* methods supply defaults for anything unset, so partial
// files are safe.
type Config struct {
	// Ingestion
	RateInterval  *string           `json:"rate_interval,omitempty"`  // duration string like "1s"
	RateIntervals map[string]string `json:"rate_intervals,omitempty"` // per kind name, e.g. {"lap_data": "500ms"}
	FlushInterval *string           `json:"flush_interval,omitempty"`
	ReadTimeout   *string           `json:"read_timeout,omitempty"`

	// Analysis
	CompoundScheme  *string  `json:"compound_scheme,omitempty"` // "visual" or "actual"
	PitLoss         *float64 `json:"pit_loss,omitempty"`        // seconds per stop in the optimizer
	JoinTolerance   *float64 `json:"join_tolerance,omitempty"`  // seconds between lap and status rows
	MinStintSamples *int     `json:"min_stint_samples,omitempty"`
	Season          *int     `json:"season,omitempty"`
	EmitRetirements *bool    `json:"emit_retirements,omitempty"`
	CarSeed         *int64   `json:"car_seed,omitempty"`

	// Output
	IndentBraces *bool `json:"indent_braces,omitempty"`
}

// Empty returns a Config with every field unset.
func Empty() *Config {
	return &Config{}
}

// LoadConfig loads a Config from a JSON file. The path must have a .json
// extension and the file must be under 1MB.
func LoadConfig(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching parent
// directories so it works from any package's tests. Panics on failure.
func MustLoadDefaultConfig() *Config {
	for _, prefix := range []string{"", "../", "../../", "../../../", "../../../../"} {
		if cfg, err := LoadConfig(prefix + DefaultConfigPath); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

func validDuration(name string, v *string) error {
	if v == nil || *v == "" {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("invalid %s '%s': %w", name, *v, err)
	}
	if d < 0 {
		return fmt.Errorf("%s must be non-negative, got %s", name, *v)
	}
	return nil
}

// Validate checks that the configuration values are usable.
func (c *Config) Validate() error {
	if err := validDuration("rate_interval", c.RateInterval); err != nil {
		return err
	}
	for name, v := range c.RateIntervals {
		if _, ok := packet.ParseKind(name); !ok {
			return fmt.Errorf("rate_intervals: unknown packet kind %q", name)
		}
		if err := validDuration("rate_intervals."+name, &v); err != nil {
			return err
		}
	}
	if err := validDuration("flush_interval", c.FlushInterval); err != nil {
		return err
	}
	if err := validDuration("read_timeout", c.ReadTimeout); err != nil {
		return err
	}
	if c.CompoundScheme != nil {
		if _, err := lookup.ParseScheme(*c.CompoundScheme); err != nil {
			return err
		}
	}
	if c.PitLoss != nil && *c.PitLoss < 0 {
		return fmt.Errorf("pit_loss must be non-negative, got %f", *c.PitLoss)
	}
	if c.JoinTolerance != nil && *c.JoinTolerance < 0 {
		return fmt.Errorf("join_tolerance must be non-negative, got %f", *c.JoinTolerance)
	}
	if c.MinStintSamples != nil && *c.MinStintSamples < 1 {
		return fmt.Errorf("min_stint_samples must be at least 1, got %d", *c.MinStintSamples)
	}
	return nil
}

func durationOr(v *string, def time.Duration) time.Duration {
	if v == nil || *v == "" {
		return def
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return def
	}
	return d
}

// GetRateInterval returns the default minimum spacing between accepted
// packets of one kind.
func (c *Config) GetRateInterval() time.Duration {
	return durationOr(c.RateInterval, time.Second)
}

// GetRateIntervals returns the per-kind overrides.
func (c *Config) GetRateIntervals() map[packet.Kind]time.Duration {
	out := make(map[packet.Kind]time.Duration, len(c.RateIntervals))
	for name, v := range c.RateIntervals {
		if k, ok := packet.ParseKind(name); ok {
			out[k] = durationOr(&v, c.GetRateInterval())
		}
	}
	return out
}

// GetFlushInterval returns how often sinks are flushed during collection.
func (c *Config) GetFlushInterval() time.Duration {
	return durationOr(c.FlushInterval, 5*time.Second)
}

// GetReadTimeout returns the socket read deadline used by the receive loop.
func (c *Config) GetReadTimeout() time.Duration {
	return durationOr(c.ReadTimeout, 100*time.Millisecond)
}

func (c *Config) GetCompoundScheme() lookup.CompoundScheme {
	if c.CompoundScheme == nil {
		return lookup.SchemeVisual
	}
	s, err := lookup.ParseScheme(*c.CompoundScheme)
	if err != nil {
		return lookup.SchemeVisual
	}
	return s
}

func (c *Config) GetPitLoss() float64 {
	if c.PitLoss == nil {
		return 23.0
	}
	return *c.PitLoss
}

func (c *Config) GetJoinTolerance() float64 {
	if c.JoinTolerance == nil {
		return 1.0
	}
	return *c.JoinTolerance
}

func (c *Config) GetMinStintSamples() int {
	if c.MinStintSamples == nil {
		return 3
	}
	return *c.MinStintSamples
}

func (c *Config) GetSeason() int {
	if c.Season == nil {
		return 2025
	}
	return *c.Season
}

// GetEmitRetirements reports whether detected retirements are written to
// the event parameters. Off by default so the simulator randomises them.
func (c *Config) GetEmitRetirements() bool {
	if c.EmitRetirements == nil {
		return false
	}
	return *c.EmitRetirements
}

func (c *Config) GetCarSeed() int64 {
	if c.CarSeed == nil {
		return 1
	}
	return *c.CarSeed
}

func (c *Config) GetIndentBraces() bool {
	if c.IndentBraces == nil {
		return false
	}
	return *c.IndentBraces
}
