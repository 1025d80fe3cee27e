// Package config loads benchmark run profiles. Values resolve in order:
// built-in defaults, environment variables, TOML profile file, flags.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/xyproto/env/v2"

	"github.com/voxfall/colbench/harness"
	"github.com/voxfall/colbench/workload"
)

// Run holds the parameters of one benchmark session.
type Run struct {
	Frames       int    `toml:"frames"`
	Columns      int    `toml:"columns"`
	MinCount     int    `toml:"min_count"`
	MaxCount     int    `toml:"max_count"`
	Distribution string `toml:"distribution"`
	Seed         int64  `toml:"seed"`
	Colormaps    int    `toml:"colormaps"`
	SwitchEvery  int    `toml:"switch_every"`
	IntervalMs   int    `toml:"interval_ms"`
	Log          string `toml:"log"`
	Mode         string `toml:"mode"`
	AutoSwitch   bool   `toml:"auto_switch"`
}

// Default returns the built-in profile with environment overrides applied.
func Default() Run {
	return Run{
		Frames:       env.Int("COLBENCH_FRAMES", 600),
		Columns:      320,
		MinCount:     4,
		MaxCount:     160,
		Distribution: "power-law",
		Seed:         int64(env.Int("COLBENCH_SEED", 1)),
		Colormaps:    4,
		SwitchEvery:  150,
		IntervalMs:   1000,
		Log:          env.Str("COLBENCH_LOG", "colbench.csv"),
		Mode:         "jit",
		AutoSwitch:   true,
	}
}

// Load reads a TOML profile at path on top of base. Keys absent from the
// file keep their base values.
func Load(path string, base Run) (Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read profile %s: %w", path, err)
	}

	cfg := base
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return base, fmt.Errorf("parse profile %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the profile for values the benchmark cannot run with.
func (r Run) Validate() error {
	if r.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", r.Frames)
	}
	if r.Columns <= 0 {
		return fmt.Errorf("columns must be positive, got %d", r.Columns)
	}
	if r.MinCount < 0 {
		return fmt.Errorf("min_count must not be negative, got %d", r.MinCount)
	}
	if r.MaxCount < r.MinCount {
		return fmt.Errorf("max_count %d is below min_count %d", r.MaxCount, r.MinCount)
	}
	if r.MaxCount >= workload.Height {
		return fmt.Errorf("max_count %d exceeds the screen height %d", r.MaxCount, workload.Height)
	}
	if r.Colormaps < 1 {
		return fmt.Errorf("colormaps must be at least 1, got %d", r.Colormaps)
	}
	if r.IntervalMs <= 0 {
		return fmt.Errorf("interval_ms must be positive, got %d", r.IntervalMs)
	}

	switch r.Distribution {
	case "uniform", "power-law", "exponential":
	default:
		return fmt.Errorf("unknown distribution %q", r.Distribution)
	}

	if _, err := harness.ParseMode(r.Mode); err != nil {
		return err
	}

	return nil
}

// Interval returns the auto-switch period.
func (r Run) Interval() time.Duration {
	return time.Duration(r.IntervalMs) * time.Millisecond
}

// Workload returns the workload configuration derived from the profile.
func (r Run) Workload() workload.Config {
	return workload.Config{
		Frames:       r.Frames,
		Columns:      r.Columns,
		MinCount:     r.MinCount,
		MaxCount:     r.MaxCount,
		Distribution: r.Distribution,
		Seed:         r.Seed,
		Colormaps:    r.Colormaps,
		SwitchEvery:  r.SwitchEvery,
	}
}
