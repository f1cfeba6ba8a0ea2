// Package config defines the tunable parameters of the lidar engine and
// loads overrides from a YAML file. Every empirically-chosen constant
// (decay exponent, jitter ratio, sweep grid dimensions) lives here so the
// visual design can be adjusted without touching engine code.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Points struct {
	// Point buffer capacity. Once full, new writes overwrite the oldest points.
	Capacity int `yaml:"capacity"`

	// Max points drained from the emission queue into the buffer per frame.
	PerFrame int `yaml:"per_frame"`

	// Default lifetime of a sampled point, in seconds.
	Lifetime float64 `yaml:"lifetime"`
}

type Decay struct {
	// Falloff exponent applied to the remaining-lifetime ratio.
	Exponent float64 `yaml:"exponent"`

	// Minimum intensity ratio for persistent points.
	PersistentFloor float64 `yaml:"persistent_floor"`

	// Color deltas below this threshold are not rewritten or marked dirty.
	Epsilon float64 `yaml:"epsilon"`
}

type Density struct {
	// Edge length of a density cell, in world units.
	CellSize float64 `yaml:"cell_size"`

	// Max points accepted per density cell.
	MaxPerCell int `yaml:"max_per_cell"`
}

type Scan struct {
	// Per-sample angular jitter as a fraction of sample spacing.
	Jitter float64 `yaml:"jitter"`

	// Fraction of each row's hits retained for the transient beam visual.
	BeamRetention float64 `yaml:"beam_retention"`

	// Max expected ray travel distance, in world units.
	MaxDistance float64 `yaml:"max_distance"`
}

type Sweep struct {
	// Azimuth resolution of the continuous scan dome.
	AzimuthSteps int `yaml:"azimuth_steps"`

	// Number of elevation layers in the continuous scan dome.
	Layers int `yaml:"layers"`
}

type Index struct {
	// Per-frame wall time budget for acceleration structure builds, in ms.
	TimeBudgetMs float64 `yaml:"time_budget_ms"`

	// Min number of triangles per BVH leaf.
	MinLeafItems int `yaml:"min_leaf_items"`
}

type Config struct {
	Points  Points  `yaml:"points"`
	Decay   Decay   `yaml:"decay"`
	Density Density `yaml:"density"`
	Scan    Scan    `yaml:"scan"`
	Sweep   Sweep   `yaml:"sweep"`
	Index   Index   `yaml:"index"`
}

// Default returns the tuning set the game ships with.
func Default() Config {
	return Config{
		Points: Points{
			Capacity: 200000,
			PerFrame: 2000,
			Lifetime: 60.0,
		},
		Decay: Decay{
			Exponent:        2.0,
			PersistentFloor: 0.35,
			Epsilon:         0.01,
		},
		Density: Density{
			CellSize:   0.05,
			MaxPerCell: 4,
		},
		Scan: Scan{
			Jitter:        0.35,
			BeamRetention: 0.25,
			MaxDistance:   100.0,
		},
		Sweep: Sweep{
			AzimuthSteps: 720,
			Layers:       16,
		},
		Index: Index{
			TimeBudgetMs: 2.0,
			MinLeafItems: 8,
		},
	}
}

// Load overlays the YAML file at path onto the default tuning set. A
// missing file is not an error; the defaults are returned as-is.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("config: %v", err)
	}

	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: malformed %s: %v", path, err)
	}

	cfg.Clamp()
	return cfg, nil
}

// Clamp forces out-of-range values back into their valid domains.
func (c *Config) Clamp() {
	if c.Points.Capacity < 1 {
		c.Points.Capacity = 1
	}
	if c.Points.PerFrame < 1 {
		c.Points.PerFrame = 1
	}
	if c.Points.Lifetime <= 0 {
		c.Points.Lifetime = 1.0
	}
	if c.Decay.Exponent <= 0 {
		c.Decay.Exponent = 1.0
	}
	c.Decay.PersistentFloor = clamp01(c.Decay.PersistentFloor)
	c.Decay.Epsilon = clamp01(c.Decay.Epsilon)
	if c.Density.CellSize <= 0 {
		c.Density.CellSize = 0.05
	}
	if c.Density.MaxPerCell < 1 {
		c.Density.MaxPerCell = 1
	}
	c.Scan.Jitter = clamp01(c.Scan.Jitter)
	c.Scan.BeamRetention = clamp01(c.Scan.BeamRetention)
	if c.Scan.MaxDistance <= 0 {
		c.Scan.MaxDistance = 100.0
	}
	if c.Sweep.AzimuthSteps < 1 {
		c.Sweep.AzimuthSteps = 1
	}
	if c.Sweep.Layers < 1 {
		c.Sweep.Layers = 1
	}
	if c.Index.TimeBudgetMs < 0 {
		c.Index.TimeBudgetMs = 0
	}
	if c.Index.MinLeafItems < 1 {
		c.Index.MinLeafItems = 1
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
