package cmd

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ethanol-sim/ethanol-sim/sim"
	"github.com/ethanol-sim/ethanol-sim/sim/sweep"
)

// LayoutConfig is the physical arrangement section of defaults.yaml.
type LayoutConfig struct {
	PipeLengths     []float64 `yaml:"pipe_lengths"` // intake, filter, distiller, dehydrator, outlet (m)
	PumpRating      float64   `yaml:"pump_rating"`  // m of head
	FixedValveGrade *int      `yaml:"fixed_valve_grade,omitempty"`
}

// SweepConfig holds the sweep axes that are not catalog options, and driver defaults.
type SweepConfig struct {
	Diameters   []float64 `yaml:"diameters"`
	ErrorPolicy string    `yaml:"error_policy"`
	Workers     int       `yaml:"workers"`
}

// Config represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type Config struct {
	Version   string        `yaml:"version"`
	Constants sim.Constants `yaml:"constants"`
	Feed      sim.Feed      `yaml:"feed"`
	Catalog   sim.Catalog   `yaml:"catalog"`
	Layout    LayoutConfig  `yaml:"layout"`
	Sweep     SweepConfig   `yaml:"sweep"`
}

// DefaultConfig mirrors the reference plant so that a missing defaults.yaml still runs.
func DefaultConfig() Config {
	layout := sweep.DefaultLayout()
	return Config{
		Version:   "1",
		Constants: sim.DefaultConstants(),
		Feed:      sim.DefaultFeed(),
		Catalog:   sim.DefaultCatalog(),
		Layout: LayoutConfig{
			PipeLengths: layout.PipeLengths[:],
			PumpRating:  layout.PumpRating,
		},
		Sweep: SweepConfig{
			Diameters:   []float64{0.10, 0.11, 0.12, 0.13, 0.14, 0.15},
			ErrorPolicy: string(sweep.PolicyHalt),
		},
	}
}

// loadConfig parses a plant description with strict field checking: typos must cause errors.
func loadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config %s: %w", path, err)
	}
	var cfg Config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Constants.Validate(); err != nil {
		return fmt.Errorf("constants: %w", err)
	}
	if err := c.Feed.Validate(); err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	if err := c.Catalog.Validate(); err != nil {
		return fmt.Errorf("catalog: %w", err)
	}
	if _, err := c.Layout.toLayout(); err != nil {
		return err
	}
	if len(c.Sweep.Diameters) == 0 {
		return fmt.Errorf("sweep.diameters must not be empty")
	}
	for _, d := range c.Sweep.Diameters {
		if !(d > 0) {
			return fmt.Errorf("sweep.diameters: diameter must be positive, got %g", d)
		}
	}
	if !sweep.IsValidPolicy(c.Sweep.ErrorPolicy) {
		return fmt.Errorf("sweep.error_policy: unknown policy %q; valid: halt, skip, record", c.Sweep.ErrorPolicy)
	}
	if c.Sweep.Workers < 0 {
		return fmt.Errorf("sweep.workers must be >= 0, got %d", c.Sweep.Workers)
	}
	return nil
}

func (l LayoutConfig) toLayout() (sweep.Layout, error) {
	var out sweep.Layout
	if len(l.PipeLengths) != sim.NumPipes {
		return out, fmt.Errorf("layout.pipe_lengths: want %d lengths, got %d", sim.NumPipes, len(l.PipeLengths))
	}
	for i, length := range l.PipeLengths {
		if !(length > 0) {
			return out, fmt.Errorf("layout.pipe_lengths[%d] must be positive, got %g", i, length)
		}
		out.PipeLengths[i] = length
	}
	if !(l.PumpRating > 0) {
		return out, fmt.Errorf("layout.pump_rating must be positive, got %g", l.PumpRating)
	}
	out.PumpRating = l.PumpRating
	if l.FixedValveGrade != nil {
		g := *l.FixedValveGrade
		out.FixedValveGrade = &g
	}
	return out, nil
}

// Space builds the sweep space from the catalog and diameters.
func (c Config) Space() *sweep.Space {
	return sweep.NewSpace(c.Catalog, c.Sweep.Diameters)
}
