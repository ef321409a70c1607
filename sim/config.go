package sim

import (
	"fmt"
	"math"
)

// Densities holds pure-component densities in kg/m³.
type Densities struct {
	Sugar   float64 `yaml:"sugar"`
	Fiber   float64 `yaml:"fiber"`
	Water   float64 `yaml:"water"`
	Ethanol float64 `yaml:"ethanol"`
}

// Stoichiometry groups the fermentation mass yields per unit of converted sugar.
type Stoichiometry struct {
	EthanolYield float64 `yaml:"ethanol_yield"` // kg ethanol per kg sugar converted
	CO2Yield     float64 `yaml:"co2_yield"`     // kg CO₂ per kg sugar converted
}

// Discretization maps continuous equipment sizes onto lookup-table rows.
// index = round(value × Scale) − Offset; pump ratings use rating / RatingStep − RatingOffset.
type Discretization struct {
	DiameterScale  float64 `yaml:"diameter_scale"`
	DiameterOffset int     `yaml:"diameter_offset"`
	RatingStep     float64 `yaml:"rating_step"`
	RatingOffset   int     `yaml:"rating_offset"`
}

// Constants groups every physical and discretization constant used by the mixture model,
// the loss model, and the equipment cost model.
type Constants struct {
	Densities      Densities      `yaml:"densities"`
	Gravity        float64        `yaml:"gravity"` // m/s²
	Stoichiometry  Stoichiometry  `yaml:"stoichiometry"`
	Discretization Discretization `yaml:"discretization"`
}

// DefaultConstants returns the calibrated plant constants.
func DefaultConstants() Constants {
	return Constants{
		Densities:     Densities{Sugar: 1599, Fiber: 1311, Water: 977, Ethanol: 789},
		Gravity:       9.80,
		Stoichiometry: Stoichiometry{EthanolYield: 0.51, CO2Yield: 0.49},
		Discretization: Discretization{
			DiameterScale:  100,
			DiameterOffset: 10,
			RatingStep:     3,
			RatingOffset:   2,
		},
	}
}

// Validate rejects constants that would make the mixture or loss model undefined.
func (c Constants) Validate() error {
	positives := map[string]float64{
		"densities.sugar":               c.Densities.Sugar,
		"densities.fiber":               c.Densities.Fiber,
		"densities.water":               c.Densities.Water,
		"densities.ethanol":             c.Densities.Ethanol,
		"gravity":                       c.Gravity,
		"discretization.diameter_scale": c.Discretization.DiameterScale,
		"discretization.rating_step":    c.Discretization.RatingStep,
	}
	for name, v := range positives {
		if err := validateFinitePositive(name, v); err != nil {
			return err
		}
	}
	y := c.Stoichiometry
	if y.EthanolYield < 0 || y.CO2Yield < 0 || math.Abs(y.EthanolYield+y.CO2Yield-1) > 1e-9 {
		return fmt.Errorf("stoichiometry yields must be non-negative and sum to 1, got ethanol=%g co2=%g",
			y.EthanolYield, y.CO2Yield)
	}
	return nil
}

const (
	litresPerGallon = 3.78541
	secondsPerDay   = 24 * 60 * 60
)

// Feed describes the slurry entering the intake pump.
type Feed struct {
	GallonsPerDay float64 `yaml:"gallons_per_day"`
	SugarFraction float64 `yaml:"sugar_fraction"` // volume fraction
	FiberFraction float64 `yaml:"fiber_fraction"` // volume fraction
	WaterFraction float64 `yaml:"water_fraction"` // volume fraction
}

// DefaultFeed is the reference plant's intake: 835200 gal/day of a 20/20/60 slurry.
func DefaultFeed() Feed {
	return Feed{GallonsPerDay: 835200, SugarFraction: 0.20, FiberFraction: 0.20, WaterFraction: 0.60}
}

// Validate checks the feed rate is positive and the volume fractions form a partition.
func (f Feed) Validate() error {
	if err := validateFinitePositive("feed.gallons_per_day", f.GallonsPerDay); err != nil {
		return err
	}
	for name, v := range map[string]float64{
		"feed.sugar_fraction": f.SugarFraction,
		"feed.fiber_fraction": f.FiberFraction,
		"feed.water_fraction": f.WaterFraction,
	} {
		if math.IsNaN(v) || v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0, 1], got %f", name, v)
		}
	}
	if sum := f.SugarFraction + f.FiberFraction + f.WaterFraction; math.Abs(sum-1) > 1e-9 {
		return fmt.Errorf("feed volume fractions must sum to 1, got %f", sum)
	}
	return nil
}

// VolumetricFlowRate returns the feed rate in m³/s.
func (f Feed) VolumetricFlowRate() float64 {
	return f.GallonsPerDay * litresPerGallon / 1000 / secondsPerDay
}

// Stream converts the feed into component mass flows (kg/s).
func (f Feed) Stream(c Constants) Stream {
	q := f.VolumetricFlowRate()
	return Stream{
		Sugar: q * f.SugarFraction * c.Densities.Sugar,
		Fiber: q * f.FiberFraction * c.Densities.Fiber,
		Water: q * f.WaterFraction * c.Densities.Water,
	}
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}
