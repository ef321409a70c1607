package sim

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Stream is a snapshot of component mass flow rates (kg/s) at one point in the line.
// Streams are values; every stage returns a new one.
type Stream struct {
	Sugar   float64
	Fiber   float64
	Water   float64
	Ethanol float64
}

// Mixture holds the bulk properties derived from a Stream.
type Mixture struct {
	Density  float64 // kg/m³
	FlowRate float64 // m³/s
}

func (s Stream) components() []float64 {
	return []float64{s.Sugar, s.Fiber, s.Water, s.Ethanol}
}

// Total returns the total mass flow.
func (s Stream) Total() float64 {
	return floats.Sum(s.components())
}

// Impurities returns the non-ethanol mass flow.
func (s Stream) Impurities() float64 {
	return s.Sugar + s.Fiber + s.Water
}

// Validate returns a PhysicallyInvalidStateError for the first negative or NaN component.
// stage identifies who produced the stream.
func (s Stream) Validate(stage Stage, input Stream) error {
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"sugar", s.Sugar}, {"fiber", s.Fiber}, {"water", s.Water}, {"ethanol", s.Ethanol},
	} {
		if c.v < 0 || math.IsNaN(c.v) || math.IsInf(c.v, 0) {
			return &PhysicallyInvalidStateError{Stage: stage, Input: input, Component: c.name, Value: c.v}
		}
	}
	return nil
}

// Density is the weighted harmonic mean of the pure-component densities.
func (s Stream) Density(c Constants) (float64, error) {
	total := s.Total()
	if total <= 0 {
		return 0, fmt.Errorf("density of %s: %w", s, ErrDegenerateStream)
	}
	d := c.Densities
	specificVolume := s.Sugar/d.Sugar + s.Fiber/d.Fiber + s.Water/d.Water + s.Ethanol/d.Ethanol
	return total / specificVolume, nil
}

// VolumetricFlowRate returns total mass flow divided by density.
func (s Stream) VolumetricFlowRate(c Constants) (float64, error) {
	density, err := s.Density(c)
	if err != nil {
		return 0, err
	}
	return s.Total() / density, nil
}

// Properties computes density and volumetric flow rate together.
func (s Stream) Properties(c Constants) (Mixture, error) {
	density, err := s.Density(c)
	if err != nil {
		return Mixture{}, err
	}
	return Mixture{Density: density, FlowRate: s.Total() / density}, nil
}

// Purity is the ethanol fraction of the total mass flow.
func (s Stream) Purity() (float64, error) {
	total := s.Total()
	if total <= 0 {
		return 0, fmt.Errorf("purity of %s: %w", s, ErrDegenerateStream)
	}
	return s.Ethanol / total, nil
}

func (s Stream) String() string {
	return fmt.Sprintf("Stream{sugar=%.6g fiber=%.6g water=%.6g ethanol=%.6g}", s.Sugar, s.Fiber, s.Water, s.Ethanol)
}
