package sim

import (
	"fmt"
	"math"
)

// Fixed per-grade performance lookups. Grade 0 is the cheapest tier.
var (
	pumpEfficiencies     = []float64{0.80, 0.83, 0.86, 0.89, 0.92}
	pipeFrictionFactors  = []float64{0.05, 0.03, 0.02, 0.01, 0.005, 0.002}
	valveFlowCoefficient = []float64{800, 700, 600, 500}
)

// Grade counts, as exposed to the sweep.
const (
	PumpGrades  = 5
	PipeGrades  = 6
	ValveGrades = 4
)

func gradeLookup(name string, values []float64, grade int) (float64, error) {
	if grade < 0 || grade >= len(values) {
		return 0, &ConfigurationRangeError{
			Table: name, Axis: "grade", Value: float64(grade),
			Index: grade, Min: 0, Max: len(values) - 1,
		}
	}
	return values[grade], nil
}

// DiameterIndex maps a diameter (m) onto a table row: round(d × scale) − offset.
func DiameterIndex(c Constants, diameter float64) int {
	return int(math.Round(diameter*c.Discretization.DiameterScale)) - c.Discretization.DiameterOffset
}

// RatingIndex maps a pump performance rating (m of head) onto a table row: rating / step − offset.
func RatingIndex(c Constants, rating float64) int {
	return int(math.Round(rating/c.Discretization.RatingStep)) - c.Discretization.RatingOffset
}

// Pump is a resolved intake pump. Immutable after construction.
type Pump struct {
	Grade      int
	Rating     float64
	Efficiency float64
	Cost       float64 // $ per m³/s of intake flow
}

// NewPump resolves efficiency and cost for a pump grade and performance rating.
func NewPump(c Constants, tables EquipmentTables, grade int, rating float64) (Pump, error) {
	eff, err := gradeLookup("pump efficiency", pumpEfficiencies, grade)
	if err != nil {
		return Pump{}, err
	}
	if math.IsNaN(rating) || rating <= 0 {
		return Pump{}, fmt.Errorf("pump rating must be positive, got %f", rating)
	}
	idx := RatingIndex(c, rating)
	cost, err := tables.Pumps.Lookup(grade, idx)
	if err != nil {
		return Pump{}, fmt.Errorf("pump rating %g: %w", rating, err)
	}
	return Pump{Grade: grade, Rating: rating, Efficiency: eff, Cost: cost}, nil
}

// Pipe is one straight pipe segment.
type Pipe struct {
	Grade          int
	Diameter       float64 // m
	Length         float64 // m
	FrictionFactor float64
	Cost           float64 // length × per-metre table cost
}

// CrossSection returns the pipe's flow area in m².
func (p Pipe) CrossSection() float64 {
	return crossSection(p.Diameter)
}

// NewPipe resolves friction factor and capital cost for a pipe segment.
func NewPipe(c Constants, tables EquipmentTables, grade int, diameter, length float64) (Pipe, error) {
	f, err := gradeLookup("pipe friction factor", pipeFrictionFactors, grade)
	if err != nil {
		return Pipe{}, err
	}
	if err := validateFinitePositive("pipe diameter", diameter); err != nil {
		return Pipe{}, err
	}
	if err := validateFinitePositive("pipe length", length); err != nil {
		return Pipe{}, err
	}
	perMetre, err := tables.Pipes.Lookup(grade, DiameterIndex(c, diameter))
	if err != nil {
		return Pipe{}, fmt.Errorf("pipe diameter %g: %w", diameter, err)
	}
	return Pipe{Grade: grade, Diameter: diameter, Length: length, FrictionFactor: f, Cost: length * perMetre}, nil
}

// Valve is the control valve shared by every leg of the line.
type Valve struct {
	Grade           int
	Diameter        float64 // m
	FlowCoefficient float64
	Cost            float64
}

// NewValve resolves flow coefficient and capital cost for a valve.
func NewValve(c Constants, tables EquipmentTables, grade int, diameter float64) (Valve, error) {
	k, err := gradeLookup("valve flow coefficient", valveFlowCoefficient, grade)
	if err != nil {
		return Valve{}, err
	}
	if err := validateFinitePositive("valve diameter", diameter); err != nil {
		return Valve{}, err
	}
	cost, err := tables.Valves.Lookup(grade, DiameterIndex(c, diameter))
	if err != nil {
		return Valve{}, fmt.Errorf("valve diameter %g: %w", diameter, err)
	}
	return Valve{Grade: grade, Diameter: diameter, FlowCoefficient: k, Cost: cost}, nil
}

func crossSection(diameter float64) float64 {
	r := diameter / 2
	return math.Pi * r * r
}
