package sim

import "fmt"

// Stage is one unit operation of the line. Stages run exactly once per pipeline run,
// in declaration order.
type Stage int

const (
	Fermentation Stage = iota
	Filtration
	Distillation
	Dehydration
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{Fermentation, Filtration, Distillation, Dehydration}

var stageNames = map[Stage]string{
	Fermentation: "fermentation",
	Filtration:   "filtration",
	Distillation: "distillation",
	Dehydration:  "dehydration",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return fmt.Sprintf("stage(%d)", int(s))
}

// Waste is the material removed from the line (kg/s). CO₂ leaves as gas and is tracked
// outside the stream's mass balance.
type Waste struct {
	CO2   float64
	Fiber float64
	Sugar float64
	Water float64
}

// Add returns the component-wise sum.
func (w Waste) Add(o Waste) Waste {
	return Waste{CO2: w.CO2 + o.CO2, Fiber: w.Fiber + o.Fiber, Sugar: w.Sugar + o.Sugar, Water: w.Water + o.Water}
}

// Total returns all removed mass.
func (w Waste) Total() float64 {
	return w.CO2 + w.Fiber + w.Sugar + w.Water
}

func (w Waste) validate(stage Stage, input Stream) error {
	for _, c := range []struct {
		name string
		v    float64
	}{
		{"co2 waste", w.CO2}, {"fiber waste", w.Fiber}, {"sugar waste", w.Sugar}, {"water waste", w.Water},
	} {
		if c.v < 0 {
			return &PhysicallyInvalidStateError{Stage: stage, Input: input, Component: c.name, Value: c.v}
		}
	}
	return nil
}

// Transform applies stage to in using op and returns the output stream and the waste it
// produced. A transform that would drive any component or waste quantity negative returns a
// PhysicallyInvalidStateError and no stream.
func Transform(c Constants, stage Stage, in Stream, op Operation) (Stream, Waste, error) {
	if err := op.Validate(stage); err != nil {
		return Stream{}, Waste{}, err
	}
	if err := in.Validate(stage, in); err != nil {
		return Stream{}, Waste{}, err
	}

	var out Stream
	var waste Waste
	switch stage {
	case Fermentation:
		out, waste = ferment(c, in, op.Efficiency)
	case Filtration:
		out, waste = filter(in, op.Efficiency)
	case Distillation:
		out, waste = distill(in, op.Efficiency)
	case Dehydration:
		out, waste = dehydrate(in, op.Efficiency)
	default:
		return Stream{}, Waste{}, fmt.Errorf("unknown stage %d", int(stage))
	}

	if err := out.Validate(stage, in); err != nil {
		return Stream{}, Waste{}, err
	}
	if err := waste.validate(stage, in); err != nil {
		return Stream{}, Waste{}, err
	}
	return out, waste, nil
}

// ferment converts a fraction of the sugar into ethanol and CO₂.
func ferment(c Constants, in Stream, eff float64) (Stream, Waste) {
	converted := in.Sugar * eff
	out := in
	out.Sugar = in.Sugar * (1 - eff)
	out.Ethanol = in.Ethanol + c.Stoichiometry.EthanolYield*converted
	return out, Waste{CO2: c.Stoichiometry.CO2Yield * converted}
}

// filter removes a fraction of the fiber.
func filter(in Stream, eff float64) (Stream, Waste) {
	out := in
	out.Fiber = in.Fiber * (1 - eff)
	return out, Waste{Fiber: in.Fiber * eff}
}

// distill keeps the ethanol and carries over non-ethanol components in proportion to their
// share, sized so the ethanol recovery matches eff: impurities = ethanol × (1/eff − 1).
func distill(in Stream, eff float64) (Stream, Waste) {
	impurities := in.Impurities()
	if impurities == 0 {
		return in, Waste{}
	}
	carry := in.Ethanol * (1/eff - 1) / impurities
	out := Stream{
		Sugar:   in.Sugar * carry,
		Fiber:   in.Fiber * carry,
		Water:   in.Water * carry,
		Ethanol: in.Ethanol,
	}
	return out, Waste{
		Fiber: in.Fiber - out.Fiber,
		Sugar: in.Sugar - out.Sugar,
		Water: in.Water - out.Water,
	}
}

// dehydrate removes a fraction of the water.
func dehydrate(in Stream, eff float64) (Stream, Waste) {
	out := in
	out.Water = in.Water * (1 - eff)
	return out, Waste{Water: in.Water * eff}
}
