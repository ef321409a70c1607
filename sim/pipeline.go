package sim

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Pipe segment positions within a Site.
const (
	IntakePipe = iota
	FilterPipe
	DistillerPipe
	DehydratorPipe
	OutletPipe
	NumPipes
)

// Site is the equipment configuration of one sweep combination: five pipe segments in flow
// order, the intake pump, and a single valve reused on every leg.
type Site struct {
	Pipes [NumPipes]Pipe
	Pump  Pump
	Valve Valve
}

// CapitalCost sums the pipe and valve purchase costs. The pump is costed per unit of intake
// flow and is accounted as operating cost.
func (s Site) CapitalCost() float64 {
	total := s.Valve.Cost
	for _, p := range s.Pipes {
		total += p.Cost
	}
	return total
}

// Plan selects one operation per stage.
type Plan struct {
	Fermenter  Operation
	Filter     Operation
	Distiller  Operation
	Dehydrator Operation
}

// ForStage returns the operation chosen for stage.
func (p Plan) ForStage(stage Stage) Operation {
	switch stage {
	case Filtration:
		return p.Filter
	case Distillation:
		return p.Distiller
	case Dehydration:
		return p.Dehydrator
	}
	return p.Fermenter
}

// Leg records the hydraulics of one pipe segment and the stage it feeds.
type Leg struct {
	Name     string
	Mixture  Mixture
	Energy   float64 // W dissipated on this leg
	Cost     float64 // operating cost charged on this leg
	Inflow   Stream
	Produced Stream // stream leaving the stage fed by this leg (equals Inflow on the outlet)
}

// Result is the outcome of one pipeline run. Produced once, never mutated.
type Result struct {
	Output         Stream
	Waste          Waste
	EnergyConsumed float64 // W
	OperatingCost  float64
	CapitalCost    float64
	TotalCost      float64
	Purity         float64
	Legs           []Leg
}

// Fields flattens the result into named numeric fields.
func (r *Result) Fields() map[string]float64 {
	return map[string]float64{
		"sugarOut":       r.Output.Sugar,
		"ethanolOut":     r.Output.Ethanol,
		"fiberOut":       r.Output.Fiber,
		"waterOut":       r.Output.Water,
		"fiberWaste":     r.Waste.Fiber,
		"waterWaste":     r.Waste.Water,
		"sugarWaste":     r.Waste.Sugar,
		"CO2Waste":       r.Waste.CO2,
		"energyConsumed": r.EnergyConsumed,
		"purity":         r.Purity,
		"totalCost":      r.TotalCost,
	}
}

// Pipeline threads a feed stream through the line. It holds no per-run state and is safe
// for concurrent use.
type Pipeline struct {
	Constants Constants
	Feed      Feed
}

// NewPipeline validates constants and feed.
func NewPipeline(c Constants, feed Feed) (*Pipeline, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("constants: %w", err)
	}
	if err := feed.Validate(); err != nil {
		return nil, fmt.Errorf("feed: %w", err)
	}
	return &Pipeline{Constants: c, Feed: feed}, nil
}

// run carries the running totals of one Run call.
type run struct {
	c      Constants
	site   Site
	stream Stream
	waste  Waste
	energy float64
	cost   float64
	legs   []Leg
}

// leg applies the hydraulic losses of one pipe segment to the current stream and
// returns the mixture it was computed at. leadingValve and trailingValve select the
// valve passes around the pipe.
func (r *run) leg(name string, pipe int, leadingValve, trailingValve bool) (Mixture, error) {
	m, err := r.stream.Properties(r.c)
	if err != nil {
		return Mixture{}, fmt.Errorf("%s leg: %w", name, err)
	}
	energy := 0.0
	if leadingValve {
		energy += ValveLoss(r.c, r.site.Valve, m.Density, m.FlowRate)
	}
	energy += PipeFriction(r.c, r.site.Pipes[pipe], m.Density, m.FlowRate)
	energy += BendLoss()
	if trailingValve {
		energy += ValveLoss(r.c, r.site.Valve, m.Density, m.FlowRate)
	}
	r.energy += energy
	r.legs = append(r.legs, Leg{Name: name, Mixture: m, Energy: energy, Inflow: r.stream, Produced: r.stream})
	return m, nil
}

// stage charges the operating cost of op at flow rate q, applies the transform, and
// replaces the current stream.
func (r *run) stage(stage Stage, op Operation, q float64) error {
	cost := op.OperatingCost(q)
	r.cost += cost
	out, waste, err := Transform(r.c, stage, r.stream, op)
	if err != nil {
		return fmt.Errorf("%s stage: %w", stage, err)
	}
	last := &r.legs[len(r.legs)-1]
	last.Cost += cost
	last.Produced = out
	r.stream = out
	r.waste = r.waste.Add(waste)
	return nil
}

// Run evaluates one site and plan. Any error aborts this run only; nothing is clamped.
func (p *Pipeline) Run(site Site, plan Plan) (*Result, error) {
	c := p.Constants
	r := &run{c: c, site: site, stream: p.Feed.Stream(c), legs: make([]Leg, 0, NumPipes)}

	// Intake: the pump lifts the feed into the first pipe; fermenter charges at intake flow.
	feed, err := r.stream.Properties(c)
	if err != nil {
		return nil, fmt.Errorf("intake: %w", err)
	}
	energyIn := KineticEnergyIn(site.Pipes[IntakePipe], r.stream.Total(), feed.FlowRate)
	r.energy += PumpLoss(site.Pump, energyIn)
	r.cost += site.Pump.Cost * feed.FlowRate

	m, err := r.leg("intake", IntakePipe, false, true)
	if err != nil {
		return nil, err
	}
	if err := r.stage(Fermentation, plan.Fermenter, m.FlowRate); err != nil {
		return nil, err
	}

	downstream := []struct {
		name  string
		pipe  int
		stage Stage
	}{
		{"filter", FilterPipe, Filtration},
		{"distiller", DistillerPipe, Distillation},
		{"dehydrator", DehydratorPipe, Dehydration},
	}
	for _, d := range downstream {
		m, err := r.leg(d.name, d.pipe, true, true)
		if err != nil {
			return nil, err
		}
		if err := r.stage(d.stage, plan.ForStage(d.stage), m.FlowRate); err != nil {
			return nil, err
		}
	}

	if _, err := r.leg("outlet", OutletPipe, true, false); err != nil {
		return nil, err
	}

	purity, err := r.stream.Purity()
	if err != nil {
		return nil, fmt.Errorf("outlet: %w", err)
	}

	capital := site.CapitalCost()
	res := &Result{
		Output:         r.stream,
		Waste:          r.waste,
		EnergyConsumed: r.energy,
		OperatingCost:  r.cost,
		CapitalCost:    capital,
		TotalCost:      r.cost + capital,
		Purity:         purity,
		Legs:           r.legs,
	}
	if logrus.IsLevelEnabled(logrus.TraceLevel) {
		for _, l := range res.Legs {
			logrus.Tracef("leg %-10s density=%.2f flow=%.6g energy=%.6g cost=%.6g", l.Name,
				l.Mixture.Density, l.Mixture.FlowRate, l.Energy, l.Cost)
		}
	}
	return res, nil
}
