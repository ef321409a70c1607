package sim

import (
	"fmt"
	"math"
)

// Operation is one catalog entry for a process unit (fermenter, filter, distiller, dehydrator).
// Efficiency is a conversion fraction for fermentation, a separation fraction for filtration
// and dehydration, and a recovery fraction for distillation.
type Operation struct {
	Name              string  `yaml:"name"`
	Efficiency        float64 `yaml:"efficiency"`
	EnergyConsumption float64 `yaml:"energy_consumption"` // kWh/day, nominal; not part of the energy balance
	CostPerVolume     float64 `yaml:"cost_per_volume"`    // $ per m³/s of throughput
}

// OperatingCost is the cost of running this unit at flowRate (m³/s).
func (o Operation) OperatingCost(flowRate float64) float64 {
	return o.CostPerVolume * flowRate
}

// Validate checks the efficiency is meaningful for stage. Distillation divides by the
// efficiency, so zero is rejected there.
func (o Operation) Validate(stage Stage) error {
	e := o.Efficiency
	if math.IsNaN(e) || e < 0 || e > 1 {
		return fmt.Errorf("%s operation %q: efficiency must be in [0, 1], got %g", stage, o.Name, e)
	}
	if stage == Distillation && e == 0 {
		return fmt.Errorf("%s operation %q: efficiency must be positive", stage, o.Name)
	}
	if o.CostPerVolume < 0 || math.IsNaN(o.CostPerVolume) {
		return fmt.Errorf("%s operation %q: cost_per_volume must be non-negative, got %g", stage, o.Name, o.CostPerVolume)
	}
	return nil
}

// Catalog lists the selectable operations for every stage.
type Catalog struct {
	Fermenters  []Operation `yaml:"fermenters"`
	Filters     []Operation `yaml:"filters"`
	Distillers  []Operation `yaml:"distillers"`
	Dehydrators []Operation `yaml:"dehydrators"`
}

// ForStage returns the options for stage.
func (c Catalog) ForStage(stage Stage) []Operation {
	switch stage {
	case Fermentation:
		return c.Fermenters
	case Filtration:
		return c.Filters
	case Distillation:
		return c.Distillers
	case Dehydration:
		return c.Dehydrators
	}
	return nil
}

// Validate checks every stage has at least one valid option.
func (c Catalog) Validate() error {
	for _, stage := range Stages {
		ops := c.ForStage(stage)
		if len(ops) == 0 {
			return fmt.Errorf("catalog has no %s options", stage)
		}
		for _, op := range ops {
			if err := op.Validate(stage); err != nil {
				return err
			}
		}
	}
	return nil
}

// DefaultCatalog is the reference vendor catalog.
func DefaultCatalog() Catalog {
	separators := func(prefix string) []Operation {
		return []Operation{
			{Name: prefix + "-basic", EnergyConsumption: 48800, Efficiency: 0.5, CostPerVolume: 200000},
			{Name: prefix + "-standard", EnergyConsumption: 49536, Efficiency: 0.75, CostPerVolume: 240000},
			{Name: prefix + "-premium", EnergyConsumption: 50350, Efficiency: 0.9, CostPerVolume: 280000},
			{Name: prefix + "-ultra", EnergyConsumption: 51000, Efficiency: 0.98, CostPerVolume: 480000},
		}
	}
	return Catalog{
		Fermenters: []Operation{
			{Name: "fermenter-basic", EnergyConsumption: 46600, Efficiency: 0.5, CostPerVolume: 320000},
			{Name: "fermenter-standard", EnergyConsumption: 47200, Efficiency: 0.75, CostPerVolume: 380000},
			{Name: "fermenter-premium", EnergyConsumption: 47500, Efficiency: 0.9, CostPerVolume: 460000},
			{Name: "fermenter-ultra", EnergyConsumption: 48000, Efficiency: 0.95, CostPerVolume: 1100000},
		},
		Filters: separators("filter"),
		Distillers: []Operation{
			{Name: "distiller-basic", EnergyConsumption: 47004, Efficiency: 0.81, CostPerVolume: 390000},
			{Name: "distiller-standard", EnergyConsumption: 47812, Efficiency: 0.9, CostPerVolume: 460000},
			{Name: "distiller-premium", EnergyConsumption: 48200, Efficiency: 0.915, CostPerVolume: 560000},
			{Name: "distiller-ultra", EnergyConsumption: 49500, Efficiency: 0.98, CostPerVolume: 1370000},
		},
		Dehydrators: separators("dehydrator"),
	}
}
