// Package sweep enumerates the equipment/operation design space and evaluates every
// combination through the process pipeline.
package sweep

import (
	"fmt"
	"iter"

	"github.com/ethanol-sim/ethanol-sim/sim"
)

// Space is the Cartesian product of all sweep axes. Enumeration order is fixed:
// fermenter outermost, then distiller, dehydrator, filter, pipe grade, diameter,
// pump grade, and valve grade innermost.
type Space struct {
	Fermenters  []sim.Operation
	Distillers  []sim.Operation
	Dehydrators []sim.Operation
	Filters     []sim.Operation
	PipeGrades  []int
	Diameters   []float64
	PumpGrades  []int
	ValveGrades []int
}

// Combination is one point of the design space.
type Combination struct {
	Index int

	Fermenter  int // option index into Space.Fermenters
	Distiller  int
	Dehydrator int
	Filter     int

	PipeGrade  int
	Diameter   float64
	PumpGrade  int
	ValveGrade int

	Plan sim.Plan
}

// NewSpace builds the default space over a catalog: every grade of every equipment kind
// and the given diameters.
func NewSpace(cat sim.Catalog, diameters []float64) *Space {
	return &Space{
		Fermenters:  cat.Fermenters,
		Distillers:  cat.Distillers,
		Dehydrators: cat.Dehydrators,
		Filters:     cat.Filters,
		PipeGrades:  seq(sim.PipeGrades),
		Diameters:   diameters,
		PumpGrades:  seq(sim.PumpGrades),
		ValveGrades: seq(sim.ValveGrades),
	}
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// radices lists axis sizes from outermost to innermost.
func (s *Space) radices() []int {
	return []int{
		len(s.Fermenters), len(s.Distillers), len(s.Dehydrators), len(s.Filters),
		len(s.PipeGrades), len(s.Diameters), len(s.PumpGrades), len(s.ValveGrades),
	}
}

// Validate rejects empty axes.
func (s *Space) Validate() error {
	names := []string{"fermenters", "distillers", "dehydrators", "filters",
		"pipe grades", "diameters", "pump grades", "valve grades"}
	for i, n := range s.radices() {
		if n == 0 {
			return fmt.Errorf("sweep axis %q is empty", names[i])
		}
	}
	return nil
}

// Len is the number of combinations: the product of all axis sizes.
func (s *Space) Len() int {
	n := 1
	for _, r := range s.radices() {
		n *= r
	}
	return n
}

// At decodes the i-th combination in enumeration order.
func (s *Space) At(i int) (Combination, error) {
	if i < 0 || i >= s.Len() {
		return Combination{}, fmt.Errorf("combination index %d out of range [0, %d)", i, s.Len())
	}
	radices := s.radices()
	digits := make([]int, len(radices))
	rem := i
	for k := len(radices) - 1; k >= 0; k-- {
		digits[k] = rem % radices[k]
		rem /= radices[k]
	}
	comb := Combination{
		Index:      i,
		Fermenter:  digits[0],
		Distiller:  digits[1],
		Dehydrator: digits[2],
		Filter:     digits[3],
		PipeGrade:  s.PipeGrades[digits[4]],
		Diameter:   s.Diameters[digits[5]],
		PumpGrade:  s.PumpGrades[digits[6]],
		ValveGrade: s.ValveGrades[digits[7]],
	}
	comb.Plan = sim.Plan{
		Fermenter:  s.Fermenters[comb.Fermenter],
		Filter:     s.Filters[comb.Filter],
		Distiller:  s.Distillers[comb.Distiller],
		Dehydrator: s.Dehydrators[comb.Dehydrator],
	}
	return comb, nil
}

// All yields every combination lazily in enumeration order. The sequence is finite and
// can be ranged over any number of times.
func (s *Space) All() iter.Seq2[int, Combination] {
	return func(yield func(int, Combination) bool) {
		n := s.Len()
		for i := 0; i < n; i++ {
			comb, err := s.At(i)
			if err != nil {
				return
			}
			if !yield(i, comb) {
				return
			}
		}
	}
}

// Layout is the fixed physical arrangement shared by every combination.
type Layout struct {
	PipeLengths [sim.NumPipes]float64
	PumpRating  float64
	// FixedValveGrade, when set, overrides the swept valve grade for every combination.
	FixedValveGrade *int
}

// DefaultLayout is the reference plant: intake 10.78 m, then 1.53, 8.62, 1.53 and an
// outlet run of 3.05 m, with a 27 m pump.
func DefaultLayout() Layout {
	return Layout{
		PipeLengths: [sim.NumPipes]float64{10.78, 1.53, 8.62, 1.53, 3.05},
		PumpRating:  27,
	}
}

// Build resolves the equipment for a combination. Every pipe shares the combination's
// grade and diameter; the single valve is sized to the same diameter.
func (comb Combination) Build(c sim.Constants, tables sim.EquipmentTables, layout Layout) (sim.Site, error) {
	var site sim.Site
	for i, length := range layout.PipeLengths {
		pipe, err := sim.NewPipe(c, tables, comb.PipeGrade, comb.Diameter, length)
		if err != nil {
			return sim.Site{}, fmt.Errorf("pipe %d: %w", i, err)
		}
		site.Pipes[i] = pipe
	}
	pump, err := sim.NewPump(c, tables, comb.PumpGrade, layout.PumpRating)
	if err != nil {
		return sim.Site{}, fmt.Errorf("pump: %w", err)
	}
	valveGrade := comb.ValveGrade
	if layout.FixedValveGrade != nil {
		valveGrade = *layout.FixedValveGrade
	}
	valve, err := sim.NewValve(c, tables, valveGrade, comb.Diameter)
	if err != nil {
		return sim.Site{}, fmt.Errorf("valve: %w", err)
	}
	site.Pump = pump
	site.Valve = valve
	return site, nil
}

func (comb Combination) String() string {
	return fmt.Sprintf("#%d fermenter=%d distiller=%d dehydrator=%d filter=%d pipe=%d d=%.2f pump=%d valve=%d",
		comb.Index, comb.Fermenter, comb.Distiller, comb.Dehydrator, comb.Filter,
		comb.PipeGrade, comb.Diameter, comb.PumpGrade, comb.ValveGrade)
}
