// Package testutil provides shared test infrastructure for the plant model.
// It consolidates fixture tables and assertion helpers used across sim/ and its
// sub-package tests.
package testutil

import (
	"math"
	"testing"

	"github.com/ethanol-sim/ethanol-sim/sim"
)

// PumpCosts, PipeCosts and ValveCosts are small calibrated tables covering the default
// sweep: pump ratings 6..27 (rows 0..7), diameters 0.10..0.15 m (rows 0..5).
var (
	PumpCosts = [][]float64{
		{1200, 1500, 1800, 2100, 2400},
		{1400, 1700, 2000, 2300, 2600},
		{1600, 1900, 2200, 2500, 2800},
		{1800, 2100, 2400, 2700, 3000},
		{2000, 2300, 2600, 2900, 3200},
		{2200, 2500, 2800, 3100, 3400},
		{2400, 2700, 3000, 3300, 3600},
		{2600, 2900, 3200, 3500, 3800},
	}
	PipeCosts = [][]float64{
		{1.0, 1.2, 1.4, 1.6, 1.8, 2.0},
		{1.1, 1.3, 1.5, 1.7, 1.9, 2.1},
		{1.2, 1.4, 1.6, 1.8, 2.0, 2.2},
		{1.3, 1.5, 1.7, 1.9, 2.1, 2.3},
		{1.4, 1.6, 1.8, 2.0, 2.2, 2.4},
		{1.5, 1.7, 1.9, 2.1, 2.3, 2.5},
	}
	ValveCosts = [][]float64{
		{1, 2, 3, 4},
		{2, 3, 4, 5},
		{3, 4, 5, 6},
		{4, 5, 6, 7},
		{5, 6, 7, 8},
		{6, 7, 8, 9},
	}
)

// Tables builds EquipmentTables from the fixture grids.
func Tables(t testing.TB) sim.EquipmentTables {
	t.Helper()
	pumps, err := sim.NewGridTable("pumps", PumpCosts)
	if err != nil {
		t.Fatalf("pumps: %v", err)
	}
	pipes, err := sim.NewGridTable("pipes", PipeCosts)
	if err != nil {
		t.Fatalf("pipes: %v", err)
	}
	valves, err := sim.NewGridTable("valves", ValveCosts)
	if err != nil {
		t.Fatalf("valves: %v", err)
	}
	return sim.EquipmentTables{Pumps: pumps, Pipes: pipes, Valves: valves}
}

// Lengths is the reference plant's pipe layout in flow order (m).
var Lengths = [sim.NumPipes]float64{10.78, 1.53, 8.62, 1.53, 3.05}

// Site builds a site with every pipe at the same grade and diameter.
func Site(t testing.TB, tables sim.EquipmentTables, pipeGrade int, diameter float64, pumpGrade, valveGrade int) sim.Site {
	t.Helper()
	c := sim.DefaultConstants()
	var site sim.Site
	for i, l := range Lengths {
		p, err := sim.NewPipe(c, tables, pipeGrade, diameter, l)
		if err != nil {
			t.Fatalf("pipe %d: %v", i, err)
		}
		site.Pipes[i] = p
	}
	pump, err := sim.NewPump(c, tables, pumpGrade, 27)
	if err != nil {
		t.Fatalf("pump: %v", err)
	}
	valve, err := sim.NewValve(c, tables, valveGrade, diameter)
	if err != nil {
		t.Fatalf("valve: %v", err)
	}
	site.Pump, site.Valve = pump, valve
	return site
}

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == 0 && got == 0 {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}
