package results

import (
	"bytes"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethanol-sim/ethanol-sim/sim"
	"github.com/ethanol-sim/ethanol-sim/sim/sweep"
)

func validRecord(index int, purity, energy, cost float64) sweep.Record {
	cat := sim.DefaultCatalog()
	return sweep.Record{
		Combination: sweep.Combination{
			Index: index, PipeGrade: 2, Diameter: 0.12, PumpGrade: 1, ValveGrade: 3,
			Plan: sim.Plan{Fermenter: cat.Fermenters[0], Filter: cat.Filters[1], Distiller: cat.Distillers[2], Dehydrator: cat.Dehydrators[3]},
		},
		Result: &sim.Result{
			Output:         sim.Stream{Ethanol: purity, Water: 1 - purity},
			EnergyConsumed: energy,
			OperatingCost:  cost - 100,
			CapitalCost:    100,
			TotalCost:      cost,
			Purity:         purity,
		},
	}
}

func invalidRecord(index int) sweep.Record {
	return sweep.Record{
		Combination: sweep.Combination{Index: index},
		Err:         &sim.PhysicallyInvalidStateError{Stage: sim.Distillation, Component: "water", Value: -1},
	}
}

func TestCSVWriter_WritesHeaderOnceAndWholeRows(t *testing.T) {
	// GIVEN a CSV writer over a buffer
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)

	// WHEN a valid and an invalid record are emitted
	require.NoError(t, w.Emit(validRecord(0, 0.9, 1234.5, 1000.456)))
	require.NoError(t, w.Emit(invalidRecord(1)))

	// THEN the output parses as a header plus two rows of equal width
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, Columns, rows[0])
	for _, row := range rows[1:] {
		assert.Len(t, row, len(Columns))
	}

	col := func(name string) int {
		for i, c := range Columns {
			if c == name {
				return i
			}
		}
		t.Fatalf("no column %q", name)
		return -1
	}
	assert.Equal(t, "fermenter-basic", rows[1][col("fermenter")])
	assert.Equal(t, "true", rows[1][col("valid")])
	assert.Equal(t, "1000.46", rows[1][col("total_cost")], "costs are rounded to cents")
	assert.Equal(t, "900.46", rows[1][col("operating_cost")])
	assert.Equal(t, "0.9", rows[1][col("purity")])

	assert.Equal(t, "false", rows[2][col("valid")])
	assert.Contains(t, rows[2][col("error")], "distillation")
	assert.Empty(t, rows[2][col("purity")])
}

func TestPurityWriter_OneLinePerValidRecord(t *testing.T) {
	var buf bytes.Buffer
	w := NewPurityWriter(&buf)
	require.NoError(t, w.Emit(validRecord(0, 0.5, 1, 1)))
	require.NoError(t, w.Emit(invalidRecord(1)))
	require.NoError(t, w.Emit(validRecord(2, 0.75, 1, 1)))
	assert.Equal(t, "0.5\n0.75\n", buf.String())
}

type failingSink struct{ calls int }

func (f *failingSink) Emit(sweep.Record) error {
	f.calls++
	return errors.New("disk full")
}

func TestMulti_StopsAtFirstError(t *testing.T) {
	// GIVEN a collector, a failing sink, then another collector
	first, last := &Collector{}, &Collector{}
	bad := &failingSink{}
	m := Multi{first, bad, last}

	// WHEN a record is emitted
	err := m.Emit(validRecord(0, 0.9, 1, 1))

	// THEN the error surfaces and later sinks are not called
	require.Error(t, err)
	assert.Len(t, first.Records(), 1)
	assert.Equal(t, 1, bad.calls)
	assert.Empty(t, last.Records())
}

func TestSummarize(t *testing.T) {
	// GIVEN four valid records and one invalid record
	records := []sweep.Record{
		validRecord(0, 0.60, 100, 5000),
		validRecord(1, 0.95, 300, 9000),
		invalidRecord(2),
		validRecord(3, 0.80, 200, 3000),
		validRecord(4, 0.95, 400, 7000),
	}

	// WHEN summarized
	s := Summarize(records)

	// THEN counts, extremes and picks reflect the valid records only
	assert.Equal(t, 5, s.Records)
	assert.Equal(t, 4, s.Valid)
	assert.Equal(t, 1, s.Invalid)
	assert.InDelta(t, 0.825, s.Purity.Mean, 1e-12)
	assert.Equal(t, 0.60, s.Purity.Min)
	assert.Equal(t, 0.95, s.Purity.Max)
	assert.Equal(t, 0.80, s.Purity.P50)
	assert.InDelta(t, 250, s.Energy.Mean, 1e-9)
	assert.Equal(t, 3000.0, s.Cost.Min)
	assert.Greater(t, s.Cost.StdDev, 0.0)

	require.NotNil(t, s.BestPurity)
	assert.Equal(t, 1, s.BestPurity.Index, "ties go to the earliest combination")
	require.NotNil(t, s.Cheapest)
	assert.Equal(t, 3, s.Cheapest.Index)
	assert.Equal(t, "3000.00", s.Cheapest.TotalCost)

	var buf bytes.Buffer
	s.Print(&buf)
	assert.Contains(t, buf.String(), "valid 4, invalid 1")
}

func TestSummarize_NoValidRecords(t *testing.T) {
	s := Summarize([]sweep.Record{invalidRecord(0)})
	assert.Equal(t, 1, s.Invalid)
	assert.Nil(t, s.BestPurity)
	assert.Nil(t, s.Cheapest)
	assert.Equal(t, Distribution{}, s.Purity)
}

func TestSummarize_SingleRecordHasZeroSpread(t *testing.T) {
	s := Summarize([]sweep.Record{validRecord(0, 0.7, 10, 10)})
	assert.Equal(t, 0.0, s.Purity.StdDev)
	assert.Equal(t, 0.7, s.Purity.Mean)
}

func TestTotalCostSum_ExactToTheCent(t *testing.T) {
	records := []sweep.Record{validRecord(0, 0.5, 1, 0.1), validRecord(1, 0.5, 1, 0.2), invalidRecord(2)}
	assert.Equal(t, "0.30", TotalCostSum(records).StringFixed(2))
}

func TestWriteHeader_RoundTrip(t *testing.T) {
	// GIVEN a header for a default run
	h := NewHeader(184320, "skip", sim.DefaultFeed(), sim.DefaultConstants())
	_, err := uuid.Parse(h.RunID)
	require.NoError(t, err, "run id is a UUID")

	// WHEN written and read back
	path := filepath.Join(t.TempDir(), "run.yaml")
	require.NoError(t, WriteHeader(path, h))
	got, err := ReadHeader(path)

	// THEN the fields survive
	require.NoError(t, err)
	assert.Equal(t, h.RunID, got.RunID)
	assert.Equal(t, 184320, got.Combinations)
	assert.Equal(t, sim.DefaultFeed(), got.Feed)
	assert.Equal(t, sim.DefaultConstants(), got.Constants)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(raw), "error_policy: skip"))
}
