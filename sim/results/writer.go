// Package results holds the sinks a sweep writes to and the statistics computed over a
// finished sweep.
package results

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ethanol-sim/ethanol-sim/sim/sweep"
)

// Columns is the CSV header, one column per Result Record field plus the combination labels.
var Columns = []string{
	"index", "fermenter", "distiller", "dehydrator", "filter",
	"pipe_grade", "diameter_m", "pump_grade", "valve_grade",
	"valid", "error",
	"sugar_out", "ethanol_out", "fiber_out", "water_out",
	"fiber_waste", "water_waste", "sugar_waste", "co2_waste",
	"energy_consumed_w", "operating_cost", "capital_cost", "total_cost", "purity",
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// formatMoney rounds to cents.
func formatMoney(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// Row renders one record as CSV cells in Columns order.
func Row(r sweep.Record) []string {
	c := r.Combination
	row := []string{
		strconv.Itoa(c.Index),
		c.Plan.Fermenter.Name, c.Plan.Distiller.Name, c.Plan.Dehydrator.Name, c.Plan.Filter.Name,
		strconv.Itoa(c.PipeGrade), formatFloat(c.Diameter), strconv.Itoa(c.PumpGrade), strconv.Itoa(c.ValveGrade),
		strconv.FormatBool(r.Valid()), "",
	}
	if !r.Valid() {
		row[10] = r.Err.Error()
		return append(row, make([]string, len(Columns)-len(row))...)
	}
	res := r.Result
	return append(row,
		formatFloat(res.Output.Sugar), formatFloat(res.Output.Ethanol),
		formatFloat(res.Output.Fiber), formatFloat(res.Output.Water),
		formatFloat(res.Waste.Fiber), formatFloat(res.Waste.Water),
		formatFloat(res.Waste.Sugar), formatFloat(res.Waste.CO2),
		formatFloat(res.EnergyConsumed),
		formatMoney(res.OperatingCost), formatMoney(res.CapitalCost), formatMoney(res.TotalCost),
		formatFloat(res.Purity),
	)
}

// CSVWriter writes one CSV row per record. Each row is flushed before Emit returns, so an
// interrupted sweep leaves only whole rows behind.
type CSVWriter struct {
	mu     sync.Mutex
	w      *csv.Writer
	header bool
}

// NewCSVWriter wraps out. The header row is written with the first record.
func NewCSVWriter(out io.Writer) *CSVWriter {
	return &CSVWriter{w: csv.NewWriter(out)}
}

// Emit implements sweep.Sink.
func (cw *CSVWriter) Emit(r sweep.Record) error {
	cw.mu.Lock()
	defer cw.mu.Unlock()
	if !cw.header {
		if err := cw.w.Write(Columns); err != nil {
			return fmt.Errorf("writing CSV header: %w", err)
		}
		cw.header = true
	}
	if err := cw.w.Write(Row(r)); err != nil {
		return fmt.Errorf("writing CSV row %d: %w", r.Combination.Index, err)
	}
	cw.w.Flush()
	return cw.w.Error()
}

// PurityWriter writes the purity of each valid record on its own line.
type PurityWriter struct {
	out io.Writer
}

// NewPurityWriter wraps out.
func NewPurityWriter(out io.Writer) *PurityWriter {
	return &PurityWriter{out: out}
}

// Emit implements sweep.Sink. Invalid records produce no line.
func (pw *PurityWriter) Emit(r sweep.Record) error {
	if !r.Valid() {
		return nil
	}
	_, err := fmt.Fprintln(pw.out, formatFloat(r.Result.Purity))
	return err
}

// Multi fans every record out to several sinks, stopping at the first error.
type Multi []sweep.Sink

// Emit implements sweep.Sink.
func (m Multi) Emit(r sweep.Record) error {
	for _, s := range m {
		if err := s.Emit(r); err != nil {
			return err
		}
	}
	return nil
}

// Collector keeps every record in memory.
type Collector struct {
	mu      sync.Mutex
	records []sweep.Record
}

// Emit implements sweep.Sink.
func (c *Collector) Emit(r sweep.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.records = append(c.records, r)
	return nil
}

// Records returns a copy of the collected records.
func (c *Collector) Records() []sweep.Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sweep.Record, len(c.records))
	copy(out, c.records)
	return out
}
