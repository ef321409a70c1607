package sim

import "fmt"

// CostTable resolves a capital cost from an equipment grade and a discretized size index.
// Construction (parsing files, fetching data) happens outside the core.
type CostTable interface {
	Name() string
	Lookup(grade, sizeIndex int) (float64, error)
}

// EquipmentTables groups the three lookup tables a sweep needs.
type EquipmentTables struct {
	Pumps  CostTable // grade × rating index
	Pipes  CostTable // grade × diameter index, cost per metre
	Valves CostTable // grade × diameter index
}

// Validate checks that every table is present.
func (t EquipmentTables) Validate() error {
	if t.Pumps == nil || t.Pipes == nil || t.Valves == nil {
		return fmt.Errorf("equipment tables incomplete: pumps=%t pipes=%t valves=%t",
			t.Pumps != nil, t.Pipes != nil, t.Valves != nil)
	}
	return nil
}

// GridTable is an in-memory CostTable: one row per size index, one column per grade.
type GridTable struct {
	name string
	rows [][]float64
}

// NewGridTable copies rows into a GridTable. Every row must have the same width.
func NewGridTable(name string, rows [][]float64) (*GridTable, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("table %s: no rows", name)
	}
	width := len(rows[0])
	if width == 0 {
		return nil, fmt.Errorf("table %s: row 0 is empty", name)
	}
	copied := make([][]float64, len(rows))
	for i, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("table %s: row %d has %d columns, want %d", name, i, len(row), width)
		}
		copied[i] = append([]float64(nil), row...)
	}
	return &GridTable{name: name, rows: copied}, nil
}

// Name returns the table name used in error messages.
func (g *GridTable) Name() string { return g.name }

// Rows returns the number of size indices.
func (g *GridTable) Rows() int { return len(g.rows) }

// Grades returns the number of grade columns.
func (g *GridTable) Grades() int { return len(g.rows[0]) }

// Lookup returns the cell at (sizeIndex, grade). Indices outside the table are a
// ConfigurationRangeError; there is no clamping.
func (g *GridTable) Lookup(grade, sizeIndex int) (float64, error) {
	if sizeIndex < 0 || sizeIndex >= len(g.rows) {
		return 0, &ConfigurationRangeError{
			Table: g.name, Axis: "size index", Value: float64(sizeIndex),
			Index: sizeIndex, Min: 0, Max: len(g.rows) - 1,
		}
	}
	row := g.rows[sizeIndex]
	if grade < 0 || grade >= len(row) {
		return 0, &ConfigurationRangeError{
			Table: g.name, Axis: "grade", Value: float64(grade),
			Index: grade, Min: 0, Max: len(row) - 1,
		}
	}
	return row[grade], nil
}
