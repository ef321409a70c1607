// Package tables loads equipment cost tables from whitespace-separated flat files.
// Each line is one size index (rating or diameter row); each column is one grade.
package tables

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/ethanol-sim/ethanol-sim/sim"
)

// Default file names inside a table directory.
const (
	PumpsFile  = "pumps.txt"
	PipesFile  = "pipes.txt"
	ValvesFile = "valves.txt"
)

// Parse reads a table from r. Blank lines and lines starting with '#' are skipped.
func Parse(name string, r io.Reader) (*sim.GridTable, error) {
	var rows [][]float64
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		row := make([]float64, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, fmt.Errorf("%s line %d column %d: %w", name, lineNo, i+1, err)
			}
			row[i] = v
		}
		if len(rows) > 0 && len(row) != len(rows[0]) {
			return nil, fmt.Errorf("%s line %d: %d columns, want %d", name, lineNo, len(row), len(rows[0]))
		}
		rows = append(rows, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return sim.NewGridTable(name, rows)
}

// Load reads one table file.
func Load(name, path string) (*sim.GridTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s table: %w", name, err)
	}
	defer func() { _ = f.Close() }()
	return Parse(name, f)
}

// LoadDir reads pumps.txt, pipes.txt and valves.txt from dir.
func LoadDir(dir string) (sim.EquipmentTables, error) {
	pumps, err := Load("pumps", filepath.Join(dir, PumpsFile))
	if err != nil {
		return sim.EquipmentTables{}, err
	}
	pipes, err := Load("pipes", filepath.Join(dir, PipesFile))
	if err != nil {
		return sim.EquipmentTables{}, err
	}
	valves, err := Load("valves", filepath.Join(dir, ValvesFile))
	if err != nil {
		return sim.EquipmentTables{}, err
	}
	logrus.Debugf("loaded tables from %s: pumps %dx%d, pipes %dx%d, valves %dx%d", dir,
		pumps.Rows(), pumps.Grades(), pipes.Rows(), pipes.Grades(), valves.Rows(), valves.Grades())
	return sim.EquipmentTables{Pumps: pumps, Pipes: pipes, Valves: valves}, nil
}
