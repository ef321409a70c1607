package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ethanol-sim/ethanol-sim/sim"
)

// checkCoverage verifies every lookup the configured sweep will make resolves to a table cell.
func checkCoverage(cfg Config, tbl sim.EquipmentTables) error {
	c := cfg.Constants
	if _, err := sim.NewPump(c, tbl, sim.PumpGrades-1, cfg.Layout.PumpRating); err != nil {
		return err
	}
	for _, d := range cfg.Sweep.Diameters {
		for g := 0; g < sim.PipeGrades; g++ {
			if _, err := sim.NewPipe(c, tbl, g, d, 1); err != nil {
				return err
			}
		}
		for g := 0; g < sim.ValveGrades; g++ {
			if _, err := sim.NewValve(c, tbl, g, d); err != nil {
				return err
			}
		}
	}
	return nil
}

func describeTables(w io.Writer, tbl sim.EquipmentTables) {
	for _, t := range []sim.CostTable{tbl.Pumps, tbl.Pipes, tbl.Valves} {
		if g, ok := t.(*sim.GridTable); ok {
			fmt.Fprintf(w, "%-7s %3d rows x %d grades\n", g.Name(), g.Rows(), g.Grades())
			continue
		}
		fmt.Fprintf(w, "%-7s\n", t.Name())
	}
}

// tablesCmd loads the equipment tables and checks they cover the configured sweep.
var tablesCmd = &cobra.Command{
	Use:   "tables",
	Short: "Validate equipment cost tables against the configured sweep",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig(cmd)
		tbl := mustLoadTables()
		describeTables(os.Stdout, tbl)
		if err := checkCoverage(cfg, tbl); err != nil {
			logrus.Fatalf("Tables do not cover the sweep: %v", err)
		}
		fmt.Fprintln(os.Stdout, "tables cover every configured diameter, grade and pump rating")
	},
}
