package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ethanol-sim/ethanol-sim/sim"
	"github.com/ethanol-sim/ethanol-sim/sim/results"
	"github.com/ethanol-sim/ethanol-sim/sim/sweep"
)

var (
	workers       int    // Concurrent pipeline evaluations
	errorPolicy   string // halt, skip or record
	outPath       string // CSV results file
	purityPath    string // One purity per line
	headerPath    string // YAML run header
	metricsPath   string // Prometheus textfile
	progressEvery int    // Combinations between progress log lines
	fixedValve    int    // Valve grade forced on every combination (-1 = sweep it)
)

// sweepOptions carries the resolved outputs of one sweep invocation.
type sweepOptions struct {
	Workers       int
	Policy        sweep.ErrorPolicy
	Out           io.Writer // CSV; nil disables
	Purity        io.Writer // nil disables
	ProgressEvery int       // 0 disables
	Registry      *prometheus.Registry
}

// executeSweep runs the configured space and returns driver stats and the summary of every
// emitted record.
func executeSweep(ctx context.Context, cfg Config, tbl sim.EquipmentTables, opts sweepOptions) (sweep.Stats, results.Summary, error) {
	layout, err := cfg.Layout.toLayout()
	if err != nil {
		return sweep.Stats{}, results.Summary{}, err
	}
	pipeline, err := sim.NewPipeline(cfg.Constants, cfg.Feed)
	if err != nil {
		return sweep.Stats{}, results.Summary{}, err
	}

	collector := &results.Collector{}
	sinks := results.Multi{collector}
	if opts.Out != nil {
		sinks = append(sinks, results.NewCSVWriter(opts.Out))
	}
	if opts.Purity != nil {
		sinks = append(sinks, results.NewPurityWriter(opts.Purity))
	}

	driver := &sweep.Driver{
		Pipeline: pipeline,
		Tables:   tbl,
		Layout:   layout,
		Workers:  opts.Workers,
		Policy:   opts.Policy,
		Sink:     sinks,
	}
	if opts.ProgressEvery > 0 {
		driver.Progress = sweep.NewLogProgress(opts.ProgressEvery)
	}
	if opts.Registry != nil {
		driver.Metrics = sweep.NewMetrics(opts.Registry)
	}

	stats, err := driver.Run(ctx, cfg.Space())
	return stats, results.Summarize(collector.Records()), err
}

func createOutput(path string) *os.File {
	if path == "" {
		return nil
	}
	f, err := os.Create(path)
	if err != nil {
		logrus.Fatalf("Failed to create %s: %v", path, err)
	}
	return f
}

// sweepCmd enumerates every configuration and writes one record per combination.
var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Evaluate every equipment and operation combination",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := mustLoadConfig(cmd)

		// CLI flags override defaults.yaml only when explicitly set
		if cmd.Flags().Changed("workers") {
			cfg.Sweep.Workers = workers
		}
		if cmd.Flags().Changed("policy") {
			cfg.Sweep.ErrorPolicy = errorPolicy
		}
		if cmd.Flags().Changed("fixed-valve-grade") {
			if fixedValve < 0 {
				cfg.Layout.FixedValveGrade = nil
			} else {
				g := fixedValve
				cfg.Layout.FixedValveGrade = &g
			}
		}
		if err := cfg.Validate(); err != nil {
			logrus.Fatalf("Invalid configuration: %v", err)
		}
		tbl := mustLoadTables()

		opts := sweepOptions{
			Workers:       cfg.Sweep.Workers,
			Policy:        sweep.ErrorPolicy(cfg.Sweep.ErrorPolicy),
			ProgressEvery: progressEvery,
		}
		out := createOutput(outPath)
		if out != nil {
			defer out.Close()
			opts.Out = out
		}
		purity := createOutput(purityPath)
		if purity != nil {
			defer purity.Close()
			opts.Purity = purity
		}
		if metricsPath != "" {
			opts.Registry = prometheus.NewRegistry()
		}

		space := cfg.Space()
		logrus.Infof("Starting sweep of %d combinations (policy=%s, workers=%d)",
			space.Len(), opts.Policy, opts.Workers)
		header := results.NewHeader(space.Len(), string(opts.Policy), cfg.Feed, cfg.Constants)
		header.Tables = tablesDir

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		start := time.Now()
		stats, summary, runErr := executeSweep(ctx, cfg, tbl, opts)

		summary.Print(os.Stdout)
		fmt.Fprintf(os.Stdout, "Evaluated %d/%d combinations in %s\n",
			stats.Evaluated, stats.Total, time.Since(start).Round(time.Millisecond))

		if headerPath != "" {
			header.Summary = &summary
			if err := results.WriteHeader(headerPath, header); err != nil {
				logrus.Errorf("%v", err)
			}
		}
		if opts.Registry != nil {
			if err := prometheus.WriteToTextfile(metricsPath, opts.Registry); err != nil {
				logrus.Errorf("Failed to write metrics: %v", err)
			}
		}
		if runErr != nil {
			logrus.Fatalf("Sweep stopped: %v", runErr)
		}
		logrus.Info("Sweep complete.")
	},
}

func init() {
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "Concurrent pipeline evaluations (0 = GOMAXPROCS)")
	sweepCmd.Flags().StringVar(&errorPolicy, "policy", "halt", "What to do with a failed combination (halt, skip, record)")
	sweepCmd.Flags().StringVar(&outPath, "out", "data.csv", "CSV file receiving one row per combination (empty to disable)")
	sweepCmd.Flags().StringVar(&purityPath, "purity-out", "purity.txt", "File receiving one purity per line (empty to disable)")
	sweepCmd.Flags().StringVar(&headerPath, "header-out", "", "YAML file receiving the run header and summary")
	sweepCmd.Flags().StringVar(&metricsPath, "metrics-out", "", "Prometheus textfile receiving sweep metrics")
	sweepCmd.Flags().IntVar(&progressEvery, "progress-every", 10000, "Log progress every N combinations (0 disables)")
	sweepCmd.Flags().IntVar(&fixedValve, "fixed-valve-grade", -1, "Use this valve grade for every combination (-1 sweeps valve grades)")
}
