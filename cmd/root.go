package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ethanol-sim/ethanol-sim/sim"
	"github.com/ethanol-sim/ethanol-sim/sim/tables"
)

var (
	logLevel   string // Log verbosity level
	configPath string // Plant description (defaults.yaml)
	tablesDir  string // Directory holding pumps.txt, pipes.txt and valves.txt
)

// rootCmd is the base command for the CLI
var rootCmd = &cobra.Command{
	Use:   "ethanol-sim",
	Short: "Steady-state bioethanol line simulator and equipment design-space sweep",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level, err := logrus.ParseLevel(logLevel)
		if err != nil {
			logrus.Fatalf("Invalid log level: %s", logLevel)
		}
		logrus.SetLevel(level)
	},
}

// mustLoadConfig reads the plant description. The built-in reference plant is used when
// the default path is absent; an explicitly named file must exist.
func mustLoadConfig(cmd *cobra.Command) Config {
	cfg, err := loadConfig(configPath)
	if err == nil {
		return cfg
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		logrus.Warnf("%s not found, using the built-in reference plant", configPath)
		return DefaultConfig()
	}
	logrus.Fatalf("Failed to load plant config: %v", err)
	return Config{}
}

func mustLoadTables() sim.EquipmentTables {
	t, err := tables.LoadDir(tablesDir)
	if err != nil {
		logrus.Fatalf("Failed to load equipment tables: %v", err)
	}
	return t
}

func mustPipeline(cfg Config) *sim.Pipeline {
	p, err := sim.NewPipeline(cfg.Constants, cfg.Feed)
	if err != nil {
		logrus.Fatalf("Invalid plant config: %v", err)
	}
	return p
}

// Execute runs the CLI root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// init sets up CLI flags and subcommands
func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "warn", "Log level (trace, debug, info, warn, error, fatal, panic)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "defaults.yaml", "Plant description: constants, feed, catalog, layout and sweep axes")
	rootCmd.PersistentFlags().StringVar(&tablesDir, "tables", "data", "Directory containing pumps.txt, pipes.txt and valves.txt")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(sweepCmd)
	rootCmd.AddCommand(tablesCmd)
}
