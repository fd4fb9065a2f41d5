package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/autopark/internal/config"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	// overrides, applied only when set on the command line
	seed       int64
	side       string
	kp         float64
	kd         float64
	integrator string
)

// ConfigureVerbosity configures log verbosity based on parsed flags.
func ConfigureVerbosity() {
	log.SetLevel(log.InfoLevel)
	if verbose {
		log.SetLevel(log.DebugLevel)
	}
}

// main registers the commands and executes the root command with a context
// that is canceled on SIGINT or SIGTERM.
func main() {
	rootCmd := &cobra.Command{
		Use:           "autopark",
		Short:         "wall-following autonomous parking controller",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			ConfigureVerbosity()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.BoolVarP(&verbose, "verbose", "v", false, "verbose output (per-tick steering telemetry)")
	pf.StringVar(&dataDir, "data", ".autopark", "data directory")
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "start from a preset configuration")
	pf.Int64Var(&seed, "seed", 1, "simulation seed")
	pf.StringVar(&side, "side", "left", "parking side (left|right)")
	pf.Float64Var(&kp, "kp", config.DefaultKp, "steering proportional gain")
	pf.Float64Var(&kd, "kd", config.DefaultKd, "steering derivative gain")
	pf.StringVar(&integrator, "integrator", "rk4", "simulation integrator")

	rootCmd.AddCommand(
		newRunCmd(),
		newLiveCmd(),
		newListCmd(),
		newShowCmd(),
		newPlotCmd(),
		newExportCSVCmd(),
		newPresetsCmd(),
		newDriveCmd(),
		newTuneCmd(),
		newScenarioCmd(),
		newExportSVGCmd(),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// loadConfig layers preset, config file and explicit flags, in that
// order, and validates the result.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadOver(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("seed") {
		cfg.Sim.Seed = seed
	}
	if flags.Changed("side") {
		cfg.Parking.Side = side
	}
	if flags.Changed("kp") {
		cfg.Steering.Kp = kp
	}
	if flags.Changed("kd") {
		cfg.Steering.Kd = kd
	}
	if flags.Changed("integrator") {
		cfg.Sim.Integrator = integrator
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func presetName() string {
	if preset == "" {
		return "default"
	}
	return preset
}
