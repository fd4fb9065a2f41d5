package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/san-kum/autopark/internal/config"
	"github.com/san-kum/autopark/internal/metrics"
	"github.com/san-kum/autopark/internal/sim"
	"github.com/san-kum/autopark/internal/storage"
	"github.com/san-kum/autopark/internal/telemetry"
)

var (
	sweepRuns int
	noSave    bool
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "simulate a parking maneuver and store the run",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	cmd.Flags().IntVar(&sweepRuns, "sweep", 0, "run N seeds in parallel and report the success rate")
	cmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	return cmd
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if sweepRuns > 0 {
		return runSweep(cmd, cfg)
	}

	r, err := cfg.NewRunner(telemetry.LogSink{})
	if err != nil {
		return err
	}
	ticks := &storage.TickLog{}
	set := metrics.Default()
	r.Maneuver.AddObserver(ticks)
	r.Maneuver.AddObserver(set)

	fmt.Printf("running %s maneuver (%s side, seed %d)...\n", presetName(), cfg.Parking.Side, cfg.Sim.Seed)
	start := time.Now()
	res, runErr := r.Run(cmd.Context())
	elapsed := time.Since(start)

	meta := storage.RunMetadata{
		Preset:     presetName(),
		Seed:       res.Seed,
		Side:       cfg.Parking.Side,
		Integrator: cfg.Sim.Integrator,
		Kp:         cfg.Steering.Kp,
		Kd:         cfg.Steering.Kd,
		State:      res.State.String(),
		Ticks:      res.Ticks,
		ElapsedMs:  res.Elapsed,
		Parked:     res.Parked,
		Metrics:    set.Values(),
		Geometry:   r.World.Options().Geometry,
	}
	if runErr != nil {
		meta.Error = runErr.Error()
	}

	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(&storage.Run{Meta: meta, Ticks: ticks.Records, Trajectory: r.World.Trace()})
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", id)
	}

	printSummary(res, elapsed, set.Values())
	if runErr != nil && !errors.Is(runErr, sim.ErrNoSpace) {
		return runErr
	}
	if !res.Parked {
		return fmt.Errorf("vehicle not parked")
	}
	return nil
}

func printSummary(res *sim.Result, wall time.Duration, values map[string]float64) {
	verdict := color.GreenString("OK")
	if !res.Parked {
		verdict = color.RedString("FAIL")
	}
	fmt.Printf("%s  state=%s ticks=%d simulated=%dms wall=%v\n", verdict, res.State, res.Ticks, res.Elapsed, wall.Round(time.Millisecond))
	fmt.Printf("final pose: x=%.3f y=%.3f theta=%.3f\n", res.Final.X, res.Final.Y, res.Final.Theta)
	fmt.Println("\nmetrics:")
	names := make([]string, 0, len(values))
	for k := range values {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		fmt.Printf("  %s: %.6f\n", k, values[k])
	}
}

func runSweep(cmd *cobra.Command, cfg *config.Config) error {
	fmt.Printf("sweeping %d seeds from %d...\n", sweepRuns, cfg.Sim.Seed)
	outcomes := sim.Sweep(cmd.Context(), sweepRuns, cfg.Sim.Seed, func(s int64) (*sim.Runner, error) {
		c := *cfg
		c.Sim.Seed = s
		return c.NewRunner(nil)
	})

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SEED\tRESULT\tSTATE\tTICKS\tELAPSED\tREINITS\tERROR")
	for _, o := range outcomes {
		verdict, state, ticks, elapsed, reinits := color.RedString("FAIL"), "-", 0, 0, 0
		if o.Result != nil {
			if o.Result.Parked {
				verdict = color.GreenString("OK")
			}
			state, ticks, elapsed, reinits = o.Result.State.String(), o.Result.Ticks, o.Result.Elapsed, o.Result.Reinits
		}
		errText := ""
		if o.Err != nil {
			errText = o.Err.Error()
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%dms\t%d\t%s\n", o.Seed, verdict, state, ticks, elapsed, reinits, errText)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Printf("\nsuccess rate: %.1f%%\n", 100*sim.SuccessRate(outcomes))
	return nil
}
