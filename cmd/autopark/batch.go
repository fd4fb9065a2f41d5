package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/san-kum/autopark/internal/automation"
	"github.com/san-kum/autopark/internal/export"
	"github.com/san-kum/autopark/internal/optim"
	"github.com/san-kum/autopark/internal/storage"
)

var (
	tuneKp     string
	tuneKd     string
	tuneSeeds  int
	tuneMetric string
	svgWidth   int
	svgHeight  int
)

func newTuneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tune",
		Short: "grid-search steering gains in simulation",
		Args:  cobra.NoArgs,
		RunE:  tuneGains,
	}
	cmd.Flags().StringVar(&tuneKp, "kp-values", "0,0.005,0.01,0.02", "comma separated Kp candidates")
	cmd.Flags().StringVar(&tuneKd, "kd-values", "0,0.1,0.2,0.4", "comma separated Kd candidates")
	cmd.Flags().IntVar(&tuneSeeds, "seeds", 4, "simulated runs per candidate")
	cmd.Flags().StringVar(&tuneMetric, "metric", "tracking_error_stddev", "metric to minimize")
	return cmd
}

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted batch of simulations",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
}

func newExportSVGCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "draw the run trajectory as svg to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	cmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	cmd.Flags().IntVar(&svgHeight, "height", 300, "image height")
	return cmd
}

func parseValues(s string) ([]float64, error) {
	var out []float64
	for _, f := range strings.Split(s, ",") {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("bad value %q: %w", f, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func tuneGains(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	kps, err := parseValues(tuneKp)
	if err != nil {
		return err
	}
	kds, err := parseValues(tuneKd)
	if err != nil {
		return err
	}

	fmt.Printf("searching %d candidates x %d seeds, minimizing %s...\n", len(kps)*len(kds), tuneSeeds, tuneMetric)
	g := optim.NewGridSearch([]string{"Kp", "Kd"}, [][]float64{kps, kds})
	best, score, all, err := g.Search(cmd.Context(), optim.SimObjective(cfg, tuneSeeds, tuneMetric))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "KP\tKD\t%s\n", strings.ToUpper(tuneMetric))
	for _, c := range all {
		val := color.RedString("rejected")
		if c.Err != nil {
			val = color.RedString(c.Err.Error())
		} else if c.OK {
			val = fmt.Sprintf("%.4f", c.Score)
		}
		fmt.Fprintf(w, "%.4f\t%.4f\t%s\n", c.Params["Kp"], c.Params["Kd"], val)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}
	fmt.Printf("\n%s kp=%.4f kd=%.4f (%s=%.4f)\n", color.GreenString("best"), best["Kp"], best["Kd"], tuneMetric, score)
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("scenario %s: %s\n\n", sc.Name, sc.Description)

	results, err := automation.RunScenario(cmd.Context(), sc)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUNS\tSUCCESS\tRESULT")
	for _, r := range results {
		verdict := color.GreenString("PASS")
		if !r.Passed {
			verdict = color.RedString("FAIL")
		}
		fmt.Fprintf(w, "%s\t%d\t%.1f%%\t%s\n", r.Name, len(r.Outcomes), 100*r.SuccessRate, verdict)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if err != nil {
		return err
	}
	if _, failed := automation.Summary(results); failed > 0 {
		return fmt.Errorf("%d of %d steps failed", failed, len(results))
	}
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	trace, err := st.LoadTrajectory(args[0])
	if err != nil {
		return err
	}
	svg := export.TrajectoryToSVG(meta.Geometry, trace, svgWidth, svgHeight, "#00ff00")
	if svg == "" {
		return fmt.Errorf("no trajectory to draw")
	}
	_, err = fmt.Fprintln(os.Stdout, svg)
	return err
}
