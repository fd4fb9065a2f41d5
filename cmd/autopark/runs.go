package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/autopark/internal/config"
	"github.com/san-kum/autopark/internal/storage"
	"github.com/san-kum/autopark/internal/telemetry"
)

var (
	plotLog    string
	showPreset string
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}
}

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [run_id]",
		Short: "print run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  showRun,
	}
}

func newPlotCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot error, derivative and mv of a run or a tuning log",
		Args:  cobra.MaximumNArgs(1),
		RunE:  plotRun,
	}
	cmd.Flags().StringVar(&plotLog, "log", "", "plot an error,derivative,mv log file instead of a stored run")
	return cmd
}

func newExportCSVCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "write the run telemetry as csv to stdout",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
}

func newPresetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "presets",
		Short: "list presets or print one as yaml",
		Args:  cobra.NoArgs,
		RunE:  listPresets,
	}
	cmd.Flags().StringVar(&showPreset, "show", "", "print the named preset as a config file")
	return cmd
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tPRESET\tTIME\tSIDE\tSTATE\tTICKS\tELAPSED\tPARKED")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%dms\t%v\n",
			run.ID,
			run.Preset,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Side,
			run.State,
			run.Ticks,
			run.ElapsedMs,
			run.Parked,
		)
	}
	return w.Flush()
}

func showRun(cmd *cobra.Command, args []string) error {
	meta, err := storage.New(dataDir).Load(args[0])
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func plotRun(cmd *cobra.Command, args []string) error {
	var (
		recs  []telemetry.Record
		title string
	)
	switch {
	case plotLog != "":
		f, err := os.Open(plotLog)
		if err != nil {
			return err
		}
		defer f.Close()
		if recs, err = telemetry.ParseLog(f); err != nil {
			return err
		}
		title = plotLog
	case len(args) == 1:
		ticks, err := storage.New(dataDir).LoadTelemetry(args[0])
		if err != nil {
			return err
		}
		for _, t := range ticks {
			if t.Found {
				continue
			}
			recs = append(recs, telemetry.Record{Error: t.Error, Derivative: t.Derivative, Output: t.Output})
		}
		title = args[0]
	default:
		return fmt.Errorf("plot needs a run id or --log")
	}

	if len(recs) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("source: %s\n", title)
	fmt.Printf("samples: %d\n\n", len(recs))

	errs, derivs, outs := telemetry.Columns(recs)
	for _, series := range []struct {
		caption string
		data    []float64
	}{
		{"error", errs},
		{"derivative", derivs},
		{"mv", outs},
	} {
		graph := asciigraph.Plot(series.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(series.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if _, err := st.Load(args[0]); err != nil {
		return err
	}
	f, err := os.Open(st.TelemetryPath(args[0]))
	if err != nil {
		return err
	}
	defer f.Close()
	_, err = io.Copy(os.Stdout, f)
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	if showPreset != "" {
		cfg := config.GetPreset(showPreset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", showPreset, config.ListPresets())
		}
		return yaml.NewEncoder(os.Stdout).Encode(cfg)
	}
	for _, name := range config.ListPresets() {
		fmt.Println(name)
	}
	return nil
}
