package main

import (
	"io"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/autopark/internal/sim"
	"github.com/san-kum/autopark/internal/viz"
)

var theme string

func newLiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "watch and tune a simulated maneuver in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	cmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")
	return cmd
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)

	// log lines would tear the alt screen
	log.SetOutput(io.Discard)

	m, err := viz.NewModel(presetName(), func() (*sim.Runner, error) {
		return cfg.NewRunner(nil)
	})
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(cmd.Context()))
	_, err = p.Run()
	return err
}
