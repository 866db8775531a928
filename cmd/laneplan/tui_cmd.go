package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fentz26/laneplan/internal/app"
	"github.com/fentz26/laneplan/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive Gantt chart",
	RunE:  runTUI,
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The terminal belongs to the UI, so logs go to the log file.
	return withApp(func(a *app.App) error {
		a.Logger.Info("starting tui", "db", a.Config.DBPath, "zoom", a.Config.Zoom)
		if err := tui.New(a).Run(); err != nil {
			return fmt.Errorf("TUI error: %w", err)
		}
		return nil
	})
}
