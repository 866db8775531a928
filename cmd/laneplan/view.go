package main

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fentz26/laneplan/internal/app"
	"github.com/fentz26/laneplan/internal/overlap"
)

var layoutCmd = &cobra.Command{
	Use:   "layout",
	Short: "Print the computed window and bar geometry",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			l := a.Layout(a.Config.ZoomLevel())
			if viper.GetBool("json") {
				return printJSON(l)
			}
			fmt.Printf("Zoom:   %s (%d px/day)\n", l.Zoom, l.Scale.DayWidthPx)
			fmt.Printf("Window: %s → %s (%d px)\n", l.Scale.WindowStart, l.Scale.WindowEnd, l.Scale.TotalWidthPx)
			if l.Today.Visible {
				fmt.Printf("Today:  %s at %d px\n", l.Today.Date, l.Today.OffsetPx)
			} else {
				fmt.Printf("Today:  %s (outside window)\n", l.Today.Date)
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Lane", "Task", "Start", "End", "Left", "Width", "Conflict"})
			for _, row := range l.Rows {
				if len(row.Bars) == 0 {
					tw.AppendRow(table.Row{row.Lane.Name, "", "", "", "", "", ""})
					continue
				}
				for _, b := range row.Bars {
					conflict := ""
					if b.Conflict {
						conflict = "yes"
					}
					tw.AppendRow(table.Row{row.Lane.Name, b.Task.ID, b.Task.Start, b.Task.End, b.Geometry.LeftPx, b.Geometry.WidthPx, conflict})
				}
			}
			tw.Render()
			for _, t := range l.Dangling {
				fmt.Printf("not shown: %s references missing lane %s\n", t.ID, t.LaneID)
			}
			return nil
		})
	},
}

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "List overlapping tasks within each lane",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			doc := a.Timeline.Snapshot()
			pairs := overlap.Pairs(doc.Tasks)
			if viper.GetBool("json") {
				return printJSON(pairs)
			}
			if len(pairs) == 0 {
				fmt.Println("No conflicts")
				return nil
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Lane", "Task", "Dates", "Overlaps", "Dates"})
			for _, p := range pairs {
				tw.AppendRow(table.Row{
					laneName(doc, p.LaneID),
					p.A.ID, fmt.Sprintf("%s → %s", p.A.Start, p.A.End),
					p.B.ID, fmt.Sprintf("%s → %s", p.B.Start, p.B.End),
				})
			}
			tw.Render()
			return nil
		})
	},
}

var (
	logTask  string
	logLimit int
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show the edit journal",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			entries, err := a.DB.ListEdits(logTask, logLimit)
			if err != nil {
				return err
			}
			if viper.GetBool("json") {
				return printJSON(entries)
			}
			if len(entries) == 0 {
				fmt.Println("No edits recorded")
				return nil
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Time", "Action", "Task", "Lane", "Outcome"})
			for _, e := range entries {
				tw.AppendRow(table.Row{e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, e.TaskID, e.LaneID, e.Outcome})
			}
			tw.Render()
			return nil
		})
	},
}

func init() {
	logCmd.Flags().StringVar(&logTask, "task", "", "only edits touching this task")
	logCmd.Flags().IntVar(&logLimit, "limit", 20, "maximum entries")
}
