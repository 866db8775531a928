package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fentz26/laneplan/internal/app"
)

var laneCmd = &cobra.Command{
	Use:   "lane",
	Short: "Manage lanes",
}

var laneListCmd = &cobra.Command{
	Use:   "list",
	Short: "List lanes",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			doc := a.Timeline.Snapshot()
			if viper.GetBool("json") {
				return printJSON(doc.Lanes)
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Name", "Tasks"})
			for _, l := range doc.Lanes {
				tw.AppendRow(table.Row{l.ID, l.Name, len(doc.TasksInLane(l.ID))})
			}
			tw.Render()
			return nil
		})
	},
}

var laneAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Add a lane",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			lane, err := a.Timeline.AddLane(strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Printf("Created lane: %s (%s)\n", lane.ID, lane.Name)
			return nil
		})
	},
}

var laneRenameCmd = &cobra.Command{
	Use:   "rename [lane-id] [name]",
	Short: "Rename a lane",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			return a.Timeline.RenameLane(args[0], strings.Join(args[1:], " "))
		})
	},
}

var laneDeleteCmd = &cobra.Command{
	Use:   "delete [lane-id]",
	Short: "Delete an empty lane",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			if err := a.Timeline.DeleteLane(args[0]); err != nil {
				return err
			}
			fmt.Printf("Deleted lane: %s\n", args[0])
			return nil
		})
	},
}

func init() {
	laneCmd.AddCommand(laneListCmd, laneAddCmd, laneRenameCmd, laneDeleteCmd)
}
