package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fentz26/laneplan/internal/app"
	"github.com/fentz26/laneplan/internal/models"
	"github.com/fentz26/laneplan/internal/overlap"
	"github.com/fentz26/laneplan/internal/timeline"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTaskList,
}

var taskAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a task",
	Long:  `Adds a task. Omitted fields come from a draft: the first lane, starting today and lasting four days.`,
	RunE:  runTaskAdd,
}

var taskShowCmd = &cobra.Command{
	Use:   "show [task-id]",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskShow,
}

var taskUpdateCmd = &cobra.Command{
	Use:   "update [task-id]",
	Short: "Change task fields",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskUpdate,
}

var taskMoveCmd = &cobra.Command{
	Use:   "move [task-id] [lane-id]",
	Short: "Move a task to another lane",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskMove,
}

var taskNudgeCmd = &cobra.Command{
	Use:   "nudge [task-id] [days]",
	Short: "Shift a task by whole days",
	Args:  cobra.ExactArgs(2),
	RunE:  runTaskNudge,
}

var taskDeleteCmd = &cobra.Command{
	Use:   "delete [task-id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTaskDelete,
}

var (
	taskID       string
	taskName     string
	taskLane     string
	taskStart    string
	taskEnd      string
	taskAssignee string
	taskDeps     string
	listLane     string
)

func init() {
	taskCmd.AddCommand(taskListCmd, taskAddCmd, taskShowCmd, taskUpdateCmd, taskMoveCmd, taskNudgeCmd, taskDeleteCmd)

	taskListCmd.Flags().StringVar(&listLane, "lane", "", "only tasks in this lane")

	taskAddCmd.Flags().StringVar(&taskID, "id", "", "task id (generated when empty)")
	taskAddCmd.Flags().StringVar(&taskName, "name", "", "task name (required)")
	_ = taskAddCmd.MarkFlagRequired("name")
	for _, c := range []*cobra.Command{taskAddCmd, taskUpdateCmd} {
		c.Flags().StringVar(&taskLane, "lane", "", "lane id")
		c.Flags().StringVar(&taskStart, "start", "", "start date (YYYY-MM-DD)")
		c.Flags().StringVar(&taskEnd, "end", "", "end date, inclusive (YYYY-MM-DD)")
		c.Flags().StringVar(&taskAssignee, "assignee", "", "assignee")
		c.Flags().StringVar(&taskDeps, "deps", "", "comma separated task ids this task depends on")
	}
	taskUpdateCmd.Flags().StringVar(&taskName, "name", "", "task name")
}

// taskPatch builds a patch from the flags that were set on cmd.
func taskPatch(cmd *cobra.Command) (timeline.TaskPatch, error) {
	var p timeline.TaskPatch
	flags := cmd.Flags()
	if flags.Changed("name") {
		p.Name = &taskName
	}
	if flags.Changed("lane") {
		p.LaneID = &taskLane
	}
	if flags.Changed("start") {
		d, err := models.ParseDate(taskStart)
		if err != nil {
			return p, fmt.Errorf("start: %w", err)
		}
		p.Start = &d
	}
	if flags.Changed("end") {
		d, err := models.ParseDate(taskEnd)
		if err != nil {
			return p, fmt.Errorf("end: %w", err)
		}
		p.End = &d
	}
	if flags.Changed("assignee") {
		p.Assignee = &taskAssignee
	}
	if flags.Changed("deps") {
		deps := splitList(taskDeps)
		p.Deps = &deps
	}
	return p, nil
}

func splitList(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func runTaskList(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app.App) error {
		doc := a.Timeline.Snapshot()
		tasks := doc.Tasks
		if listLane != "" {
			tasks = doc.TasksInLane(listLane)
		}
		if viper.GetBool("json") {
			return printJSON(tasks)
		}
		if len(tasks) == 0 {
			fmt.Println("No tasks found")
			return nil
		}
		conflicts := overlap.Conflicts(doc.Tasks)

		tw := table.NewWriter()
		tw.SetOutputMirror(os.Stdout)
		tw.AppendHeader(table.Row{"ID", "Name", "Lane", "Start", "End", "Days", "Assignee", "Conflict"})
		for _, t := range tasks {
			conflict := ""
			if conflicts[t.ID] {
				conflict = "yes"
			}
			tw.AppendRow(table.Row{t.ID, truncate(t.Name, 40), laneName(doc, t.LaneID), t.Start, t.End, t.DurationDays(), t.Assignee, conflict})
		}
		tw.Render()
		return nil
	})
}

func runTaskAdd(cmd *cobra.Command, args []string) error {
	patch, err := taskPatch(cmd)
	if err != nil {
		return err
	}
	return withApp(func(a *app.App) error {
		draft, err := a.Timeline.NewDraft(a.Today())
		if err != nil {
			return err
		}
		if taskID != "" {
			if _, exists := a.Timeline.Task(taskID); exists {
				return fmt.Errorf("task %s: %w", taskID, timeline.ErrDuplicateID)
			}
			draft.ID = taskID
		}
		task, _, err := a.Timeline.SaveTask(draft, patch)
		if err != nil {
			return err
		}
		if viper.GetBool("json") {
			return printJSON(task)
		}
		fmt.Printf("Created task: %s (%s → %s)\n", task.ID, task.Start, task.End)
		return nil
	})
}

func runTaskShow(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app.App) error {
		doc := a.Timeline.Snapshot()
		t, ok := doc.Task(args[0])
		if !ok {
			return fmt.Errorf("task %s: %w", args[0], timeline.ErrTaskNotFound)
		}
		if viper.GetBool("json") {
			return printJSON(t)
		}
		fmt.Printf("ID:       %s\n", t.ID)
		fmt.Printf("Name:     %s\n", t.Name)
		fmt.Printf("Lane:     %s (%s)\n", laneName(doc, t.LaneID), t.LaneID)
		fmt.Printf("Dates:    %s → %s (%d days)\n", t.Start, t.End, t.DurationDays())
		if t.Assignee != "" {
			fmt.Printf("Assignee: %s\n", t.Assignee)
		}
		if len(t.Deps) > 0 {
			fmt.Printf("Deps:     %s\n", strings.Join(t.Deps, ", "))
		}
		if overlap.HasConflict(t, doc.TasksInLane(t.LaneID)) {
			fmt.Println("Conflict: overlaps another task in its lane")
		}
		return nil
	})
}

func runTaskUpdate(cmd *cobra.Command, args []string) error {
	patch, err := taskPatch(cmd)
	if err != nil {
		return err
	}
	return withApp(func(a *app.App) error {
		task, err := a.Timeline.UpdateTask(args[0], patch)
		if err != nil {
			return err
		}
		if viper.GetBool("json") {
			return printJSON(task)
		}
		fmt.Printf("Updated task: %s (%s → %s)\n", task.ID, task.Start, task.End)
		return nil
	})
}

func runTaskMove(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app.App) error {
		moved, err := a.Controller.AcceptDrop(args[1], args[0])
		if err != nil {
			return err
		}
		if !moved {
			fmt.Println("Task already in that lane")
			return nil
		}
		fmt.Printf("Moved %s to %s\n", args[0], args[1])
		return nil
	})
}

func runTaskNudge(cmd *cobra.Command, args []string) error {
	days, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("days must be an integer: %q", args[1])
	}
	return withApp(func(a *app.App) error {
		task, err := a.Controller.Nudge(args[0], days)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %s → %s\n", task.ID, task.Start, task.End)
		return nil
	})
}

func runTaskDelete(cmd *cobra.Command, args []string) error {
	return withApp(func(a *app.App) error {
		if err := a.Timeline.DeleteTask(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted task: %s\n", args[0])
		return nil
	})
}

func laneName(doc models.Document, id string) string {
	if l, ok := doc.Lane(id); ok {
		return l.Name
	}
	return "(missing " + id + ")"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n-3] + "..."
}

