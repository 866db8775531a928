package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/fentz26/laneplan/internal/app"
	"github.com/fentz26/laneplan/internal/persist"
)

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Write the timeline as JSON",
	Long:  `Writes the timeline to path, or to ` + persist.ExportFileName + ` when no path is given. Use - for stdout.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path := persist.ExportFileName
		if len(args) == 1 {
			path = args[0]
		}
		return withApp(func(a *app.App) error {
			data, err := a.Export()
			if err != nil {
				return err
			}
			if path == "-" {
				_, err := os.Stdout.Write(data)
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Printf("Exported to %s\n", path)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Replace the timeline with a JSON export",
	Long:  `Replaces the whole timeline with the document at path. Use - for stdin. A rejected file leaves the timeline untouched.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		return withApp(func(a *app.App) error {
			doc, err := a.Import(data)
			if err != nil {
				return err
			}
			fmt.Printf("Imported %d lanes, %d tasks\n", len(doc.Lanes), len(doc.Tasks))
			return nil
		})
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard the saved timeline and load the sample data",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			if err := a.Reset(); err != nil {
				return err
			}
			fmt.Println("Timeline reset")
			return nil
		})
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show where the timeline is stored",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			doc := a.Timeline.Snapshot()
			fmt.Printf("Database:  %s\n", a.Config.DBPath)
			fmt.Printf("Key:       %s\n", a.Persist.Key())
			savedAt, ok, err := a.DB.UpdatedAt(a.Persist.Key())
			if err != nil {
				return err
			}
			if ok {
				fmt.Printf("Saved at:  %s\n", savedAt.Local().Format("2006-01-02 15:04:05"))
			}
			if a.Seeded {
				fmt.Println("Source:    sample data (nothing was saved yet)")
			}
			fmt.Printf("Lanes:     %d\n", len(doc.Lanes))
			fmt.Printf("Tasks:     %d\n", len(doc.Tasks))
			return nil
		})
	},
}
