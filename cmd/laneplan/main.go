package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fentz26/laneplan/internal/app"
	"github.com/fentz26/laneplan/internal/config"
)

var rootCmd = &cobra.Command{
	Use:           "laneplan",
	Short:         "laneplan - lane based Gantt timelines in the terminal",
	Long:          `laneplan keeps a timeline of tasks grouped into lanes. Edit it with the mouse in the TUI, from the command line, or over the HTTP API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", config.DefaultPath(), "config file")
	rootCmd.PersistentFlags().String("db", "", "SQLite database path (overrides config)")
	rootCmd.PersistentFlags().String("zoom", "", "zoom level: week or month (overrides config)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().Bool("json", false, "output JSON")
	for _, name := range []string{"config", "db", "zoom", "log-level", "json"} {
		_ = viper.BindPFlag(name, rootCmd.PersistentFlags().Lookup(name))
	}

	rootCmd.AddCommand(tuiCmd, serveCmd, taskCmd, laneCmd, exportCmd, importCmd, resetCmd,
		layoutCmd, conflictsCmd, logCmd, statusCmd)
}

func initConfig() {
	viper.SetEnvPrefix("LANEPLAN")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// loadConfig reads the config file and applies flag and environment overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(viper.GetString("config"))
	if err != nil {
		return nil, err
	}
	if v := viper.GetString("db"); v != "" {
		cfg.DBPath = v
	}
	if v := viper.GetString("zoom"); v != "" {
		cfg.Zoom = v
	}
	if v := viper.GetString("log-level"); v != "" {
		cfg.Log.Level = v
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openApp opens the timeline. Logs go to w, or to the configured log file
// when w is nil.
func openApp(w io.Writer) (*app.App, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	closers := []func(){}
	if w == nil {
		f, err := openLogFile(cfg.Log.File)
		if err != nil {
			return nil, nil, err
		}
		closers = append(closers, func() { f.Close() })
		w = f
	}
	logger, err := app.NewLogger(w, cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	slog.SetDefault(logger)

	a, err := app.Open(app.Options{Config: cfg, Logger: logger})
	if err != nil {
		for _, c := range closers {
			c()
		}
		return nil, nil, err
	}
	cleanup := func() {
		if err := a.Close(); err != nil {
			logger.Error("close timeline", "error", err)
		}
		for _, c := range closers {
			c()
		}
	}
	return a, cleanup, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

// withApp runs fn against an open timeline and flushes it afterwards.
func withApp(fn func(a *app.App) error) error {
	a, cleanup, err := openApp(nil)
	if err != nil {
		return err
	}
	defer cleanup()
	return fn(a)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
