// Package config loads laneplan.yml.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fentz26/laneplan/internal/models"
	"github.com/fentz26/laneplan/internal/persist"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up in the home directory.
const FileName = "laneplan.yml"

// Config models laneplan.yml.
type Config struct {
	DBPath     string         `yaml:"db_path"`
	StorageKey string         `yaml:"storage_key"`
	Zoom       string         `yaml:"zoom"`
	Autosave   AutosaveConfig `yaml:"autosave"`
	TUI        TUIConfig      `yaml:"tui"`
	Server     ServerConfig   `yaml:"server"`
	Log        LogConfig      `yaml:"log"`
}

type AutosaveConfig struct {
	Debounce time.Duration `yaml:"debounce"`
}

type TUIConfig struct {
	// PxPerCell is how many timeline pixels one terminal column stands for.
	PxPerCell int `yaml:"px_per_cell"`
}

type ServerConfig struct {
	Listen string `yaml:"listen"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Dir is ~/.laneplan, where the database and log file live by default.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".laneplan"
	}
	return filepath.Join(home, ".laneplan")
}

// DefaultPath is the config file location used when none is given.
func DefaultPath() string {
	return filepath.Join(Dir(), FileName)
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := Dir()
	return &Config{
		DBPath:     filepath.Join(dir, "laneplan.db"),
		StorageKey: persist.DefaultKey,
		Zoom:       string(models.ZoomWeek),
		Autosave:   AutosaveConfig{Debounce: 250 * time.Millisecond},
		TUI:        TUIConfig{PxPerCell: 10},
		Server:     ServerConfig{Listen: "127.0.0.1:7466"},
		Log:        LogConfig{Level: "info", File: filepath.Join(dir, "laneplan.log")},
	}
}

// Load reads config from path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := FromYAML(data)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// FromYAML parses config bytes over the defaults and validates the result.
func FromYAML(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse yaml: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate ensures the config is usable.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("config.db_path is required")
	}
	if c.StorageKey == "" {
		return fmt.Errorf("config.storage_key is required")
	}
	if _, err := models.ParseZoom(c.Zoom); err != nil {
		return fmt.Errorf("config.zoom: %w", err)
	}
	if c.Autosave.Debounce < 0 {
		return fmt.Errorf("config.autosave.debounce must not be negative")
	}
	if c.TUI.PxPerCell <= 0 {
		return fmt.Errorf("config.tui.px_per_cell must be positive")
	}
	if c.Server.Listen == "" {
		return fmt.Errorf("config.server.listen is required")
	}
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config.log.level: %w", err)
	}
	return nil
}

// ZoomLevel returns the configured zoom. Validate has already checked it.
func (c *Config) ZoomLevel() models.Zoom {
	z, err := models.ParseZoom(c.Zoom)
	if err != nil {
		return models.ZoomWeek
	}
	return z
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown level %q", s)
}
