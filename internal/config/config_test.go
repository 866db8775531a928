package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fentz26/laneplan/internal/models"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config invalid: %v", err)
	}
	if cfg.StorageKey != "gantt_state_v1" {
		t.Errorf("Unexpected storage key %s", cfg.StorageKey)
	}
	if cfg.ZoomLevel() != models.ZoomWeek {
		t.Errorf("Expected week zoom, got %s", cfg.ZoomLevel())
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Server.Listen != "127.0.0.1:7466" {
		t.Errorf("Expected defaults, got %+v", cfg)
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	data := []byte(`
db_path: /tmp/plan.db
zoom: month
autosave:
  debounce: 1s
tui:
  px_per_cell: 4
log:
  level: debug
`)
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DBPath != "/tmp/plan.db" || cfg.ZoomLevel() != models.ZoomMonth {
		t.Errorf("Unexpected config %+v", cfg)
	}
	if cfg.Autosave.Debounce != time.Second {
		t.Errorf("Expected 1s debounce, got %s", cfg.Autosave.Debounce)
	}
	if cfg.TUI.PxPerCell != 4 {
		t.Errorf("Expected 4 px per cell, got %d", cfg.TUI.PxPerCell)
	}
	if cfg.StorageKey != "gantt_state_v1" {
		t.Error("Unset fields should keep defaults")
	}
}

func TestFromYAMLEmpty(t *testing.T) {
	if _, err := FromYAML(nil); err != nil {
		t.Errorf("Empty config should yield defaults, got %v", err)
	}
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad zoom", "zoom: year"},
		{"negative debounce", "autosave:\n  debounce: -1s"},
		{"zero px per cell", "tui:\n  px_per_cell: 0"},
		{"bad level", "log:\n  level: loud"},
		{"unknown field", "colour: red"},
		{"empty key", `storage_key: ""`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := FromYAML([]byte(tt.yaml)); err == nil {
				t.Error("Expected config to be rejected")
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug": slog.LevelDebug,
		"":      slog.LevelInfo,
		"WARN":  slog.LevelWarn,
		"error": slog.LevelError,
	}
	for in, want := range tests {
		got, err := ParseLevel(in)
		if err != nil || got != want {
			t.Errorf("ParseLevel(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
}
