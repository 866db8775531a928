package app

import (
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/fentz26/laneplan/internal/config"
	"github.com/fentz26/laneplan/internal/interaction"
	"github.com/fentz26/laneplan/internal/models"
)

var today = models.MustParseDate("2024-10-02")

func newTestApp(t *testing.T, dbPath string) *App {
	t.Helper()
	cfg := config.Default()
	cfg.DBPath = dbPath
	cfg.Autosave.Debounce = 0

	a, err := Open(Options{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  func() models.Date { return today },
	})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	return a
}

func TestOpenSeedsAndPersists(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	a := newTestApp(t, dbPath)
	if !a.Seeded {
		t.Error("Empty database should load the seed")
	}
	if _, err := a.Timeline.AddLane("Ops"); err != nil {
		t.Fatalf("AddLane failed: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	b := newTestApp(t, dbPath)
	defer b.Close()
	if b.Seeded {
		t.Error("Second open should load the saved document")
	}
	lanes := b.Timeline.Lanes()
	if lanes[len(lanes)-1].Name != "Ops" {
		t.Errorf("Autosaved lane missing, got %+v", lanes)
	}
	edits, err := b.DB.ListEdits("", 0)
	if err != nil {
		t.Fatalf("ListEdits failed: %v", err)
	}
	if len(edits) != 1 || edits[0].Action != "lane.add" {
		t.Errorf("Expected one journaled lane.add, got %+v", edits)
	}
}

func TestImportRejectedKeepsDocument(t *testing.T) {
	a := newTestApp(t, filepath.Join(t.TempDir(), "test.db"))
	defer a.Close()

	before := a.Timeline.Snapshot()
	_, err := a.Import([]byte("not json at all"))
	if !IsParseError(err) {
		t.Fatalf("Expected parse error, got %v", err)
	}
	after := a.Timeline.Snapshot()
	if len(after.Tasks) != len(before.Tasks) || len(after.Lanes) != len(before.Lanes) {
		t.Error("Rejected import changed the document")
	}
}

func TestExportImportReplaces(t *testing.T) {
	a := newTestApp(t, filepath.Join(t.TempDir(), "test.db"))
	defer a.Close()

	data, err := a.Export()
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}
	if err := a.Timeline.DeleteTask("t1"); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	doc, err := a.Import(data)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}
	if _, ok := a.Timeline.Task("t1"); !ok || len(doc.Tasks) != 6 {
		t.Error("Import should fully replace the document")
	}
}

func TestResetRestoresSeed(t *testing.T) {
	a := newTestApp(t, filepath.Join(t.TempDir(), "test.db"))
	defer a.Close()

	if err := a.Timeline.DeleteTask("t1"); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if err := a.Reset(); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	if _, ok := a.Timeline.Task("t1"); !ok {
		t.Error("Reset should restore seed tasks")
	}
}

func TestLayoutUsesDragPreview(t *testing.T) {
	a := newTestApp(t, filepath.Join(t.TempDir(), "test.db"))
	defer a.Close()

	base := a.Layout(models.ZoomWeek)
	before, _, ok := base.Bar("t1")
	if !ok {
		t.Fatal("Seed task t1 should be laid out")
	}
	// t1 is the earliest task, so it pins the window start.
	if err := a.Controller.PointerDown("t1", interaction.DragMove, 0, 0, 80); err != nil {
		t.Fatalf("PointerDown failed: %v", err)
	}
	if _, err := a.Controller.PointerMove(-240, 0); err != nil {
		t.Fatalf("PointerMove failed: %v", err)
	}
	mid := a.Layout(models.ZoomWeek)
	during, _, _ := mid.Bar("t1")
	if during.Task.Start != before.Task.Start.AddDays(-3) {
		t.Errorf("Layout should show preview start, got %s", during.Task.Start)
	}
	if committed, _ := a.Timeline.Task("t1"); committed.Start != before.Task.Start {
		t.Error("Store must keep committed dates during drag")
	}

	if mid.Scale != base.Scale {
		t.Errorf("Window must not follow the preview: before %+v, during %+v", base.Scale, mid.Scale)
	}
	if len(mid.Columns) != len(base.Columns) || mid.Columns[0] != base.Columns[0] {
		t.Error("Axis columns must not change during a drag")
	}
	if mid.Today != base.Today {
		t.Errorf("Today marker moved during drag: %+v -> %+v", base.Today, mid.Today)
	}
	if during.Geometry.LeftPx != before.Geometry.LeftPx-240 {
		t.Errorf("Dragged bar should move 240px left, got %d -> %d", before.Geometry.LeftPx, during.Geometry.LeftPx)
	}
	for _, row := range base.Rows {
		for _, b := range row.Bars {
			if b.Task.ID == "t1" {
				continue
			}
			if got, _, _ := mid.Bar(b.Task.ID); got.Geometry != b.Geometry {
				t.Errorf("Bar %s moved during an unrelated drag: %+v -> %+v", b.Task.ID, b.Geometry, got.Geometry)
			}
		}
	}
	a.Controller.Cancel()
}
