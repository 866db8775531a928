package interaction

import (
	"errors"
	"testing"

	"github.com/fentz26/laneplan/internal/models"
	"github.com/fentz26/laneplan/internal/timeline"
)

const dayWidth = 80

var d = models.MustParseDate

func newTestController(t *testing.T) (*Controller, *timeline.Store, *int) {
	t.Helper()
	store := timeline.New(models.Document{
		Lanes: []models.Lane{{ID: "l1", Name: "Eng"}, {ID: "l2", Name: "Design"}},
		Tasks: []models.Task{
			{ID: "t1", Name: "Build", LaneID: "l1", Start: d("2024-01-10"), End: d("2024-01-12")},
			{ID: "t2", Name: "Mocks", LaneID: "l2", Start: d("2024-01-01"), End: d("2024-01-03")},
		},
	})
	writes := 0
	store.Subscribe(func(timeline.Mutation, models.Document) { writes++ })
	return NewController(store, nil), store, &writes
}

func TestDragTranslation(t *testing.T) {
	c, store, writes := newTestController(t)

	if err := c.PointerDown("t1", DragMove, 100, 20, dayWidth); err != nil {
		t.Fatalf("PointerDown failed: %v", err)
	}
	s, err := c.PointerMove(100+dayWidth*3, 20)
	if err != nil {
		t.Fatalf("PointerMove failed: %v", err)
	}
	if s.PreviewStart != d("2024-01-13") || s.PreviewEnd != d("2024-01-15") {
		t.Errorf("Unexpected preview %s..%s", s.PreviewStart, s.PreviewEnd)
	}

	// Preview is local: the store still has the original dates.
	if task, _ := store.Task("t1"); task.Start != d("2024-01-10") || *writes != 0 {
		t.Fatalf("Store written during preview: %+v writes=%d", task, *writes)
	}

	out, err := c.PointerUp(100+dayWidth*3, 20)
	if err != nil {
		t.Fatalf("PointerUp failed: %v", err)
	}
	if out.Result != ResultCommitted {
		t.Errorf("Expected committed, got %s", out.Result)
	}
	task, _ := store.Task("t1")
	if task.Start != d("2024-01-13") || task.End != d("2024-01-15") {
		t.Errorf("Expected 2024-01-13..2024-01-15, got %s..%s", task.Start, task.End)
	}
	if *writes != 1 {
		t.Errorf("Expected exactly one store write, got %d", *writes)
	}
	if _, ok := c.Active(); ok {
		t.Error("Drag should be released after pointer up")
	}
}

func TestPreviewRecomputedFromAnchor(t *testing.T) {
	c, _, _ := newTestController(t)
	if err := c.PointerDown("t1", DragMove, 0, 0, dayWidth); err != nil {
		t.Fatalf("PointerDown failed: %v", err)
	}
	// Many small moves must not accumulate rounding drift.
	for x := 1; x <= 39; x++ {
		if _, err := c.PointerMove(float64(x), 0); err != nil {
			t.Fatalf("PointerMove failed: %v", err)
		}
	}
	s, _ := c.Active()
	if s.PreviewStart != d("2024-01-10") {
		t.Errorf("39px at 80px/day should not move the task, got %s", s.PreviewStart)
	}
	s, _ = c.PointerMove(40, 0)
	if s.PreviewStart != d("2024-01-11") {
		t.Errorf("40px at 80px/day should round to one day, got %s", s.PreviewStart)
	}
	s, _ = c.PointerMove(-40, 0)
	if s.PreviewStart != d("2024-01-10") {
		t.Errorf("-40px should round toward +inf to zero days, got %s", s.PreviewStart)
	}
}

func TestClickWithoutMovement(t *testing.T) {
	c, store, writes := newTestController(t)
	if err := c.PointerDown("t1", DragMove, 50, 10, dayWidth); err != nil {
		t.Fatalf("PointerDown failed: %v", err)
	}
	out, err := c.PointerUp(50, 10)
	if err != nil {
		t.Fatalf("PointerUp failed: %v", err)
	}
	if out.Result != ResultClick || out.Task.ID != "t1" {
		t.Errorf("Expected click on t1, got %+v", out)
	}
	if *writes != 0 {
		t.Errorf("Click must not write, got %d writes", *writes)
	}
	if task, _ := store.Task("t1"); task.Start != d("2024-01-10") || task.End != d("2024-01-12") {
		t.Errorf("Task changed by click: %+v", task)
	}
}

func TestSmallMoveIsNotAClick(t *testing.T) {
	c, _, writes := newTestController(t)
	if err := c.PointerDown("t1", DragMove, 50, 10, dayWidth); err != nil {
		t.Fatalf("PointerDown failed: %v", err)
	}
	out, err := c.PointerUp(60, 10)
	if err != nil {
		t.Fatalf("PointerUp failed: %v", err)
	}
	if out.Result != ResultUnchanged {
		t.Errorf("Expected unchanged, got %s", out.Result)
	}
	if *writes != 0 {
		t.Errorf("Unchanged drag must not write, got %d writes", *writes)
	}
}

func TestSecondDragRefused(t *testing.T) {
	c, _, _ := newTestController(t)
	if err := c.PointerDown("t1", DragMove, 0, 0, dayWidth); err != nil {
		t.Fatalf("PointerDown failed: %v", err)
	}
	if err := c.PointerDown("t2", DragMove, 0, 0, dayWidth); !errors.Is(err, ErrDragInProgress) {
		t.Errorf("Expected ErrDragInProgress, got %v", err)
	}
	if s, _ := c.Active(); s.TaskID != "t1" {
		t.Errorf("First drag replaced by second: %s", s.TaskID)
	}
	if _, err := c.Nudge("t2", 1); !errors.Is(err, ErrDragInProgress) {
		t.Errorf("Expected nudge refused during drag, got %v", err)
	}
}

func TestCancelRestoresOriginal(t *testing.T) {
	c, store, writes := newTestController(t)
	_ = c.PointerDown("t1", DragMove, 0, 0, dayWidth)
	_, _ = c.PointerMove(dayWidth*5, 0)
	if !c.Cancel() {
		t.Fatal("Cancel should report an active drag")
	}
	if task, _ := store.Task("t1"); task.Start != d("2024-01-10") || *writes != 0 {
		t.Errorf("Cancel touched the store: %+v writes=%d", task, *writes)
	}
	if _, err := c.PointerUp(0, 0); !errors.Is(err, ErrNotDragging) {
		t.Errorf("Expected ErrNotDragging, got %v", err)
	}
}

func TestResizeNeverInverts(t *testing.T) {
	c, store, _ := newTestController(t)
	_ = c.PointerDown("t1", DragResizeEnd, 0, 0, dayWidth)
	s, _ := c.PointerMove(-dayWidth*10, 0)
	if s.PreviewEnd != d("2024-01-10") || s.PreviewStart != d("2024-01-10") {
		t.Errorf("Resize end should clamp at start, got %s..%s", s.PreviewStart, s.PreviewEnd)
	}
	out, err := c.PointerUp(-dayWidth*10, 0)
	if err != nil || out.Result != ResultCommitted {
		t.Fatalf("Expected committed resize, got %+v err=%v", out, err)
	}
	if task, _ := store.Task("t1"); task.End != d("2024-01-10") {
		t.Errorf("Unexpected end %s", task.End)
	}

	_ = c.PointerDown("t2", DragResizeStart, 0, 0, dayWidth)
	s, _ = c.PointerMove(-dayWidth*2, 0)
	if s.PreviewStart != d("2023-12-30") || s.PreviewEnd != d("2024-01-03") {
		t.Errorf("Unexpected resize-start preview %s..%s", s.PreviewStart, s.PreviewEnd)
	}
}

func TestOverlayFollowsPreview(t *testing.T) {
	c, store, _ := newTestController(t)
	_ = c.PointerDown("t1", DragMove, 0, 0, dayWidth)
	_, _ = c.PointerMove(dayWidth, 0)

	doc := store.Snapshot()
	over := c.Overlay(doc)
	got, _ := over.Task("t1")
	if got.Start != d("2024-01-11") {
		t.Errorf("Overlay should carry preview start, got %s", got.Start)
	}
	if orig, _ := doc.Task("t1"); orig.Start != d("2024-01-10") {
		t.Error("Overlay mutated the input document")
	}
}

func TestNudge(t *testing.T) {
	c, store, writes := newTestController(t)
	if _, err := c.Nudge("t1", NudgeDays(true, false)); err != nil {
		t.Fatalf("Nudge failed: %v", err)
	}
	if _, err := c.Nudge("t1", NudgeDays(false, true)); err != nil {
		t.Fatalf("Nudge failed: %v", err)
	}
	task, _ := store.Task("t1")
	if task.Start != d("2024-01-04") || task.End != d("2024-01-06") {
		t.Errorf("Expected +1 then -7 days, got %s..%s", task.Start, task.End)
	}
	if *writes != 2 {
		t.Errorf("Each nudge commits once, got %d writes", *writes)
	}
}

func TestLaneDrop(t *testing.T) {
	c, store, _ := newTestController(t)
	if _, err := c.DropOnLane("l2"); !errors.Is(err, ErrNoLaneDrag) {
		t.Errorf("Expected ErrNoLaneDrag, got %v", err)
	}
	if err := c.StartLaneDrag("t1"); err != nil {
		t.Fatalf("StartLaneDrag failed: %v", err)
	}
	c.LaneDragOver("l2")
	if ld, _ := c.ActiveLaneDrag(); ld.OverLane != "l2" || ld.FromLane != "l1" {
		t.Errorf("Unexpected lane drag %+v", ld)
	}
	c.LaneDragLeave("l2")
	if ld, _ := c.ActiveLaneDrag(); ld.OverLane != "" {
		t.Errorf("Drag leave should clear target, got %q", ld.OverLane)
	}

	moved, err := c.DropOnLane("l2")
	if err != nil || !moved {
		t.Fatalf("DropOnLane failed: moved=%v err=%v", moved, err)
	}
	task, _ := store.Task("t1")
	if task.LaneID != "l2" || task.Start != d("2024-01-10") || task.End != d("2024-01-12") {
		t.Errorf("Drop should change only the lane, got %+v", task)
	}
	if _, ok := c.ActiveLaneDrag(); ok {
		t.Error("Lane drag should end on drop")
	}
	if _, err := c.AcceptDrop("ghost", "t1"); !errors.Is(err, timeline.ErrLaneNotFound) {
		t.Errorf("Expected ErrLaneNotFound, got %v", err)
	}
}
