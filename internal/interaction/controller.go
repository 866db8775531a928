// Package interaction turns pointer, keyboard and drop events on task bars into
// Document Store writes.
//
// A pointer drag keeps its dates in a local preview until release. Only the
// release (or a keyboard nudge, or a lane drop) writes to the store, so every
// other reader keeps seeing the committed task for the whole gesture.
package interaction

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/fentz26/laneplan/internal/layout"
	"github.com/fentz26/laneplan/internal/models"
)

// Store is the subset of the Document Store the controller writes through.
type Store interface {
	Task(id string) (models.Task, bool)
	SetDates(id string, start, end models.Date) (bool, error)
	MoveTask(id, laneID string) (bool, error)
}

// Mode is what a pointer drag does to the task's dates.
type Mode int

const (
	// DragMove shifts both endpoints.
	DragMove Mode = iota
	// DragResizeStart shifts the start only.
	DragResizeStart
	// DragResizeEnd shifts the end only.
	DragResizeEnd
)

func (m Mode) String() string {
	switch m {
	case DragResizeStart:
		return "resize-start"
	case DragResizeEnd:
		return "resize-end"
	default:
		return "move"
	}
}

// Session is one in-flight pointer drag.
type Session struct {
	TaskID        string
	Mode          Mode
	AnchorX       float64
	AnchorY       float64
	DayWidthPx    int
	OriginalStart models.Date
	OriginalEnd   models.Date
	PreviewStart  models.Date
	PreviewEnd    models.Date
}

// Result classifies a finished pointer drag.
type Result int

const (
	// ResultClick is a press and release with no net pointer movement.
	ResultClick Result = iota
	// ResultUnchanged is a drag that moved the pointer but landed on the original dates.
	ResultUnchanged
	// ResultCommitted is a drag whose new dates were written to the store.
	ResultCommitted
)

func (r Result) String() string {
	switch r {
	case ResultClick:
		return "click"
	case ResultUnchanged:
		return "unchanged"
	default:
		return "committed"
	}
}

// Outcome is returned on pointer release.
type Outcome struct {
	Result Result
	Task   models.Task
}

// LaneDrag is an in-flight cross-lane move started from a bar's lane handle.
type LaneDrag struct {
	TaskID   string
	FromLane string
	OverLane string
}

// Controller owns the single active drag. It is safe for concurrent use.
type Controller struct {
	mu       sync.Mutex
	store    Store
	logger   *slog.Logger
	session  *Session
	laneDrag *LaneDrag
}

// NewController creates a controller writing through store. A nil logger uses slog.Default().
func NewController(store Store, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{store: store, logger: logger}
}

// --- Pointer drag ---

// PointerDown starts a drag on a task bar. A second drag while one is active is
// refused with ErrDragInProgress and leaves the first untouched.
func (c *Controller) PointerDown(taskID string, mode Mode, x, y float64, dayWidthPx int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil || c.laneDrag != nil {
		c.logger.Warn("ignoring pointer down during active drag", "task", taskID)
		return ErrDragInProgress
	}
	if dayWidthPx <= 0 {
		return fmt.Errorf("pointer down on %s: day width %d", taskID, dayWidthPx)
	}
	task, ok := c.store.Task(taskID)
	if !ok {
		return fmt.Errorf("pointer down on %s: %w", taskID, ErrUnknownTask)
	}
	c.session = &Session{
		TaskID:        taskID,
		Mode:          mode,
		AnchorX:       x,
		AnchorY:       y,
		DayWidthPx:    dayWidthPx,
		OriginalStart: task.Start,
		OriginalEnd:   task.End,
		PreviewStart:  task.Start,
		PreviewEnd:    task.End,
	}
	return nil
}

// PointerMove recomputes the preview from the anchored dates and the total
// pointer displacement.
func (c *Controller) PointerMove(x, y float64) (Session, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		return Session{}, ErrNotDragging
	}
	c.session.updatePreview(x)
	return *c.session, nil
}

// PointerUp ends the drag at (x, y). No net movement is a click and writes
// nothing. Otherwise the preview is committed as one date update, which is a
// no-op when the dates did not change. The drag is released on every path.
func (c *Controller) PointerUp(x, y float64) (Outcome, error) {
	c.mu.Lock()
	s := c.session
	c.session = nil
	c.mu.Unlock()

	if s == nil {
		return Outcome{}, ErrNotDragging
	}
	if x == s.AnchorX && y == s.AnchorY {
		task, _ := c.store.Task(s.TaskID)
		return Outcome{Result: ResultClick, Task: task}, nil
	}

	s.updatePreview(x)
	if s.PreviewStart.Equal(s.OriginalStart) && s.PreviewEnd.Equal(s.OriginalEnd) {
		task, _ := c.store.Task(s.TaskID)
		return Outcome{Result: ResultUnchanged, Task: task}, nil
	}

	changed, err := c.store.SetDates(s.TaskID, s.PreviewStart, s.PreviewEnd)
	if err != nil {
		c.logger.Warn("drag commit rejected", "task", s.TaskID, "mode", s.Mode.String(), "error", err)
		return Outcome{}, fmt.Errorf("commit drag of %s: %w", s.TaskID, err)
	}
	task, _ := c.store.Task(s.TaskID)
	if !changed {
		return Outcome{Result: ResultUnchanged, Task: task}, nil
	}
	return Outcome{Result: ResultCommitted, Task: task}, nil
}

// Cancel drops the active drag. The store was never written, so the task keeps
// its original dates.
func (c *Controller) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	active := c.session != nil
	c.session = nil
	return active
}

// Active returns the current drag session, if any.
func (c *Controller) Active() (Session, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.session == nil {
		return Session{}, false
	}
	return *c.session, true
}

// Overlay returns doc with the dragged task's dates replaced by the preview.
// Renderers use it so bars and conflicts follow the gesture.
func (c *Controller) Overlay(doc models.Document) models.Document {
	s, ok := c.Active()
	if !ok {
		return doc
	}
	out := doc.Clone()
	for i := range out.Tasks {
		if out.Tasks[i].ID == s.TaskID {
			out.Tasks[i].Start = s.PreviewStart
			out.Tasks[i].End = s.PreviewEnd
		}
	}
	return out
}

func (s *Session) updatePreview(x float64) {
	delta := layout.PixelDeltaToDayDelta(x-s.AnchorX, s.DayWidthPx)
	start, end := s.OriginalStart, s.OriginalEnd
	switch s.Mode {
	case DragMove:
		start, end = start.AddDays(delta), end.AddDays(delta)
	case DragResizeStart:
		start = models.MinDate(start.AddDays(delta), end)
	case DragResizeEnd:
		end = models.MaxDate(end.AddDays(delta), start)
	}
	s.PreviewStart, s.PreviewEnd = start, end
}

// --- Keyboard ---

// NudgeDays is the day shift for an arrow key: ±1, or ±7 with shift held.
func NudgeDays(right, shift bool) int {
	days := 1
	if shift {
		days = 7
	}
	if !right {
		days = -days
	}
	return days
}

// Nudge shifts both endpoints of a task and commits immediately. It is refused
// while a pointer drag is active so the gesture's anchored dates stay valid.
func (c *Controller) Nudge(taskID string, days int) (models.Task, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil {
		return models.Task{}, ErrDragInProgress
	}
	task, ok := c.store.Task(taskID)
	if !ok {
		return models.Task{}, fmt.Errorf("nudge %s: %w", taskID, ErrUnknownTask)
	}
	if days == 0 {
		return task, nil
	}
	start, end := task.Start.AddDays(days), task.End.AddDays(days)
	if _, err := c.store.SetDates(taskID, start, end); err != nil {
		return models.Task{}, fmt.Errorf("nudge %s by %d: %w", taskID, days, err)
	}
	task.Start, task.End = start, end
	return task, nil
}

// --- Cross-lane drag and drop ---

// StartLaneDrag begins a lane move carrying taskID as its payload.
func (c *Controller) StartLaneDrag(taskID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session != nil || c.laneDrag != nil {
		return ErrDragInProgress
	}
	task, ok := c.store.Task(taskID)
	if !ok {
		return fmt.Errorf("lane drag %s: %w", taskID, ErrUnknownTask)
	}
	c.laneDrag = &LaneDrag{TaskID: taskID, FromLane: task.LaneID}
	return nil
}

// LaneDragOver marks laneID as the current drop target.
func (c *Controller) LaneDragOver(laneID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.laneDrag != nil {
		c.laneDrag.OverLane = laneID
	}
}

// LaneDragLeave clears the drop target if it is laneID.
func (c *Controller) LaneDragLeave(laneID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.laneDrag != nil && c.laneDrag.OverLane == laneID {
		c.laneDrag.OverLane = ""
	}
}

// ActiveLaneDrag returns the in-flight lane move, if any.
func (c *Controller) ActiveLaneDrag() (LaneDrag, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.laneDrag == nil {
		return LaneDrag{}, false
	}
	return *c.laneDrag, true
}

// DropOnLane accepts the dragged task into laneID. Only the lane changes.
func (c *Controller) DropOnLane(laneID string) (moved bool, err error) {
	c.mu.Lock()
	d := c.laneDrag
	c.laneDrag = nil
	c.mu.Unlock()

	if d == nil {
		return false, ErrNoLaneDrag
	}
	return c.AcceptDrop(laneID, d.TaskID)
}

// AcceptDrop moves taskID into laneID. It is the lane's drop operation and can be
// called directly with a payload that arrived from elsewhere.
func (c *Controller) AcceptDrop(laneID, taskID string) (bool, error) {
	moved, err := c.store.MoveTask(taskID, laneID)
	if err != nil {
		c.logger.Warn("lane drop rejected", "task", taskID, "lane", laneID, "error", err)
		return false, fmt.Errorf("drop %s on %s: %w", taskID, laneID, err)
	}
	return moved, nil
}

// CancelLaneDrag abandons the lane move.
func (c *Controller) CancelLaneDrag() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	active := c.laneDrag != nil
	c.laneDrag = nil
	return active
}
