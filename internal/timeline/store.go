// Package timeline holds the in-memory timeline document and its mutation API.
//
// Callers never touch the document directly: reads return deep copies and every
// change goes through a Store method, which notifies subscribers after the change
// is applied. Autosave and the edit journal hang off those notifications.
package timeline

import (
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/fentz26/laneplan/internal/models"
	"github.com/google/uuid"
)

// MutationKind names a committed change.
type MutationKind string

const (
	MutationTaskCreate MutationKind = "task.create"
	MutationTaskUpdate MutationKind = "task.update"
	MutationTaskMove   MutationKind = "task.move"
	MutationTaskDelete MutationKind = "task.delete"
	MutationReplace    MutationKind = "document.replace"
	MutationLaneAdd    MutationKind = "lane.add"
	MutationLaneRename MutationKind = "lane.rename"
	MutationLaneDelete MutationKind = "lane.delete"
)

// Mutation describes one committed change.
type Mutation struct {
	Kind   MutationKind
	TaskID string
	LaneID string
	// Inputs is what the caller asked for; the journal hashes it.
	Inputs any
	// Revision increases by one per committed mutation. Listeners run outside
	// the lock and may observe mutations out of order; Revision orders them.
	Revision uint64
}

// Listener is called after every committed mutation with a snapshot of the new document.
type Listener func(m Mutation, doc models.Document)

// Store is the authoritative timeline document.
type Store struct {
	mu        sync.RWMutex
	doc       models.Document
	listeners []Listener
	rev       uint64
	newID     func() string
	logger    *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithIDGenerator overrides uuid-based id generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) { s.newID = fn }
}

// WithLogger sets the logger used for dropped or ignored edits.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// New creates a Store holding a copy of doc.
func New(doc models.Document, opts ...Option) *Store {
	s := &Store{
		doc:    doc.Clone(),
		newID:  func() string { return uuid.New().String() },
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Subscribe registers a listener for committed mutations.
func (s *Store) Subscribe(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() models.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// Task returns a copy of the task with the given id.
func (s *Store) Task(id string) (models.Task, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.doc.Task(id)
	return t.Clone(), ok
}

// Revision returns the revision of the last committed mutation.
func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rev
}

// Lanes returns the lanes in display order.
func (s *Store) Lanes() []models.Lane {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Lane(nil), s.doc.Lanes...)
}

// mutate runs fn under the write lock and, when fn reports a change, stamps the
// next revision and notifies listeners outside the lock with a snapshot of the
// result.
func (s *Store) mutate(fn func(doc *models.Document) (Mutation, bool, error)) error {
	s.mu.Lock()
	m, changed, err := fn(&s.doc)
	if err != nil || !changed {
		s.mu.Unlock()
		return err
	}
	s.rev++
	m.Revision = s.rev
	snap := s.doc.Clone()
	listeners := append([]Listener(nil), s.listeners...)
	s.mu.Unlock()

	s.logger.Debug("document mutated", "rev", m.Revision, "kind", m.Kind, "task", m.TaskID, "lane", m.LaneID)
	for _, l := range listeners {
		l(m, snap)
	}
	return nil
}

// --- Task Operations ---

// CreateTask inserts a task. An empty id is filled with a generated one.
func (s *Store) CreateTask(t models.Task) (models.Task, error) {
	t = t.Clone()
	if t.ID == "" {
		t.ID = s.newID()
	}
	err := s.mutate(func(doc *models.Document) (Mutation, bool, error) {
		m, err := insertTask(doc, t)
		return m, err == nil, err
	})
	if err != nil {
		return models.Task{}, err
	}
	return t.Clone(), nil
}

func insertTask(doc *models.Document, t models.Task) (Mutation, error) {
	if err := validateTask(doc, t); err != nil {
		return Mutation{}, err
	}
	if _, exists := doc.Task(t.ID); exists {
		return Mutation{}, fmt.Errorf("create task %s: %w", t.ID, ErrDuplicateID)
	}
	doc.Tasks = append(doc.Tasks, t)
	return Mutation{Kind: MutationTaskCreate, TaskID: t.ID, LaneID: t.LaneID, Inputs: t}, nil
}

// TaskPatch is a partial field change set; nil fields are left alone.
type TaskPatch struct {
	Name     *string
	LaneID   *string
	Start    *models.Date
	End      *models.Date
	Assignee *string
	Deps     *[]string
}

// Apply returns t with the patch merged in.
func (p TaskPatch) Apply(t models.Task) models.Task {
	t = t.Clone()
	if p.Name != nil {
		t.Name = *p.Name
	}
	if p.LaneID != nil {
		t.LaneID = *p.LaneID
	}
	if p.Start != nil {
		t.Start = *p.Start
	}
	if p.End != nil {
		t.End = *p.End
	}
	if p.Assignee != nil {
		t.Assignee = *p.Assignee
	}
	if p.Deps != nil {
		t.Deps = slices.Clone(*p.Deps)
	}
	return t
}

// UpdateTask merges a patch into an existing task. A patch that changes nothing is a no-op.
func (s *Store) UpdateTask(id string, p TaskPatch) (models.Task, error) {
	var updated models.Task
	err := s.mutate(func(doc *models.Document) (Mutation, bool, error) {
		idx := indexOf(doc, id)
		if idx < 0 {
			return Mutation{}, false, fmt.Errorf("update task %s: %w", id, ErrTaskNotFound)
		}
		var (
			m       Mutation
			changed bool
			err     error
		)
		updated, m, changed, err = patchTask(doc, idx, p)
		return m, changed, err
	})
	if err != nil {
		return models.Task{}, err
	}
	return updated.Clone(), nil
}

// patchTask merges p into the task at idx. changed is false when p leaves the
// task as it was.
func patchTask(doc *models.Document, idx int, p TaskPatch) (updated models.Task, m Mutation, changed bool, err error) {
	updated = p.Apply(doc.Tasks[idx])
	if sameTask(updated, doc.Tasks[idx]) {
		return updated, Mutation{}, false, nil
	}
	if err := validateTask(doc, updated); err != nil {
		return models.Task{}, Mutation{}, false, err
	}
	doc.Tasks[idx] = updated
	return updated, Mutation{Kind: MutationTaskUpdate, TaskID: updated.ID, LaneID: updated.LaneID, Inputs: updated}, true, nil
}

// SaveTask is the edit panel's save: it merges the patch into the task with the
// draft's id, or inserts draft+patch when that id is unseen. created reports which.
// The lookup and the write happen under one lock.
func (s *Store) SaveTask(draft models.Task, p TaskPatch) (task models.Task, created bool, err error) {
	draft = draft.Clone()
	if draft.ID == "" {
		draft.ID = s.newID()
	}
	err = s.mutate(func(doc *models.Document) (Mutation, bool, error) {
		if idx := indexOf(doc, draft.ID); idx >= 0 {
			var (
				m       Mutation
				changed bool
				err     error
			)
			task, m, changed, err = patchTask(doc, idx, p)
			return m, changed, err
		}
		task = p.Apply(draft)
		m, err := insertTask(doc, task)
		created = err == nil
		return m, created, err
	})
	if err != nil {
		return models.Task{}, false, err
	}
	return task.Clone(), created, nil
}

// SetDates writes new start/end dates as one update. Unchanged dates are not a
// mutation and report changed=false.
func (s *Store) SetDates(id string, start, end models.Date) (changed bool, err error) {
	if end.Before(start) {
		return false, fmt.Errorf("set dates %s..%s: %w", start, end, ErrInvalidRange)
	}
	err = s.mutate(func(doc *models.Document) (Mutation, bool, error) {
		idx := indexOf(doc, id)
		if idx < 0 {
			return Mutation{}, false, fmt.Errorf("set dates of %s: %w", id, ErrTaskNotFound)
		}
		t := &doc.Tasks[idx]
		if t.Start.Equal(start) && t.End.Equal(end) {
			return Mutation{}, false, nil
		}
		t.Start, t.End = start, end
		changed = true
		return Mutation{
			Kind:   MutationTaskUpdate,
			TaskID: id,
			LaneID: t.LaneID,
			Inputs: map[string]string{"start": start.String(), "end": end.String()},
		}, true, nil
	})
	return changed, err
}

// MoveTask reassigns a task to another lane, leaving its dates untouched.
func (s *Store) MoveTask(id, laneID string) (changed bool, err error) {
	err = s.mutate(func(doc *models.Document) (Mutation, bool, error) {
		idx := indexOf(doc, id)
		if idx < 0 {
			return Mutation{}, false, fmt.Errorf("move task %s: %w", id, ErrTaskNotFound)
		}
		if _, ok := doc.Lane(laneID); !ok {
			return Mutation{}, false, fmt.Errorf("move task %s to %s: %w", id, laneID, ErrLaneNotFound)
		}
		if doc.Tasks[idx].LaneID == laneID {
			return Mutation{}, false, nil
		}
		from := doc.Tasks[idx].LaneID
		doc.Tasks[idx].LaneID = laneID
		changed = true
		return Mutation{
			Kind:   MutationTaskMove,
			TaskID: id,
			LaneID: laneID,
			Inputs: map[string]string{"from": from, "to": laneID},
		}, true, nil
	})
	return changed, err
}

// DeleteTask removes a task.
func (s *Store) DeleteTask(id string) error {
	return s.mutate(func(doc *models.Document) (Mutation, bool, error) {
		idx := indexOf(doc, id)
		if idx < 0 {
			return Mutation{}, false, fmt.Errorf("delete task %s: %w", id, ErrTaskNotFound)
		}
		laneID := doc.Tasks[idx].LaneID
		doc.Tasks = slices.Delete(doc.Tasks, idx, idx+1)
		return Mutation{Kind: MutationTaskDelete, TaskID: id, LaneID: laneID, Inputs: id}, true, nil
	})
}

// Replace swaps in a whole new document, as an import does.
func (s *Store) Replace(doc models.Document) {
	next := doc.Clone()
	_ = s.mutate(func(cur *models.Document) (Mutation, bool, error) {
		*cur = next
		return Mutation{
			Kind:   MutationReplace,
			Inputs: map[string]int{"lanes": len(next.Lanes), "tasks": len(next.Tasks)},
		}, true, nil
	})
}

// NewDraft builds an unsaved task for the edit panel: generated id, first lane,
// starting today and ending three days later.
func (s *Store) NewDraft(today models.Date) (models.Task, error) {
	lanes := s.Lanes()
	if len(lanes) == 0 {
		return models.Task{}, ErrNoLanes
	}
	return models.Task{
		ID:     s.newID(),
		LaneID: lanes[0].ID,
		Start:  today,
		End:    today.AddDays(3),
		Deps:   []string{},
	}, nil
}

// --- Lane Operations ---

// AddLane appends a lane with a generated id.
func (s *Store) AddLane(name string) (models.Lane, error) {
	lane := models.Lane{ID: s.newID(), Name: name}
	err := s.mutate(func(doc *models.Document) (Mutation, bool, error) {
		if _, exists := doc.Lane(lane.ID); exists {
			return Mutation{}, false, fmt.Errorf("add lane %s: %w", lane.ID, ErrDuplicateID)
		}
		doc.Lanes = append(doc.Lanes, lane)
		return Mutation{Kind: MutationLaneAdd, LaneID: lane.ID, Inputs: lane}, true, nil
	})
	return lane, err
}

// RenameLane changes a lane's display name.
func (s *Store) RenameLane(id, name string) error {
	return s.mutate(func(doc *models.Document) (Mutation, bool, error) {
		for i := range doc.Lanes {
			if doc.Lanes[i].ID != id {
				continue
			}
			if doc.Lanes[i].Name == name {
				return Mutation{}, false, nil
			}
			doc.Lanes[i].Name = name
			return Mutation{Kind: MutationLaneRename, LaneID: id, Inputs: name}, true, nil
		}
		return Mutation{}, false, fmt.Errorf("rename lane %s: %w", id, ErrLaneNotFound)
	})
}

// DeleteLane removes a lane. Lanes that still own tasks are rejected with ErrLaneInUse.
func (s *Store) DeleteLane(id string) error {
	return s.mutate(func(doc *models.Document) (Mutation, bool, error) {
		idx := slices.IndexFunc(doc.Lanes, func(l models.Lane) bool { return l.ID == id })
		if idx < 0 {
			return Mutation{}, false, fmt.Errorf("delete lane %s: %w", id, ErrLaneNotFound)
		}
		if n := len(doc.TasksInLane(id)); n > 0 {
			return Mutation{}, false, fmt.Errorf("delete lane %s (%d tasks): %w", id, n, ErrLaneInUse)
		}
		doc.Lanes = slices.Delete(doc.Lanes, idx, idx+1)
		return Mutation{Kind: MutationLaneDelete, LaneID: id, Inputs: id}, true, nil
	})
}

func indexOf(doc *models.Document, taskID string) int {
	return slices.IndexFunc(doc.Tasks, func(t models.Task) bool { return t.ID == taskID })
}

func validateTask(doc *models.Document, t models.Task) error {
	if t.Start.IsZero() || t.End.IsZero() {
		return fmt.Errorf("task %s: start and end are required: %w", t.ID, ErrInvalidRange)
	}
	if t.End.Before(t.Start) {
		return fmt.Errorf("task %s %s..%s: %w", t.ID, t.Start, t.End, ErrInvalidRange)
	}
	if _, ok := doc.Lane(t.LaneID); !ok {
		return fmt.Errorf("task %s lane %q: %w", t.ID, t.LaneID, ErrLaneNotFound)
	}
	return nil
}

func sameTask(a, b models.Task) bool {
	return a.ID == b.ID &&
		a.Name == b.Name &&
		a.LaneID == b.LaneID &&
		a.Start.Equal(b.Start) &&
		a.End.Equal(b.End) &&
		a.Assignee == b.Assignee &&
		slices.Equal(a.Deps, b.Deps)
}
