// Package models defines the core domain types for Laneplan.
package models

import (
	"fmt"
	"slices"
)

// Zoom is the discrete display density of the timeline.
type Zoom string

const (
	ZoomWeek  Zoom = "week"
	ZoomMonth Zoom = "month"
)

// ParseZoom converts a user supplied value into a Zoom.
func ParseZoom(s string) (Zoom, error) {
	switch Zoom(s) {
	case ZoomWeek, ZoomMonth:
		return Zoom(s), nil
	default:
		return "", fmt.Errorf("unknown zoom level %q (want week or month)", s)
	}
}

// Toggle returns the other zoom level.
func (z Zoom) Toggle() Zoom {
	if z == ZoomMonth {
		return ZoomWeek
	}
	return ZoomMonth
}

// Lane is a named horizontal track that groups tasks.
type Lane struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Task is a dated unit of work belonging to exactly one lane.
type Task struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	LaneID   string   `json:"laneId"`
	Start    Date     `json:"start"`
	End      Date     `json:"end"`
	Assignee string   `json:"assignee"`
	Deps     []string `json:"deps"` // carried, never interpreted
}

// Clone returns a copy of the task that shares no slices with t.
func (t Task) Clone() Task {
	t.Deps = slices.Clone(t.Deps)
	return t
}

// DurationDays is the inclusive length of the task in calendar days, never less than 1.
func (t Task) DurationDays() int {
	n := t.End.DaysSince(t.Start) + 1
	if n < 1 {
		return 1
	}
	return n
}

// Document is the whole timeline: lanes in display order and their tasks.
type Document struct {
	Lanes []Lane `json:"lanes"`
	Tasks []Task `json:"tasks"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	out := Document{Lanes: slices.Clone(d.Lanes)}
	if d.Tasks != nil {
		out.Tasks = make([]Task, len(d.Tasks))
		for i, t := range d.Tasks {
			out.Tasks[i] = t.Clone()
		}
	}
	return out
}

// Lane returns the lane with the given id.
func (d Document) Lane(id string) (Lane, bool) {
	for _, l := range d.Lanes {
		if l.ID == id {
			return l, true
		}
	}
	return Lane{}, false
}

// Task returns the task with the given id.
func (d Document) Task(id string) (Task, bool) {
	for _, t := range d.Tasks {
		if t.ID == id {
			return t, true
		}
	}
	return Task{}, false
}

// TasksInLane returns the tasks whose LaneID equals laneID, in document order.
func (d Document) TasksInLane(laneID string) []Task {
	var out []Task
	for _, t := range d.Tasks {
		if t.LaneID == laneID {
			out = append(out, t)
		}
	}
	return out
}

// Scale is the derived visible window and its pixel density.
type Scale struct {
	WindowStart  Date `json:"windowStart"`
	WindowEnd    Date `json:"windowEnd"`
	DayWidthPx   int  `json:"dayWidthPx"`
	TotalWidthPx int  `json:"totalWidthPx"`
}

// Days is the number of calendar days the window covers, both ends included.
func (s Scale) Days() int {
	return s.WindowEnd.DaysSince(s.WindowStart) + 1
}

// Contains reports whether d lies inside the window, both ends included.
func (s Scale) Contains(d Date) bool {
	return !d.Before(s.WindowStart) && !d.After(s.WindowEnd)
}
