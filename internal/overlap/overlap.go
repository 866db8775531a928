// Package overlap detects date conflicts between tasks sharing a lane.
package overlap

import (
	"sort"

	"github.com/fentz26/laneplan/internal/models"
)

// RangesOverlap reports whether two inclusive date ranges conflict.
// Ranges that merely touch (one ends on the day the other starts) do not conflict.
func RangesOverlap(aStart, aEnd, bStart, bEnd models.Date) bool {
	if aEnd.Before(bStart) || bEnd.Before(aStart) {
		return false
	}
	if aEnd.Equal(bStart) || bEnd.Equal(aStart) {
		return false
	}
	return true
}

// Overlaps reports whether a and b conflict. Tasks in different lanes never do,
// and a task never conflicts with itself.
func Overlaps(a, b models.Task) bool {
	if a.ID == b.ID || a.LaneID != b.LaneID {
		return false
	}
	return RangesOverlap(a.Start, a.End, b.Start, b.End)
}

// HasConflict reports whether task overlaps any other task in laneTasks.
func HasConflict(task models.Task, laneTasks []models.Task) bool {
	for _, other := range laneTasks {
		if Overlaps(task, other) {
			return true
		}
	}
	return false
}

// Conflicts returns the ids of every task that overlaps at least one other task in its lane.
func Conflicts(tasks []models.Task) map[string]bool {
	out := make(map[string]bool)
	for _, group := range byLane(tasks) {
		for i := range group {
			for j := i + 1; j < len(group); j++ {
				if Overlaps(group[i], group[j]) {
					out[group[i].ID] = true
					out[group[j].ID] = true
				}
			}
		}
	}
	return out
}

// Pair is one conflicting pair of tasks in the same lane.
type Pair struct {
	LaneID string
	A, B   models.Task
}

// Pairs lists every conflicting pair, ordered by lane then by the first task's start.
func Pairs(tasks []models.Task) []Pair {
	var out []Pair
	for lane, group := range byLane(tasks) {
		for i := range group {
			for j := i + 1; j < len(group); j++ {
				if Overlaps(group[i], group[j]) {
					a, b := group[i], group[j]
					if b.Start.Before(a.Start) {
						a, b = b, a
					}
					out = append(out, Pair{LaneID: lane, A: a, B: b})
				}
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].LaneID != out[j].LaneID {
			return out[i].LaneID < out[j].LaneID
		}
		if !out[i].A.Start.Equal(out[j].A.Start) {
			return out[i].A.Start.Before(out[j].A.Start)
		}
		return out[i].A.ID+out[i].B.ID < out[j].A.ID+out[j].B.ID
	})
	return out
}

func byLane(tasks []models.Task) map[string][]models.Task {
	groups := make(map[string][]models.Task)
	for _, t := range tasks {
		groups[t.LaneID] = append(groups[t.LaneID], t)
	}
	return groups
}
