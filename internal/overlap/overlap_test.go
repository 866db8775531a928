package overlap

import (
	"testing"

	"github.com/fentz26/laneplan/internal/models"
)

func task(id, lane, start, end string) models.Task {
	return models.Task{
		ID:     id,
		LaneID: lane,
		Start:  models.MustParseDate(start),
		End:    models.MustParseDate(end),
	}
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b models.Task
		want bool
	}{
		{"back to back", task("a", "l1", "2024-01-01", "2024-01-05"), task("b", "l1", "2024-01-05", "2024-01-10"), false},
		{"partial overlap", task("a", "l1", "2024-01-01", "2024-01-05"), task("b", "l1", "2024-01-03", "2024-01-08"), true},
		{"different lanes", task("a", "l1", "2024-01-01", "2024-01-05"), task("b", "l2", "2024-01-01", "2024-01-05"), false},
		{"disjoint", task("a", "l1", "2024-01-01", "2024-01-02"), task("b", "l1", "2024-01-04", "2024-01-08"), false},
		{"contained", task("a", "l1", "2024-01-01", "2024-01-31"), task("b", "l1", "2024-01-10", "2024-01-12"), true},
		{"identical", task("a", "l1", "2024-01-01", "2024-01-05"), task("b", "l1", "2024-01-01", "2024-01-05"), true},
		{"same id", task("a", "l1", "2024-01-01", "2024-01-05"), task("a", "l1", "2024-01-01", "2024-01-05"), false},
		{"single day inside", task("a", "l1", "2024-01-01", "2024-01-05"), task("b", "l1", "2024-01-03", "2024-01-03"), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Overlaps(tt.a, tt.b); got != tt.want {
				t.Errorf("Overlaps(a,b) = %v, want %v", got, tt.want)
			}
			if got := Overlaps(tt.b, tt.a); got != tt.want {
				t.Errorf("Overlaps(b,a) = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestOverlapSymmetry(t *testing.T) {
	base := models.MustParseDate("2024-01-01")
	var tasks []models.Task
	for s := 0; s < 6; s++ {
		for l := 0; l < 4; l++ {
			tasks = append(tasks, models.Task{
				ID:     string(rune('a'+s)) + string(rune('0'+l)),
				LaneID: "l1",
				Start:  base.AddDays(s),
				End:    base.AddDays(s + l),
			})
		}
	}
	for _, a := range tasks {
		for _, b := range tasks {
			if Overlaps(a, b) != Overlaps(b, a) {
				t.Fatalf("asymmetric result for %s..%s vs %s..%s", a.Start, a.End, b.Start, b.End)
			}
		}
	}
}

func TestHasConflict(t *testing.T) {
	lane := []models.Task{
		task("a", "l1", "2024-01-01", "2024-01-05"),
		task("b", "l1", "2024-01-03", "2024-01-08"),
		task("c", "l1", "2024-01-08", "2024-01-09"),
	}
	if !HasConflict(lane[0], lane) {
		t.Error("Expected a to conflict with b")
	}
	if HasConflict(lane[2], lane) {
		t.Error("Expected c to be free: it starts where b ends")
	}
}

func TestConflictsAndPairs(t *testing.T) {
	tasks := []models.Task{
		task("a", "l1", "2024-01-01", "2024-01-05"),
		task("b", "l1", "2024-01-03", "2024-01-08"),
		task("c", "l2", "2024-01-03", "2024-01-08"),
		task("d", "l2", "2024-01-20", "2024-01-21"),
	}
	got := Conflicts(tasks)
	if !got["a"] || !got["b"] {
		t.Errorf("Expected a and b flagged, got %v", got)
	}
	if got["c"] || got["d"] {
		t.Errorf("Expected lane l2 clean, got %v", got)
	}

	pairs := Pairs(tasks)
	if len(pairs) != 1 {
		t.Fatalf("Expected 1 pair, got %d", len(pairs))
	}
	if pairs[0].LaneID != "l1" || pairs[0].A.ID != "a" || pairs[0].B.ID != "b" {
		t.Errorf("Unexpected pair %+v", pairs[0])
	}
}
