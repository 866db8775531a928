package autosave

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fentz26/laneplan/internal/models"
	"github.com/fentz26/laneplan/internal/timeline"
)

type memorySaver struct {
	mu   sync.Mutex
	docs []models.Document
}

func (m *memorySaver) Save(doc models.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs = append(m.docs, doc)
}

func (m *memorySaver) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

func (m *memorySaver) last() models.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.docs[len(m.docs)-1]
}

func newTestTimeline(t *testing.T) *timeline.Store {
	t.Helper()
	return timeline.New(models.Document{Lanes: []models.Lane{{ID: "l1", Name: "Eng"}}})
}

func TestSynchronousSave(t *testing.T) {
	saver := &memorySaver{}
	a := New(saver, 0, nil)
	ts := newTestTimeline(t)
	a.Attach(ts)
	a.Start()
	defer a.Stop()

	if _, err := ts.AddLane("Ops"); err != nil {
		t.Fatalf("AddLane failed: %v", err)
	}
	if saver.count() != 1 {
		t.Fatalf("Expected one save per edit, got %d", saver.count())
	}
	if len(saver.last().Lanes) != 2 {
		t.Errorf("Saved document should include the new lane")
	}
}

func TestDebouncedSaveCoalesces(t *testing.T) {
	saver := &memorySaver{}
	a := New(saver, 20*time.Millisecond, nil)
	ts := newTestTimeline(t)
	a.Attach(ts)
	a.Start()

	for i := 0; i < 5; i++ {
		if _, err := ts.AddLane("lane"); err != nil {
			t.Fatalf("AddLane failed: %v", err)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for saver.count() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	a.Stop()

	if saver.count() == 0 {
		t.Fatal("Expected a debounced save")
	}
	if saver.count() > 5 {
		t.Errorf("Expected coalesced saves, got %d", saver.count())
	}
	if len(saver.last().Lanes) != 6 {
		t.Errorf("Last save should hold the final document, got %d lanes", len(saver.last().Lanes))
	}
}

func TestStopFlushesPending(t *testing.T) {
	saver := &memorySaver{}
	a := New(saver, time.Hour, nil)
	a.Start()
	a.Notify(1, models.Document{Lanes: []models.Lane{{ID: "x", Name: "X"}}})

	if saver.count() != 0 {
		t.Fatal("Save should wait for the debounce window")
	}
	a.Stop()
	if saver.count() != 1 {
		t.Errorf("Stop should flush the pending document, got %d saves", saver.count())
	}
	if a.Saves() != 1 {
		t.Errorf("Expected Saves() == 1, got %d", a.Saves())
	}
}

func TestNotifyAfterStopSaves(t *testing.T) {
	saver := &memorySaver{}
	a := New(saver, time.Hour, nil)
	a.Start()
	a.Stop()

	a.Notify(1, models.Document{Lanes: []models.Lane{{ID: "late", Name: "Late"}}})
	if saver.count() != 1 {
		t.Fatalf("Expected a synchronous save after Stop, got %d saves", saver.count())
	}
	if saver.last().Lanes[0].ID != "late" {
		t.Errorf("Expected the late document to be saved, got %+v", saver.last().Lanes)
	}
}

func TestNotifyDropsOlderRevision(t *testing.T) {
	saver := &memorySaver{}
	a := New(saver, 0, nil)

	a.Notify(2, models.Document{Lanes: []models.Lane{{ID: "new"}}})
	a.Notify(1, models.Document{Lanes: []models.Lane{{ID: "old"}}})
	a.Notify(2, models.Document{Lanes: []models.Lane{{ID: "again"}}})

	if saver.count() != 1 {
		t.Fatalf("Expected only revision 2 to be saved, got %d saves", saver.count())
	}
	if saver.last().Lanes[0].ID != "new" {
		t.Errorf("Expected newest snapshot saved, got %+v", saver.last().Lanes)
	}
}

// A slow listener ahead of the autosaver holds back one mutation's
// notification while a later mutation commits and notifies first.
func TestOutOfOrderNotificationsKeepNewest(t *testing.T) {
	for _, debounce := range []time.Duration{0, time.Hour} {
		t.Run(debounce.String(), func(t *testing.T) {
			saver := &memorySaver{}
			ts := newTestTimeline(t)

			var calls atomic.Int32
			entered := make(chan struct{})
			release := make(chan struct{})
			ts.Subscribe(func(timeline.Mutation, models.Document) {
				if calls.Add(1) == 1 {
					close(entered)
					<-release
				}
			})

			a := New(saver, debounce, nil)
			a.Attach(ts)
			a.Start()

			done := make(chan error, 1)
			go func() {
				_, err := ts.AddLane("A")
				done <- err
			}()
			<-entered

			if _, err := ts.AddLane("B"); err != nil {
				t.Fatalf("AddLane failed: %v", err)
			}
			close(release)
			if err := <-done; err != nil {
				t.Fatalf("AddLane failed: %v", err)
			}
			a.Stop()

			if saver.count() == 0 {
				t.Fatal("Expected at least one save")
			}
			if got := len(saver.last().Lanes); got != 3 {
				t.Errorf("Last save should hold all 3 lanes, got %d", got)
			}
		})
	}
}
