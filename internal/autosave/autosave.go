// Package autosave persists the timeline document after every committed edit.
package autosave

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/fentz26/laneplan/internal/models"
	"github.com/fentz26/laneplan/internal/timeline"
)

// Saver writes a whole document. It must not fail loudly; the persistence
// adapter logs its own errors.
type Saver interface {
	Save(doc models.Document)
}

// Autosaver coalesces bursts of edits into one save per debounce window.
// With a zero debounce every edit is saved synchronously. Snapshots carry the
// store revision they were taken at; one older than the pending or last saved
// snapshot is dropped.
type Autosaver struct {
	saver    Saver
	debounce time.Duration
	logger   *slog.Logger

	// saveMu serializes Save calls so they reach the saver in revision order.
	saveMu sync.Mutex

	mu      sync.Mutex
	pending *models.Document
	rev     uint64 // newest revision accepted, pending or saved
	saves   int

	kick   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates an autosaver. A nil logger uses slog.Default().
func New(saver Saver, debounce time.Duration, logger *slog.Logger) *Autosaver {
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Autosaver{
		saver:    saver,
		debounce: debounce,
		logger:   logger,
		kick:     make(chan struct{}, 1),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Attach subscribes the autosaver to a document store.
func (a *Autosaver) Attach(ts *timeline.Store) {
	ts.Subscribe(func(m timeline.Mutation, doc models.Document) {
		a.Notify(m.Revision, doc)
	})
}

// Start begins the debounce loop. It is not needed when debounce is zero.
func (a *Autosaver) Start() {
	if a.debounce <= 0 {
		return
	}
	a.wg.Add(1)
	go a.loop()
	a.logger.Debug("autosave started", "debounce", a.debounce)
}

// Stop ends the loop and writes any pending document. Later notifications are
// saved synchronously.
func (a *Autosaver) Stop() {
	a.cancel()
	a.wg.Wait()
	a.Flush()
	a.logger.Debug("autosave stopped", "saves", a.Saves())
}

// Notify records doc, taken at store revision rev, as the latest state to save.
// It is ignored when a newer revision is already pending or saved.
func (a *Autosaver) Notify(rev uint64, doc models.Document) {
	a.mu.Lock()
	if rev <= a.rev {
		latest := a.rev
		a.mu.Unlock()
		a.logger.Debug("autosave dropped stale snapshot", "rev", rev, "latest", latest)
		return
	}
	a.pending, a.rev = &doc, rev
	a.mu.Unlock()

	if a.debounce <= 0 || a.ctx.Err() != nil {
		a.Flush()
		return
	}
	select {
	case a.kick <- struct{}{}:
	default:
	}
}

// Flush saves the pending document now, if there is one.
func (a *Autosaver) Flush() {
	a.saveMu.Lock()
	defer a.saveMu.Unlock()

	a.mu.Lock()
	doc := a.pending
	a.pending = nil
	if doc != nil {
		a.saves++
	}
	a.mu.Unlock()

	if doc != nil {
		a.saver.Save(*doc)
	}
}

// Saves returns how many saves have been issued.
func (a *Autosaver) Saves() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.saves
}

func (a *Autosaver) loop() {
	defer a.wg.Done()

	timer := time.NewTimer(a.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case <-a.kick:
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(a.debounce)
		case <-timer.C:
			a.Flush()
		}
	}
}
