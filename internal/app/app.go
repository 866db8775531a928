// Package app wires the storage, document store, autosave and journal into one
// running instance shared by the CLI, the TUI and the HTTP server.
package app

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/fentz26/laneplan/internal/audit"
	"github.com/fentz26/laneplan/internal/autosave"
	"github.com/fentz26/laneplan/internal/config"
	"github.com/fentz26/laneplan/internal/interaction"
	"github.com/fentz26/laneplan/internal/layout"
	"github.com/fentz26/laneplan/internal/models"
	"github.com/fentz26/laneplan/internal/persist"
	"github.com/fentz26/laneplan/internal/store"
	"github.com/fentz26/laneplan/internal/timeline"
)

// Options configures Open.
type Options struct {
	Config *config.Config
	Logger *slog.Logger
	// Clock returns today's date. Nil uses models.Today.
	Clock func() models.Date
}

// App is one open timeline.
type App struct {
	Config     *config.Config
	Logger     *slog.Logger
	DB         *store.Store
	Persist    *persist.Adapter
	Timeline   *timeline.Store
	Controller *interaction.Controller
	Journal    *audit.Journal
	Autosave   *autosave.Autosaver

	// Seeded is true when nothing usable was stored and the seed document was loaded.
	Seeded bool

	clock func() models.Date
}

// Open opens the database, loads the saved document (or the seed) and starts autosave.
func Open(opts Options) (*App, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := opts.Clock
	if clock == nil {
		clock = models.Today
	}

	db, err := store.New(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	adapter := persist.NewAdapter(db, cfg.StorageKey, logger)
	doc, ok := adapter.Load()
	if !ok {
		logger.Info("no saved timeline, loading seed", "key", adapter.Key())
		doc = timeline.Seed(clock())
	}

	ts := timeline.New(doc, timeline.WithLogger(logger))
	a := &App{
		Config:     cfg,
		Logger:     logger,
		DB:         db,
		Persist:    adapter,
		Timeline:   ts,
		Controller: interaction.NewController(ts, logger),
		Journal:    audit.NewJournal(db, logger),
		Autosave:   autosave.New(adapter, cfg.Autosave.Debounce, logger),
		Seeded:     !ok,
		clock:      clock,
	}
	a.warnDangling(doc)
	a.Journal.Attach(ts)
	a.Autosave.Attach(ts)
	a.Autosave.Start()

	if a.Seeded {
		adapter.Save(doc)
	}
	return a, nil
}

// Close flushes pending saves and closes the database.
func (a *App) Close() error {
	a.Autosave.Stop()
	return a.DB.Close()
}

// Today returns the app's notion of today.
func (a *App) Today() models.Date {
	return a.clock()
}

// Layout computes the render pass for the current document. The window comes
// from the committed document; an active drag's preview is shown in place of
// the committed dates of the dragged bar.
func (a *App) Layout(zoom models.Zoom) layout.Layout {
	snap := a.Timeline.Snapshot()
	return layout.BuildPreview(snap, a.Controller.Overlay(snap), zoom, a.Today())
}

// Export returns the current document as pretty-printed JSON.
func (a *App) Export() ([]byte, error) {
	return persist.Export(a.Timeline.Snapshot())
}

// Import replaces the whole document with data. On a parse error the current
// document is left untouched.
func (a *App) Import(data []byte) (models.Document, error) {
	doc, err := persist.Import(data)
	if err != nil {
		a.Logger.Warn("import rejected", "error", err)
		return models.Document{}, err
	}
	a.warnDangling(doc)
	a.Timeline.Replace(doc)
	a.Logger.Info("document imported", "lanes", len(doc.Lanes), "tasks", len(doc.Tasks))
	return doc, nil
}

// Reset clears the saved document and reloads the seed.
func (a *App) Reset() error {
	if err := a.Persist.Clear(); err != nil {
		return fmt.Errorf("clear saved timeline: %w", err)
	}
	a.Timeline.Replace(timeline.Seed(a.Today()))
	return nil
}

// warnDangling logs tasks that reference a lane the document does not have.
// They are kept but not rendered.
func (a *App) warnDangling(doc models.Document) {
	for _, t := range doc.Tasks {
		if _, ok := doc.Lane(t.LaneID); !ok {
			a.Logger.Warn("task references missing lane", "task", t.ID, "lane", t.LaneID)
		}
	}
}

// NewLogger builds the text logger used by every command.
func NewLogger(w io.Writer, level string) (*slog.Logger, error) {
	lvl, err := config.ParseLevel(level)
	if err != nil {
		return nil, err
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})), nil
}

// IsParseError reports whether err is a rejected document.
func IsParseError(err error) bool {
	var pe *persist.ParseError
	return errors.As(err, &pe)
}
