// Package persist saves, loads, exports and imports the timeline document.
//
// Save and Load never fail loudly: a failed save is logged and the in-memory
// document stays authoritative, and an unreadable stored value loads as absent
// so the caller can fall back to a seed. Import is the only strict path.
package persist

import (
	"context"
	"errors"
	"log/slog"

	"github.com/fentz26/laneplan/internal/models"
)

// DefaultKey is the storage key the document is saved under.
const DefaultKey = "gantt_state_v1"

// KV is a string key/value store.
type KV interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
}

// Adapter persists one document under one key.
type Adapter struct {
	kv     KV
	key    string
	logger *slog.Logger
}

// NewAdapter creates an adapter. An empty key uses DefaultKey and a nil logger uses slog.Default().
func NewAdapter(kv KV, key string, logger *slog.Logger) *Adapter {
	if key == "" {
		key = DefaultKey
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{kv: kv, key: key, logger: logger}
}

// Key returns the storage key.
func (a *Adapter) Key() string { return a.key }

// Save writes doc. Failures are logged, never returned.
func (a *Adapter) Save(doc models.Document) {
	data, err := Encode(doc)
	if err != nil {
		a.logger.Warn("encode document failed", "key", a.key, "error", err)
		return
	}
	if err := a.kv.Set(a.key, string(data)); err != nil {
		a.logger.Warn("save document failed", "key", a.key, "error", err)
		return
	}
	a.logger.Debug("document saved", "key", a.key, "lanes", len(doc.Lanes), "tasks", len(doc.Tasks))
}

// Load reads the saved document. ok is false when nothing usable is stored.
func (a *Adapter) Load() (doc models.Document, ok bool) {
	value, found, err := a.kv.Get(a.key)
	if err != nil {
		a.logger.Warn("load document failed", "key", a.key, "error", err)
		return models.Document{}, false
	}
	if !found {
		return models.Document{}, false
	}
	doc, err = Decode([]byte(value))
	if err != nil {
		level := slog.LevelWarn
		if errors.Is(err, ErrUnsupportedVersion) {
			level = slog.LevelError
		}
		a.logger.Log(context.Background(), level, "stored document unreadable", "key", a.key, "error", err)
		return models.Document{}, false
	}
	return doc, true
}

// Clear removes the saved document.
func (a *Adapter) Clear() error {
	return a.kv.Delete(a.key)
}

// Export returns the document as pretty-printed JSON.
func Export(doc models.Document) ([]byte, error) {
	return EncodeIndent(doc)
}

// Import parses a user-supplied document. On error the returned document is
// empty and the error is a *ParseError.
func Import(data []byte) (models.Document, error) {
	return Decode(data)
}
