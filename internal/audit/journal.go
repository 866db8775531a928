// Package audit records committed timeline edits in the edit journal.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"log/slog"

	"github.com/fentz26/laneplan/internal/models"
	"github.com/fentz26/laneplan/internal/timeline"
)

// OutcomeApplied marks an edit that reached the document.
const OutcomeApplied = "applied"

// maxDetails bounds the inputs copy kept alongside the hash.
const maxDetails = 512

// EditWriter is where journal entries are written.
type EditWriter interface {
	WriteEdit(action, inputsHash, outcome, taskID, laneID, details string) (*models.EditEntry, error)
}

// Journal writes an entry for every committed document mutation.
type Journal struct {
	w      EditWriter
	logger *slog.Logger
}

// NewJournal creates a journal writing to w. A nil logger uses slog.Default().
func NewJournal(w EditWriter, logger *slog.Logger) *Journal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Journal{w: w, logger: logger}
}

// Record writes one journal entry.
func (j *Journal) Record(action string, inputs any, outcome, taskID, laneID string) (*models.EditEntry, error) {
	return j.w.WriteEdit(action, hashInputs(inputs), outcome, taskID, laneID, details(inputs))
}

// Attach subscribes the journal to a document store. Journal failures are
// logged and never block the edit.
func (j *Journal) Attach(ts *timeline.Store) {
	ts.Subscribe(func(m timeline.Mutation, _ models.Document) {
		if _, err := j.Record(string(m.Kind), m.Inputs, OutcomeApplied, m.TaskID, m.LaneID); err != nil {
			j.logger.Warn("journal write failed", "kind", m.Kind, "task", m.TaskID, "error", err)
		}
	})
}

// hashInputs creates a SHA256 hash of the inputs for reproducibility.
func hashInputs(inputs any) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

func details(inputs any) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return ""
	}
	if len(data) > maxDetails {
		return string(data[:maxDetails])
	}
	return string(data)
}
