package persist

import (
	"encoding/json"
	"fmt"

	"github.com/fentz26/laneplan/internal/models"
)

// Version is the document format written by this package. Documents without a
// version field predate versioning and read as version 1.
const Version = 1

// ExportFileName is the suggested name for exported documents.
const ExportFileName = "timeline.json"

type envelope struct {
	Version int           `json:"version"`
	Lanes   []models.Lane `json:"lanes"`
	Tasks   []models.Task `json:"tasks"`
}

type rawEnvelope struct {
	Version *int            `json:"version"`
	Lanes   json.RawMessage `json:"lanes"`
	Tasks   json.RawMessage `json:"tasks"`
}

// Encode serializes doc compactly.
func Encode(doc models.Document) ([]byte, error) {
	return json.Marshal(envelope{Version: Version, Lanes: doc.Lanes, Tasks: doc.Tasks})
}

// EncodeIndent serializes doc with two-space indentation and a trailing newline.
func EncodeIndent(doc models.Document) ([]byte, error) {
	data, err := json.MarshalIndent(envelope{Version: Version, Lanes: doc.Lanes, Tasks: doc.Tasks}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// Decode parses and validates a document. Any failure is a *ParseError.
func Decode(data []byte) (models.Document, error) {
	var raw rawEnvelope
	if err := json.Unmarshal(data, &raw); err != nil {
		return models.Document{}, parseErr("invalid JSON", err)
	}

	version := Version
	if raw.Version != nil {
		version = *raw.Version
	}
	if version < 1 {
		return models.Document{}, parseErr(fmt.Sprintf("invalid version %d", version), nil)
	}
	if version > Version {
		return models.Document{}, parseErr(fmt.Sprintf("version %d", version), ErrUnsupportedVersion)
	}

	if len(raw.Lanes) == 0 {
		return models.Document{}, parseErr("missing lanes", nil)
	}
	if len(raw.Tasks) == 0 {
		return models.Document{}, parseErr("missing tasks", nil)
	}

	var doc models.Document
	if err := json.Unmarshal(raw.Lanes, &doc.Lanes); err != nil {
		return models.Document{}, parseErr("invalid lanes", err)
	}
	if err := json.Unmarshal(raw.Tasks, &doc.Tasks); err != nil {
		return models.Document{}, parseErr("invalid tasks", err)
	}
	if err := validate(doc); err != nil {
		return models.Document{}, err
	}
	return doc, nil
}

// validate checks data-model invariants. A task whose lane is missing is kept;
// layout drops it from rendering.
func validate(doc models.Document) error {
	lanes := make(map[string]bool, len(doc.Lanes))
	for i, l := range doc.Lanes {
		if l.ID == "" {
			return parseErr(fmt.Sprintf("lane %d has no id", i), nil)
		}
		if lanes[l.ID] {
			return parseErr(fmt.Sprintf("duplicate lane id %q", l.ID), nil)
		}
		lanes[l.ID] = true
	}

	tasks := make(map[string]bool, len(doc.Tasks))
	for i, t := range doc.Tasks {
		if t.ID == "" {
			return parseErr(fmt.Sprintf("task %d has no id", i), nil)
		}
		if tasks[t.ID] {
			return parseErr(fmt.Sprintf("duplicate task id %q", t.ID), nil)
		}
		tasks[t.ID] = true
		if t.Start.IsZero() || t.End.IsZero() {
			return parseErr(fmt.Sprintf("task %q missing start or end", t.ID), nil)
		}
		if t.End.Before(t.Start) {
			return parseErr(fmt.Sprintf("task %q ends %s before it starts %s", t.ID, t.End, t.Start), nil)
		}
	}
	return nil
}
