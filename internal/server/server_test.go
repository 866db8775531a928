package server

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fentz26/laneplan/internal/app"
	"github.com/fentz26/laneplan/internal/config"
	"github.com/fentz26/laneplan/internal/models"
)

func newTestServer(t *testing.T) (*httptest.Server, *app.App) {
	t.Helper()
	cfg := config.Default()
	cfg.DBPath = filepath.Join(t.TempDir(), "test.db")
	cfg.Autosave.Debounce = 0

	a, err := app.Open(app.Options{
		Config: cfg,
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:  func() models.Date { return models.MustParseDate("2024-10-02") },
	})
	if err != nil {
		t.Fatalf("open app: %v", err)
	}
	handler, err := New(Config{App: a})
	if err != nil {
		t.Fatalf("build handler: %v", err)
	}
	srv := httptest.NewServer(handler)
	t.Cleanup(func() {
		srv.Close()
		a.Close()
	})
	return srv, a
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return resp, data
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, data := doJSON(t, http.MethodGet, srv.URL+"/v1/health", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, data)
	}
	var health HealthResponse
	if err := json.Unmarshal(data, &health); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !health.OK || health.DB != "ok" || health.Version == "" {
		t.Errorf("Unexpected health %+v", health)
	}
}

func TestTaskLifecycle(t *testing.T) {
	srv, a := newTestServer(t)

	resp, data := doJSON(t, http.MethodPost, srv.URL+"/v1/tasks", map[string]any{
		"name":   "QA",
		"laneId": "lane-eng",
		"start":  "2024-10-07",
		"end":    "2024-10-09",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", resp.StatusCode, data)
	}
	var created TaskResponse
	if err := json.Unmarshal(data, &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == "" || created.Start != "2024-10-07" || created.End != "2024-10-09" {
		t.Errorf("Unexpected task %+v", created)
	}

	resp, data = doJSON(t, http.MethodPost, srv.URL+"/v1/tasks/"+created.ID+"/nudge", map[string]any{"days": 3})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 on nudge, got %d: %s", resp.StatusCode, data)
	}
	task, _ := a.Timeline.Task(created.ID)
	if task.Start.String() != "2024-10-10" || task.End.String() != "2024-10-12" {
		t.Errorf("Nudge should shift both dates, got %s..%s", task.Start, task.End)
	}

	resp, data = doJSON(t, http.MethodPost, srv.URL+"/v1/tasks/"+created.ID+"/move", map[string]any{"laneId": "lane-mkt"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 on move, got %d: %s", resp.StatusCode, data)
	}
	task, _ = a.Timeline.Task(created.ID)
	if task.LaneID != "lane-mkt" || task.Start.String() != "2024-10-10" {
		t.Errorf("Move should change lane only, got %+v", task)
	}

	resp, data = doJSON(t, http.MethodPatch, srv.URL+"/v1/tasks/"+created.ID, map[string]any{"end": "2024-10-01"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("Expected 422 for inverted range, got %d: %s", resp.StatusCode, data)
	}

	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/v1/tasks/"+created.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204, got %d", resp.StatusCode)
	}
	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/v1/tasks/"+created.ID, nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestCreateTaskDefaultsFromDraft(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, data := doJSON(t, http.MethodPost, srv.URL+"/v1/tasks", map[string]any{"name": "Draft"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", resp.StatusCode, data)
	}
	var created TaskResponse
	json.Unmarshal(data, &created)
	if created.LaneID != "lane-eng" || created.Start != "2024-10-02" || created.End != "2024-10-05" {
		t.Errorf("Expected first lane and today..today+3, got %+v", created)
	}
}

func TestCreateTaskRejectsExistingID(t *testing.T) {
	srv, a := newTestServer(t)
	resp, data := doJSON(t, http.MethodPost, srv.URL+"/v1/tasks", map[string]any{"id": "t1", "name": "Clobber"})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("Expected 409, got %d: %s", resp.StatusCode, data)
	}
	if task, _ := a.Timeline.Task("t1"); task.Name != "API design" {
		t.Errorf("Existing task must be left alone, got name %q", task.Name)
	}

	resp, data = doJSON(t, http.MethodPost, srv.URL+"/v1/tasks", map[string]any{"id": "t99", "name": "Fresh"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", resp.StatusCode, data)
	}
	if task, ok := a.Timeline.Task("t99"); !ok || task.Name != "Fresh" {
		t.Errorf("Expected t99 to be created, got %+v (%v)", task, ok)
	}
}

func TestDeleteLaneInUse(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, data := doJSON(t, http.MethodDelete, srv.URL+"/v1/lanes/lane-eng", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("Expected 409, got %d: %s", resp.StatusCode, data)
	}
	if !strings.Contains(string(data), "lane_in_use") {
		t.Errorf("Expected lane_in_use code, got %s", data)
	}

	resp, data = doJSON(t, http.MethodPost, srv.URL+"/v1/lanes", map[string]any{"name": "Ops"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d: %s", resp.StatusCode, data)
	}
	var lane LaneResponse
	json.Unmarshal(data, &lane)
	resp, _ = doJSON(t, http.MethodDelete, srv.URL+"/v1/lanes/"+lane.ID, nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("Expected 204 for empty lane, got %d", resp.StatusCode)
	}
}

func TestLayout(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, data := doJSON(t, http.MethodGet, srv.URL+"/v1/layout?zoom=month", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, data)
	}
	var l LayoutResponse
	if err := json.Unmarshal(data, &l); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if l.Zoom != "month" || l.DayWidthPx != 20 {
		t.Errorf("Unexpected layout header %+v", l)
	}
	if len(l.Rows) != 3 {
		t.Errorf("Expected 3 seed lanes, got %d", len(l.Rows))
	}
	if !l.Today.Visible {
		t.Error("Today should be inside the seed window")
	}

	resp, _ = doJSON(t, http.MethodGet, srv.URL+"/v1/layout?zoom=year", nil)
	if resp.StatusCode < 400 {
		t.Errorf("Expected rejection of unknown zoom, got %d", resp.StatusCode)
	}
}

func TestExportImport(t *testing.T) {
	srv, a := newTestServer(t)

	resp, exported := doJSON(t, http.MethodGet, srv.URL+"/v1/export", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	if cd := resp.Header.Get("Content-Disposition"); !strings.Contains(cd, "timeline.json") {
		t.Errorf("Expected attachment timeline.json, got %q", cd)
	}
	if !strings.HasPrefix(string(exported), "{\n  \"version\": 1,") {
		t.Errorf("Expected pretty-printed export, got %s", exported)
	}

	before := a.Timeline.Snapshot()
	resp, data := postRaw(t, srv.URL+"/v1/import", "definitely not json")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d: %s", resp.StatusCode, data)
	}
	if after := a.Timeline.Snapshot(); len(after.Tasks) != len(before.Tasks) {
		t.Error("Rejected import changed the document")
	}

	resp, data = postRaw(t, srv.URL+"/v1/import", `{"lanes":[{"id":"x","name":"X"}],"tasks":[]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, data)
	}
	if doc := a.Timeline.Snapshot(); len(doc.Lanes) != 1 || len(doc.Tasks) != 0 {
		t.Errorf("Import should replace the document, got %+v", doc)
	}
}

func TestEditsJournal(t *testing.T) {
	srv, _ := newTestServer(t)
	doJSON(t, http.MethodPost, srv.URL+"/v1/tasks/t1/nudge", map[string]any{"days": 1})

	resp, data := doJSON(t, http.MethodGet, srv.URL+"/v1/edits?task=t1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d: %s", resp.StatusCode, data)
	}
	var edits []EditResponse
	json.Unmarshal(data, &edits)
	if len(edits) != 1 || edits[0].Action != "task.update" {
		t.Errorf("Expected one task.update edit, got %+v", edits)
	}
}

func postRaw(t *testing.T, url, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	return resp, data
}
