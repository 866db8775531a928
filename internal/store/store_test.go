package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "nested", "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if err := s.Set("k", "v"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("Failed to reopen store: %v", err)
	}
	defer s.Close()
	if v, ok, _ := s.Get("k"); !ok || v != "v" {
		t.Errorf("Expected value to survive reopen, got %q ok=%v", v, ok)
	}
}

func TestKeyValue(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	if _, ok, err := s.Get("missing"); err != nil || ok {
		t.Fatalf("Expected missing key, got ok=%v err=%v", ok, err)
	}

	if err := s.Set("doc", `{"a":1}`); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := s.Set("doc", `{"a":2}`); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}
	v, ok, err := s.Get("doc")
	if err != nil || !ok {
		t.Fatalf("Get failed: ok=%v err=%v", ok, err)
	}
	if v != `{"a":2}` {
		t.Errorf("Expected overwritten value, got %s", v)
	}
	if _, ok, err := s.UpdatedAt("doc"); err != nil || !ok {
		t.Errorf("UpdatedAt failed: ok=%v err=%v", ok, err)
	}

	if err := s.Delete("doc"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if _, ok, _ := s.Get("doc"); ok {
		t.Error("Key should be gone after Delete")
	}
	if err := s.Delete("doc"); err != nil {
		t.Errorf("Deleting a missing key should succeed, got %v", err)
	}
}

func TestEdits(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	first, err := s.WriteEdit("task.update", "abc123", "success", "t1", "l1", `{"start":"2024-01-13"}`)
	if err != nil {
		t.Fatalf("WriteEdit failed: %v", err)
	}
	if first.ID == "" {
		t.Error("Edit ID should not be empty")
	}
	if _, err := s.WriteEdit("lane.add", "def456", "success", "", "l2", ""); err != nil {
		t.Fatalf("WriteEdit failed: %v", err)
	}

	all, err := s.ListEdits("", 0)
	if err != nil {
		t.Fatalf("ListEdits failed: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("Expected 2 edits, got %d", len(all))
	}
	if all[0].Action != "lane.add" {
		t.Errorf("Expected newest first, got %s", all[0].Action)
	}

	forTask, err := s.ListEdits("t1", 10)
	if err != nil {
		t.Fatalf("ListEdits with filter failed: %v", err)
	}
	if len(forTask) != 1 || forTask[0].LaneID != "l1" || forTask[0].InputsHash != "abc123" {
		t.Errorf("Unexpected filtered edits %+v", forTask)
	}

	limited, _ := s.ListEdits("", 1)
	if len(limited) != 1 {
		t.Errorf("Expected limit 1, got %d", len(limited))
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	defer s.Close()

	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping failed: %v", err)
	}
}

func newTestStore(t *testing.T) *Store {
	tmpDir := t.TempDir()
	dbPath := filepath.Join(tmpDir, "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	return s
}
