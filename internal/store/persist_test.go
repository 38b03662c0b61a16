package store

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveAndReloadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")

	s := New(path)
	idB := addText(t, s, "B")
	addText(t, s, "A")
	s.TogglePin(idB)
	if err := s.UpdateSetting("theme", "light"); err != nil {
		t.Fatalf("setting update failed: %v", err)
	}

	reloaded := New(path)
	history := reloaded.History()
	if len(history) != 2 {
		t.Fatalf("expected 2 entries after reload, got %d", len(history))
	}
	if history[0].Content != "A" || history[1].Content != "B" || !history[1].IsPinned {
		t.Fatalf("reloaded history does not match saved state: %#v", history)
	}
	if reloaded.Settings().Theme != "light" {
		t.Fatalf("expected theme light after reload, got %#v", reloaded.Settings())
	}
}

func TestSaveAndReloadFullHistory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")

	s := New(path)
	for i := 1; i <= maxEntries; i++ {
		addText(t, s, fmt.Sprintf("entry-%d", i))
	}

	reloaded := New(path)
	want := s.History()
	got := reloaded.History()
	if len(got) != len(want) {
		t.Fatalf("expected %d entries after reload, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("entry %d differs after reload: %#v vs %#v", i, got[i], want[i])
		}
	}
}

func TestNewMissingFileStartsDefault(t *testing.T) {
	s := New(filepath.Join(t.TempDir(), "db.json"))

	if len(s.History()) != 0 {
		t.Fatalf("expected empty history, got %v", contents(s.History()))
	}
	if s.Settings() != DefaultSettings() {
		t.Fatalf("expected default settings, got %#v", s.Settings())
	}
}

func TestNewCorruptFileStartsDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	s := New(path)
	if len(s.History()) != 0 {
		t.Fatalf("corrupt file must yield the default document, got %v", contents(s.History()))
	}

	// The store remains writable afterwards
	addText(t, s, "fresh")
	if len(New(path).History()) != 1 {
		t.Fatalf("expected the replacement database to persist")
	}
}

func TestSaveCreatesParentDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "deeper", "db.json")

	s := New(path)
	addText(t, s, "entry")

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected database file to exist: %v", err)
	}
}
