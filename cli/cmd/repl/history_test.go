package repl

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestHistory_PersistsModes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "history")

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatalf("load missing file: %v", err)
	}

	for _, e := range []HistoryEntry{
		{"key == 'dt'", modeQuery},
		{"list", modeCtrl},
		{"  ", modeCtrl},
		{"list", modeCtrl},
	} {
		if err := h.Write(e.Line, e.Mode); err != nil {
			t.Fatalf("write %q: %v", e.Line, err)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff("Q:key == 'dt'\nC:list\n", string(data)); diff != "" {
		t.Errorf("history file mismatch (-want +got):\n%s", diff)
	}

	reloaded := NewHistory(path)
	if err := reloaded.Load(); err != nil {
		t.Fatal(err)
	}

	if diff := cmp.Diff(h.Entries(), reloaded.Entries()); diff != "" {
		t.Errorf("reloaded entries mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_MovesDuplicateToEnd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	h := NewHistory(path)

	for _, line := range []string{"list", "help", "list"} {
		if err := h.Write(line, modeCtrl); err != nil {
			t.Fatal(err)
		}
	}

	// Same line in the other mode is a distinct entry.
	if err := h.Write("help", modeQuery); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{
		{"help", modeCtrl},
		{"list", modeCtrl},
		{"help", modeQuery},
	}

	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}

	data, _ := os.ReadFile(path)
	if diff := cmp.Diff("C:help\nC:list\nQ:help\n", string(data)); diff != "" {
		t.Errorf("history file mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_LoadUntagged(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history")
	if err := os.WriteFile(path, []byte("Q:a\n\nlist\nC:quit\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	h := NewHistory(path)
	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	want := []HistoryEntry{{"a", modeQuery}, {"list", modeCtrl}, {"quit", modeCtrl}}
	if diff := cmp.Diff(want, h.Entries()); diff != "" {
		t.Errorf("entries mismatch (-want +got):\n%s", diff)
	}
}

func TestHistory_InMemory(t *testing.T) {
	h := NewHistory("")

	if err := h.Load(); err != nil {
		t.Fatal(err)
	}

	if err := h.Write("list", modeCtrl); err != nil {
		t.Fatal(err)
	}

	if h.Len() != 1 {
		t.Errorf("Len() = %d", h.Len())
	}

	if _, err := h.GetEntry(1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("GetEntry(1) error = %v", err)
	}

	if _, err := h.GetEntry(-1); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("GetEntry(-1) error = %v", err)
	}
}
