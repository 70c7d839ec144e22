package tui

import (
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/phannguyenbuu/dinh-tot-dong/internal/backup"
)

func testBackups() []backup.Backup {
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.Local)
	return []backup.Backup{
		{ID: "site.backup.20260314_092653", Name: "site", Timestamp: at, Size: 2048},
		{ID: "site.backup.20260313_080000", Name: "site", Timestamp: at.Add(-25 * time.Hour), Size: 1900},
	}
}

func TestBackupItemMethods(t *testing.T) {
	item := backupItem{backup: testBackups()[0]}

	if item.Title() != "site.backup.20260314_092653" {
		t.Errorf("Title() = %q", item.Title())
	}
	if item.FilterValue() != item.Title() {
		t.Errorf("FilterValue() = %q, want %q", item.FilterValue(), item.Title())
	}

	desc := item.Description()
	if !strings.Contains(desc, "2026-03-14 09:26:53") {
		t.Errorf("Description() should contain timestamp, got %q", desc)
	}
	if !strings.Contains(desc, "kB") {
		t.Errorf("Description() should contain size, got %q", desc)
	}
}

func TestModelKeyHandling(t *testing.T) {
	t.Run("quit with q", func(t *testing.T) {
		m := NewPicker(testBackups())
		newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
		model := newModel.(Model)

		if model.result.Action != ActionQuit {
			t.Errorf("Action = %v, want ActionQuit", model.result.Action)
		}
		if !model.quitting {
			t.Error("Model should be quitting")
		}
		if cmd == nil {
			t.Error("Should return tea.Quit command")
		}
	})

	t.Run("quit with esc", func(t *testing.T) {
		m := NewPicker(testBackups())
		newModel, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
		model := newModel.(Model)

		if model.result.Action != ActionQuit {
			t.Errorf("Action = %v, want ActionQuit", model.result.Action)
		}
	})

	t.Run("restore with enter", func(t *testing.T) {
		m := NewPicker(testBackups())
		newModel, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
		model := newModel.(Model)

		if model.result.Action != ActionRestore {
			t.Fatalf("Action = %v, want ActionRestore", model.result.Action)
		}
		if model.result.Backup == nil || model.result.Backup.ID != "site.backup.20260314_092653" {
			t.Errorf("Backup = %+v, want newest backup", model.result.Backup)
		}
		if cmd == nil {
			t.Error("Should return tea.Quit command")
		}
	})

	t.Run("window size update", func(t *testing.T) {
		m := NewPicker(testBackups())
		newModel, cmd := m.Update(tea.WindowSizeMsg{Width: 100, Height: 50})
		model := newModel.(Model)

		if model.width != 100 {
			t.Errorf("Width = %d, want 100", model.width)
		}
		if model.height != 50 {
			t.Errorf("Height = %d, want 50", model.height)
		}
		if cmd != nil {
			t.Error("Window size update should not return a command")
		}
	})
}

func TestModelInit(t *testing.T) {
	m := Model{}
	if cmd := m.Init(); cmd != nil {
		t.Error("Init() should return nil")
	}
}

func TestModelView(t *testing.T) {
	t.Run("normal view contains help", func(t *testing.T) {
		view := NewPicker(testBackups()).View()

		if !strings.Contains(view, "[enter] Restore") {
			t.Error("View should contain restore help")
		}
		if !strings.Contains(view, "[q] Quit") {
			t.Error("View should contain quit help")
		}
	})

	t.Run("quitting view is empty", func(t *testing.T) {
		m := NewPicker(testBackups())
		m.quitting = true

		if view := m.View(); view != "" {
			t.Errorf("Quitting view should be empty, got %q", view)
		}
	})
}

func TestRunPickerEmptyBackups(t *testing.T) {
	result, err := RunPicker(nil)
	if err != nil {
		t.Fatalf("RunPicker with no backups failed: %v", err)
	}
	if result.Action != ActionQuit {
		t.Errorf("No backups should return ActionQuit, got %v", result.Action)
	}
}

func TestSimplePicker(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		out := SimplePicker(nil)
		if !strings.Contains(out, "No backups found.") {
			t.Errorf("output = %q", out)
		}
	})

	t.Run("lists backups in order", func(t *testing.T) {
		out := SimplePicker(testBackups())
		first := strings.Index(out, "1. site.backup.20260314_092653")
		second := strings.Index(out, "2. site.backup.20260313_080000")
		if first < 0 || second < 0 || first > second {
			t.Errorf("unexpected listing:\n%s", out)
		}
	})
}
