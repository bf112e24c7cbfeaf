package watch

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/igor-vendor/igor/igor"
)

func TestNewModelStartsAllPending(t *testing.T) {
	m := newModel([]string{"alpha", "beta"})
	for _, name := range []string{"alpha", "beta"} {
		if m.states[name] != igor.CuePending {
			t.Fatalf("expected %s to start pending, got %v", name, m.states[name])
		}
	}
}

func TestUpdateAppliesStateUpdate(t *testing.T) {
	m := newModel([]string{"alpha"})
	updated, _ := m.Update(StateUpdate{Name: "alpha", State: igor.CueRunning})
	mm := updated.(model)
	if mm.states["alpha"] != igor.CueRunning {
		t.Fatalf("expected alpha running, got %v", mm.states["alpha"])
	}
}

func TestUpdateQuitsOnCtrlC(t *testing.T) {
	m := newModel([]string{"alpha"})
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	mm := updated.(model)
	if !mm.quit {
		t.Fatal("expected ctrl+c to set quit")
	}
	if cmd == nil {
		t.Fatal("expected a quit command")
	}
}

func TestViewRendersEveryCueName(t *testing.T) {
	m := newModel([]string{"alpha", "beta"})
	view := m.View()
	if !strings.Contains(view, "alpha") || !strings.Contains(view, "beta") {
		t.Fatalf("expected both cue names in the rendered view, got:\n%s", view)
	}
}

func TestViewReflectsFailedState(t *testing.T) {
	m := newModel([]string{"alpha"})
	updated, _ := m.Update(StateUpdate{Name: "alpha", State: igor.CueFailed})
	mm := updated.(model)
	view := mm.View()
	if !strings.Contains(view, "failed") {
		t.Fatalf("expected the view to show alpha as failed, got:\n%s", view)
	}
}
