// Package watch renders a live dashboard of psychotropic cue states for
// `igor watch`, driven by updates pushed in from the scheduler.
package watch

import (
	"context"
	"fmt"
	"sort"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/igor-vendor/igor/igor"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FFFFFF")).
			Background(lipgloss.Color("#5f00d7")).
			Padding(0, 1)

	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	waitingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	runningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5f00d7")).Bold(true)
	completedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#00AF5F"))
	failedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#D70000")).Bold(true)
	cancelledStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Italic(true)

	helpStyle = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#888888"))
	docStyle  = lipgloss.NewStyle().Padding(1, 2)
)

// StateUpdate is sent on the update channel each time a cue changes
// state; Run forwards it into the bubbletea program as a tea.Msg.
type StateUpdate struct {
	Name  string
	State igor.CueState
}

type model struct {
	order   []string
	states  map[string]igor.CueState
	spinner spinner.Model
	quit    bool
}

func newModel(names []string) model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	states := make(map[string]igor.CueState, len(names))
	for _, n := range names {
		states[n] = igor.CuePending
	}
	return model{order: names, states: states, spinner: s}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		switch typed.String() {
		case "ctrl+c", "q":
			m.quit = true
			return m, tea.Quit
		}
	case StateUpdate:
		m.states[typed.Name] = typed.State
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	names := append([]string(nil), m.order...)
	sort.Strings(names)

	out := titleStyle.Render("igor watch") + "\n\n"
	for _, name := range names {
		state := m.states[name]
		out += fmt.Sprintf("  %s  %s\n", renderBadge(m, state), name)
	}
	out += "\n" + helpStyle.Render("q to quit")
	return docStyle.Render(out)
}

func renderBadge(m model, state igor.CueState) string {
	switch state {
	case igor.CuePending:
		return pendingStyle.Render("pending  ")
	case igor.CueWaiting:
		return waitingStyle.Render("waiting  ")
	case igor.CueRunning:
		return runningStyle.Render(m.spinner.View() + " running")
	case igor.CueCompleted:
		return completedStyle.Render("done     ")
	case igor.CueFailed:
		return failedStyle.Render("failed   ")
	case igor.CueCancelled:
		return cancelledStyle.Render("cancelled")
	default:
		return "?"
	}
}

// Run drives the dashboard until the context is cancelled or the user
// quits. updates delivers live StateUpdate events from the scheduler.
func Run(ctx context.Context, names []string, updates <-chan StateUpdate) error {
	p := tea.NewProgram(newModel(names))

	go func() {
		for {
			select {
			case <-ctx.Done():
				p.Quit()
				return
			case u, ok := <-updates:
				if !ok {
					return
				}
				p.Send(u)
			}
		}
	}()

	_, err := p.Run()
	return err
}
