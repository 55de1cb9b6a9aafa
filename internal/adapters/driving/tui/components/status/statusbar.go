// Package status provides status bar components for the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/minirag/internal/core/domain"
)

// State represents the current application state for display.
type State string

const (
	StateReady     State = "ready"
	StateSearching State = "searching"
	StateError     State = "error"
	StateResults   State = "results"
)

// Bar displays storage totals, the search state and keybinding hints.
type Bar struct {
	styles      *styles.Styles
	keymap      *keymap.KeyMap
	state       State
	message     string
	resultCount int
	stats       domain.StorageStats
	watching    bool
	width       int
}

// NewBar creates a new status bar component.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &Bar{
		styles: s,
		keymap: km,
		state:  StateReady,
		width:  80,
	}
}

// Init initialises the status bar.
func (s *Bar) Init() tea.Cmd {
	return nil
}

// Update is a no-op; the bar is driven through its setters.
func (s *Bar) Update(_ tea.Msg) (*Bar, tea.Cmd) {
	return s, nil
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	padding := max(1, s.width-lipgloss.Width(left)-lipgloss.Width(right)-2)

	return s.styles.StatusBar.Width(s.width).Render(
		left + strings.Repeat(" ", padding) + right,
	)
}

// renderLeft renders totals followed by the state or message.
func (s *Bar) renderLeft() string {
	totals := fmt.Sprintf("%d docs · %d chunks", s.stats.TotalDocuments, s.stats.TotalChunks)
	if s.watching {
		totals += " · watching"
	}
	parts := []string{s.styles.Muted.Render(totals)}

	switch s.state {
	case StateSearching:
		parts = append(parts, s.styles.Muted.Render("Searching..."))
	case StateError:
		msg := "Error"
		if s.message != "" {
			msg = "Error: " + s.message
		}
		parts = append(parts, s.styles.Error.Render(msg))
	case StateResults:
		parts = append(parts, s.styles.Normal.Render(fmt.Sprintf("%d results", s.resultCount)))
	case StateReady:
	}

	if s.message != "" && s.state != StateError {
		parts = append(parts, s.styles.Success.Render(s.message))
	}
	return strings.Join(parts, "  ")
}

// renderRight renders keybinding hints.
func (s *Bar) renderRight() string {
	var bindings []key.Binding
	if s.state == StateResults && s.resultCount > 0 {
		bindings = s.keymap.ResultsHelp()
	} else {
		bindings = s.keymap.ShortHelp()
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s: %s", h.Key, h.Desc))
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets a transient message, such as a copy confirmation.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the current message.
func (s *Bar) Message() string {
	return s.message
}

// SetResultCount sets the result count.
func (s *Bar) SetResultCount(count int) {
	s.resultCount = count
}

// ResultCount returns the current result count.
func (s *Bar) ResultCount() int {
	return s.resultCount
}

// SetStats sets the storage totals and whether a watcher is running.
func (s *Bar) SetStats(stats domain.StorageStats, watching bool) {
	s.stats = stats
	s.watching = watching
}

// Stats returns the storage totals last set.
func (s *Bar) Stats() domain.StorageStats {
	return s.stats
}

// SetWidth sets the status bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}

// Clear resets the search state. Storage totals are kept.
func (s *Bar) Clear() {
	s.state = StateReady
	s.message = ""
	s.resultCount = 0
}
