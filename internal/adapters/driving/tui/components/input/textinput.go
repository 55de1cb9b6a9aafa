// Package input provides text input components for the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/styles"
)

const (
	charLimit   = 512
	minWidth    = 20
	historySize = 50
)

// SearchInput wraps a bubbles textinput with a query history.
// ctrl+p and ctrl+n step through earlier queries.
type SearchInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	width     int

	history []string
	cursor  int
}

// NewSearchInput creates a new search input component.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "Type a query and press enter"
	ti.Focus()
	ti.CharLimit = charLimit
	ti.Width = 50

	return &SearchInput{
		textinput: ti,
		styles:    s,
		width:     50,
	}
}

// Init initialises the search input.
func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "ctrl+p":
			s.step(-1)
			return s, nil
		case "ctrl+n":
			s.step(1)
			return s, nil
		}
	}

	var cmd tea.Cmd
	s.textinput, cmd = s.textinput.Update(msg)
	return s, cmd
}

// View renders the search input.
func (s *SearchInput) View() string {
	label := s.styles.Title.Render("Search: ")
	field := s.styles.InputField.Render(s.textinput.View())
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Value returns the current input value.
func (s *SearchInput) Value() string {
	return s.textinput.Value()
}

// SetValue sets the input value.
func (s *SearchInput) SetValue(value string) {
	s.textinput.SetValue(value)
}

// Remember appends a submitted query to the history.
// Repeating the most recent query is not recorded twice.
func (s *SearchInput) Remember(query string) {
	if query == "" {
		return
	}
	if n := len(s.history); n == 0 || s.history[n-1] != query {
		s.history = append(s.history, query)
		if len(s.history) > historySize {
			s.history = s.history[1:]
		}
	}
	s.cursor = len(s.history)
}

// History returns submitted queries, oldest first.
func (s *SearchInput) History() []string {
	return s.history
}

func (s *SearchInput) step(delta int) {
	if len(s.history) == 0 {
		return
	}
	s.cursor = max(0, min(len(s.history), s.cursor+delta))
	if s.cursor == len(s.history) {
		s.textinput.SetValue("")
		return
	}
	s.textinput.SetValue(s.history[s.cursor])
	s.textinput.CursorEnd()
}

// Focus sets focus on the input.
func (s *SearchInput) Focus() tea.Cmd {
	return s.textinput.Focus()
}

// Blur removes focus from the input.
func (s *SearchInput) Blur() {
	s.textinput.Blur()
}

// Focused returns whether the input is focused.
func (s *SearchInput) Focused() bool {
	return s.textinput.Focused()
}

// SetWidth sets the width of the input, leaving room for the label.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	s.textinput.Width = max(minWidth, width-12)
}

// Width returns the current width.
func (s *SearchInput) Width() int {
	return s.width
}

// Reset clears the input.
func (s *SearchInput) Reset() {
	s.textinput.Reset()
	s.cursor = len(s.history)
}
