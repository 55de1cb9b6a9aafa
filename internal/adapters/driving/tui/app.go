package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/views/doccontent"
	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/minirag/internal/core/domain"
)

// statsInterval is how often the status bar totals are refreshed.
// Watch mode changes the collection behind the UI's back.
const statsInterval = 2 * time.Second

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap
	help   help.Model

	searchView     *search.View
	documentsView  *documents.View
	docContentView *doccontent.View

	// currentView tracks which view is active; helpReturn is where help goes back to.
	currentView messages.ViewType
	helpReturn  messages.ViewType

	err    error
	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:          ports,
		ctx:            context.Background(),
		styles:         s,
		keymap:         km,
		help:           help.New(),
		searchView:     search.NewView(s, km, ports.Search, ports.Clipboard),
		documentsView:  documents.NewView(s, km, ports.Document),
		docContentView: doccontent.NewView(s, ports.Document),
		currentView:    messages.ViewSearch,
	}, nil
}

// WithContext sets the context for the app and its views.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.documentsView.WithContext(ctx)
	a.docContentView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("minirag"),
		a.searchView.Init(),
		a.loadStats(),
		a.scheduleStats(),
	)
}

// loadStats reads storage totals for the status bar.
func (a *App) loadStats() tea.Cmd {
	return func() tea.Msg {
		stats, err := a.ports.Document.Stats(a.ctx)
		if err != nil {
			return messages.ErrorOccurred{Err: fmt.Errorf("read stats: %w", err)}
		}
		msg := messages.StatsLoaded{Stats: stats}
		if a.ports.Sync != nil {
			msg.Watching = a.ports.Sync.Status().Watching
		}
		return msg
	}
}

func (a *App) scheduleStats() tea.Cmd {
	return tea.Tick(statsInterval, func(time.Time) tea.Msg {
		return messages.StatsRequested{}
	})
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.StatsRequested:
		return a, tea.Batch(a.loadStats(), a.scheduleStats())

	case messages.StatsLoaded, messages.SearchCompleted, messages.Copied:
		a.searchView, cmd = a.searchView.Update(msg)
		return a, cmd

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewDocuments {
			return a, a.documentsView.Init()
		}
		return a, nil

	case messages.DocumentsLoaded:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, cmd

	case messages.DocumentDeleted:
		a.documentsView, cmd = a.documentsView.Update(msg)
		return a, tea.Batch(cmd, a.loadStats())

	case messages.DocumentSelected:
		a.currentView = messages.ViewDocContent
		return a, a.docContentView.SetDocument(msg.Document)

	case messages.ChunksLoaded:
		a.docContentView, cmd = a.docContentView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
	}

	return a, a.forward(msg)
}

// handleKeyMsg applies global keys and passes the rest to the active view.
func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewHelp:
		a.currentView = a.helpReturn
		return a, nil

	case messages.ViewSearch:
		switch {
		case keymap.Matches(key, a.keymap.Quit):
			return a, tea.Quit
		case keymap.Matches(key, a.keymap.Documents):
			return a.Update(messages.ViewChanged{View: messages.ViewDocuments})
		case keymap.Matches(key, a.keymap.Help) && !a.searchView.InputFocused():
			a.helpReturn = a.currentView
			a.currentView = messages.ViewHelp
			return a, nil
		}

	case messages.ViewDocuments, messages.ViewDocContent:
		if keymap.Matches(key, a.keymap.Help) {
			a.helpReturn = a.currentView
			a.currentView = messages.ViewHelp
			return a, nil
		}
	}

	return a, a.forward(msg)
}

// forward passes a message to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewDocuments:
		a.documentsView, cmd = a.documentsView.Update(msg)
	case messages.ViewDocContent:
		a.docContentView, cmd = a.docContentView.Update(msg)
	case messages.ViewHelp:
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewDocuments:
		return a.documentsView.View()
	case messages.ViewDocContent:
		return a.docContentView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	default:
		return a.searchView.View()
	}
}

// viewHelp renders every keybinding.
func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + "\n\n" +
		a.help.FullHelpView(a.keymap.FullHelp()) + "\n\n" +
		a.styles.Help.Render("press any key to go back")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// Query returns the current search query.
func (a *App) Query() string {
	return a.searchView.Query()
}

// Results returns the current search results.
func (a *App) Results() []domain.SearchResult {
	return a.searchView.Results()
}

// SelectedIndex returns the currently selected result index.
func (a *App) SelectedIndex() int {
	return a.searchView.SelectedIndex()
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error reported to the app.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been sized.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.help.Width = width
	a.searchView.SetDimensions(width, height)
	a.documentsView.SetDimensions(width, height)
	a.docContentView.SetDimensions(width, height)
}
