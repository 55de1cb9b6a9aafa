// Package documents provides the documents list view component for the TUI.
package documents

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driving"
)

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service not available")

// View is the documents list view.
type View struct {
	styles          *styles.Styles
	keymap          *keymap.KeyMap
	documentService driving.DocumentService
	ctx             context.Context

	documents    []domain.DocumentSummary
	selected     int
	scrollOffset int
	width        int
	height       int
	err          error
	loading      bool
}

// NewView creates a new documents view.
func NewView(s *styles.Styles, km *keymap.KeyMap, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:          s,
		keymap:          km,
		documentService: documentService,
		ctx:             context.Background(),
		width:           80,
		height:          24,
	}
}

// WithContext sets the context for the view.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init starts loading the listing.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadDocuments()
}

// loadDocuments returns a command that collects the document listing.
func (v *View) loadDocuments() tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentsLoaded{Err: ErrNoDocumentService}
		}
		summaries, err := v.documentService.List(v.ctx)
		if err != nil {
			return messages.DocumentsLoaded{Err: err}
		}
		return messages.DocumentsLoaded{Documents: slices.Collect(summaries)}
	}
}

// deleteDocument returns a command that removes a document.
func (v *View) deleteDocument(id string) tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.DocumentDeleted{DocumentID: id, Err: ErrNoDocumentService}
		}
		return messages.DocumentDeleted{DocumentID: id, Err: v.documentService.Delete(v.ctx, id)}
	}
}

// Update handles messages for the documents view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.DocumentsLoaded:
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.documents = msg.Documents
			v.selected = min(v.selected, max(0, len(v.documents)-1))
			v.adjustScroll()
		}
		return v, nil

	case messages.DocumentDeleted:
		if msg.Err != nil {
			v.err = msg.Err
			return v, nil
		}
		v.loading = true
		return v, v.loadDocuments()

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()
	switch {
	case keymap.Matches(key, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
			v.adjustScroll()
		}
	case keymap.Matches(key, v.keymap.Down):
		if v.selected < len(v.documents)-1 {
			v.selected++
			v.adjustScroll()
		}
	case keymap.Matches(key, v.keymap.Select):
		if doc := v.SelectedDocument(); doc != nil {
			selected := *doc
			return v, func() tea.Msg {
				return messages.DocumentSelected{Document: selected}
			}
		}
	case keymap.Matches(key, v.keymap.Delete):
		if doc := v.SelectedDocument(); doc != nil {
			return v, v.deleteDocument(doc.ID)
		}
	case keymap.Matches(key, v.keymap.Reload):
		v.loading = true
		return v, v.loadDocuments()
	case keymap.Matches(key, v.keymap.Back), keymap.Matches(key, v.keymap.Documents):
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewSearch}
		}
	}

	return v, nil
}

// adjustScroll keeps the selected item visible.
func (v *View) adjustScroll() {
	visible := v.visibleItemCount()
	if v.selected < v.scrollOffset {
		v.scrollOffset = v.selected
	} else if v.selected >= v.scrollOffset+visible {
		v.scrollOffset = v.selected - visible + 1
	}
}

// visibleItemCount returns the number of items that fit below the title and help.
func (v *View) visibleItemCount() int {
	return max(1, v.height-6)
}

// View renders the documents view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render(fmt.Sprintf("Documents (%d)", len(v.documents))))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading documents..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.documents) == 0:
		b.WriteString(v.styles.Muted.Render("No documents processed yet."))
	default:
		visible := v.visibleItemCount()
		end := min(v.scrollOffset+visible, len(v.documents))
		for i := v.scrollOffset; i < end; i++ {
			b.WriteString(v.renderDocument(i, &v.documents[i]))
			b.WriteString("\n")
		}
		if len(v.documents) > visible {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  [%d-%d of %d]", v.scrollOffset+1, end, len(v.documents))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓] navigate  [enter] chunks  [x] delete  [r] reload  [esc] back"))
	return b.String()
}

// renderDocument renders a single document line.
func (v *View) renderDocument(index int, doc *domain.DocumentSummary) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	title := doc.Title
	if title == "" {
		title = doc.ID
	}
	titleWidth := max(10, v.width/3)
	title = list.Truncate(title, titleWidth)
	facts := fmt.Sprintf("%s, %d words, %d chunks", doc.Kind, doc.WordCount, doc.ChunkCount)
	path := list.Truncate(doc.SourcePath, max(10, v.width-titleWidth-len(facts)-8))

	line := fmt.Sprintf("%s%-*s  %s  ", indicator, titleWidth, title, facts)
	if index == v.selected {
		return v.styles.Selected.Render(line + path)
	}
	return v.styles.Normal.Render(line) + v.styles.Muted.Render(path)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
}

// Documents returns the current listing.
func (v *View) Documents() []domain.DocumentSummary {
	return v.documents
}

// SelectedIndex returns the currently selected document index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedDocument returns the currently selected document, or nil if none.
func (v *View) SelectedDocument() *domain.DocumentSummary {
	if v.selected < len(v.documents) {
		return &v.documents[v.selected]
	}
	return nil
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
