// Package doccontent provides the chunk-by-chunk document view for the TUI.
package doccontent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driving"
)

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service not available")

// View shows a document split into its chunks.
type View struct {
	styles          *styles.Styles
	documentService driving.DocumentService
	ctx             context.Context

	document     *domain.DocumentSummary
	chunks       []domain.Chunk
	lines        []string
	scrollOffset int
	width        int
	height       int
	err          error
	loading      bool
}

// NewView creates a new document content view.
func NewView(s *styles.Styles, documentService driving.DocumentService) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles:          s,
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

// SetDocument sets the document and loads its chunks.
func (v *View) SetDocument(doc domain.DocumentSummary) tea.Cmd {
	v.document = &doc
	v.chunks = nil
	v.lines = nil
	v.scrollOffset = 0
	v.err = nil
	v.loading = true
	return v.loadChunks(doc.ID)
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return nil
}

func (v *View) loadChunks(id string) tea.Cmd {
	return func() tea.Msg {
		if v.documentService == nil {
			return messages.ChunksLoaded{DocumentID: id, Err: ErrNoDocumentService}
		}
		chunks, err := v.documentService.GetChunks(v.ctx, id)
		return messages.ChunksLoaded{DocumentID: id, Chunks: chunks, Err: err}
	}
}

// Update handles messages for the document content view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.ChunksLoaded:
		if v.document == nil || msg.DocumentID != v.document.ID {
			return v, nil
		}
		v.loading = false
		v.err = msg.Err
		if msg.Err == nil {
			v.chunks = msg.Chunks
			v.layout()
		}
		return v, nil

	case messages.ErrorOccurred:
		v.err = msg.Err
		return v, nil
	}

	return v, nil
}

// handleKeyMsg handles key presses.
func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		v.scrollOffset = max(0, v.scrollOffset-1)
	case "down", "j":
		v.scrollOffset = min(v.maxScrollOffset(), v.scrollOffset+1)
	case "pgup", "ctrl+u":
		v.scrollOffset = max(0, v.scrollOffset-v.visibleLines())
	case "pgdown", "ctrl+d":
		v.scrollOffset = min(v.maxScrollOffset(), v.scrollOffset+v.visibleLines())
	case "home", "g":
		v.scrollOffset = 0
	case "end", "G":
		v.scrollOffset = v.maxScrollOffset()
	case "esc":
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}
	}

	return v, nil
}

// layout renders every chunk under a header line and wraps it to the width.
func (v *View) layout() {
	contentWidth := max(20, v.width-4)
	v.lines = v.lines[:0]

	for i := range v.chunks {
		c := &v.chunks[i]
		header := fmt.Sprintf("── chunk %d · bytes %d-%d · %d words ", c.Position, c.Start, c.End, c.WordCount)
		v.lines = append(v.lines, header)
		for _, raw := range strings.Split(c.Content, "\n") {
			v.lines = append(v.lines, wrap(raw, contentWidth)...)
		}
		v.lines = append(v.lines, "")
	}
	v.scrollOffset = min(v.scrollOffset, v.maxScrollOffset())
}

// wrap splits a line into pieces of at most width runes.
func wrap(line string, width int) []string {
	runes := []rune(line)
	if len(runes) <= width {
		return []string{line}
	}
	out := make([]string, 0, len(runes)/width+1)
	for len(runes) > width {
		out = append(out, string(runes[:width]))
		runes = runes[width:]
	}
	if len(runes) > 0 {
		out = append(out, string(runes))
	}
	return out
}

// visibleLines returns the number of lines that fit below the title and help.
func (v *View) visibleLines() int {
	return max(1, v.height-6)
}

func (v *View) maxScrollOffset() int {
	return max(0, len(v.lines)-v.visibleLines())
}

// View renders the document content view.
func (v *View) View() string {
	var b strings.Builder

	title := "Document"
	if v.document != nil {
		title = v.document.Title
		if title == "" {
			title = v.document.ID
		}
		title = fmt.Sprintf("%s (%d chunks)", title, len(v.chunks))
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	b.WriteString(strings.Repeat("─", min(max(v.width-4, 0), 60)))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading chunks..."))
	case v.err != nil:
		b.WriteString(v.styles.Error.Render("Error: " + v.err.Error()))
	case len(v.lines) == 0:
		b.WriteString(v.styles.Muted.Render("(No chunks)"))
	default:
		end := min(v.scrollOffset+v.visibleLines(), len(v.lines))
		for i := v.scrollOffset; i < end; i++ {
			line := v.lines[i]
			if strings.HasPrefix(line, "── chunk") {
				b.WriteString(v.styles.Subtitle.Render(line))
			} else {
				b.WriteString(v.styles.Normal.Render(line))
			}
			b.WriteString("\n")
		}
		if len(v.lines) > v.visibleLines() {
			b.WriteString(v.styles.Muted.Render(fmt.Sprintf("  Line %d-%d of %d", v.scrollOffset+1, end, len(v.lines))))
		}
	}

	b.WriteString("\n\n")
	b.WriteString(v.styles.Help.Render("[↑/↓/PgUp/PgDn] scroll  [g/G] top/bottom  [esc] back"))
	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.layout()
}

// Document returns the current document.
func (v *View) Document() *domain.DocumentSummary {
	return v.document
}

// Chunks returns the loaded chunks.
func (v *View) Chunks() []domain.Chunk {
	return v.chunks
}

// ScrollOffset returns the first visible line.
func (v *View) ScrollOffset() int {
	return v.scrollOffset
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
