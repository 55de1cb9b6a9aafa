// Package messages defines Bubbletea message types for the TUI.
// Messages represent events and commands that flow through the Elm architecture.
package messages

import (
	"github.com/custodia-labs/minirag/internal/core/domain"
)

// SearchCompleted carries search results back to the model.
type SearchCompleted struct {
	Query   string
	Results []domain.SearchResult
	Err     error
}

// ViewChanged is sent when navigating between views.
type ViewChanged struct {
	View ViewType
}

// ViewType identifies which view is currently active.
type ViewType int

const (
	// ViewSearch is the search input and results view.
	ViewSearch ViewType = iota
	// ViewDocuments lists processed documents.
	ViewDocuments
	// ViewDocContent shows the chunks of one document.
	ViewDocContent
	// ViewHelp is the help/keybindings view.
	ViewHelp
)

// String returns the string representation of the view type.
func (v ViewType) String() string {
	switch v {
	case ViewSearch:
		return "search"
	case ViewDocuments:
		return "documents"
	case ViewDocContent:
		return "doc_content"
	case ViewHelp:
		return "help"
	default:
		return "unknown"
	}
}

// ErrorOccurred signals that an error happened.
type ErrorOccurred struct {
	Err error
}

// DocumentsLoaded carries the document listing.
type DocumentsLoaded struct {
	Documents []domain.DocumentSummary
	Err       error
}

// DocumentSelected signals a document was chosen from the listing.
type DocumentSelected struct {
	Document domain.DocumentSummary
}

// DocumentDeleted signals a document was removed.
type DocumentDeleted struct {
	DocumentID string
	Err        error
}

// ChunksLoaded carries the chunks of a document in position order.
type ChunksLoaded struct {
	DocumentID string
	Chunks     []domain.Chunk
	Err        error
}

// StatsRequested asks the app to refresh storage totals.
type StatsRequested struct{}

// StatsLoaded carries storage totals for the status bar.
type StatsLoaded struct {
	Stats    domain.StorageStats
	Watching bool
}

// Copied reports the outcome of a clipboard copy.
type Copied struct {
	Err error
}
