// Package tui provides an interactive terminal user interface for minirag.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/custodia-labs/minirag/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/minirag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search ranks chunks for the query input.
	Search driving.SearchService

	// Document lists, shows and deletes documents.
	Document driving.DocumentService

	// Sync reports whether a watcher is running. Optional.
	Sync driving.SyncOrchestrator

	// Clipboard receives copied chunks. Optional.
	Clipboard search.CopyFunc
}

// NewPorts creates a new Ports aggregate with the required services.
func NewPorts(searchService driving.SearchService, documents driving.DocumentService) *Ports {
	return &Ports{
		Search:   searchService,
		Document: documents,
	}
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
