package mcp

import (
	"github.com/custodia-labs/minirag/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Search ranks chunks for a query.
	Search driving.SearchService

	// Document processes and lists documents.
	Document driving.DocumentService

	// Evaluation scores retrieval quality. Optional.
	Evaluation driving.EvaluationService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Search == nil {
		return ErrMissingSearchService
	}
	if p.Document == nil {
		return ErrMissingDocumentService
	}
	return nil
}
