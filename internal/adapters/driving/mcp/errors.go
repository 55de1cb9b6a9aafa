// Package mcp provides an MCP (Model Context Protocol) server adapter for minirag.
// It lets AI assistants process documents, search them and measure
// retrieval quality over the session's in-memory collection.
package mcp

import "errors"

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("mcp: search service is required")

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("mcp: document service is required")

// ErrMissingEvaluationService is returned when evaluate is called without an evaluation service.
var ErrMissingEvaluationService = errors.New("mcp: evaluation service is not configured")
