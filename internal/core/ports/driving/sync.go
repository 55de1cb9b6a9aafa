package driving

import (
	"context"

	"github.com/custodia-labs/minirag/internal/core/domain"
)

// SyncOrchestrator applies connector output to the document collection.
type SyncOrchestrator interface {
	// Ingest processes every document from a full scan.
	// Per-document failures are collected in the result, not returned.
	Ingest(ctx context.Context, docs <-chan domain.RawDocument, errs <-chan error) (*SyncResult, error)

	// Apply processes a single change event.
	Apply(ctx context.Context, change domain.RawDocumentChange) error

	// Watch applies changes until the channel closes or ctx is cancelled.
	Watch(ctx context.Context, changes <-chan domain.RawDocumentChange) (*SyncResult, error)

	// Status returns the running totals.
	Status() SyncStatus
}

// SyncResult summarises an ingestion run.
type SyncResult struct {
	// Processed is the number of documents stored.
	Processed int

	// Failed is the number of documents that could not be stored.
	Failed int

	// Errors holds the per-document failures.
	Errors []error
}

// SyncStatus represents the totals of an orchestrator since creation.
type SyncStatus struct {
	// Watching is true while Watch is running.
	Watching bool

	// DocumentsProcessed is the number of documents and changes applied.
	DocumentsProcessed int

	// ErrorCount is the number of failures.
	ErrorCount int
}
