package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driving"
	"github.com/custodia-labs/minirag/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// SyncOrchestrator feeds connector output through the document processor.
type SyncOrchestrator struct {
	documents driving.DocumentService
	strategy  domain.ChunkType

	mu     sync.RWMutex
	status driving.SyncStatus
}

// NewSyncOrchestrator creates a new sync orchestrator.
// An empty strategy uses the document service default.
func NewSyncOrchestrator(documents driving.DocumentService, strategy domain.ChunkType) *SyncOrchestrator {
	return &SyncOrchestrator{
		documents: documents,
		strategy:  strategy,
	}
}

// Ingest processes every document from a full scan until the document
// channel closes. Connector errors and per-document failures are counted
// and collected; only cancellation stops the run early.
func (o *SyncOrchestrator) Ingest(
	ctx context.Context,
	docsCh <-chan domain.RawDocument,
	errsCh <-chan error,
) (*driving.SyncResult, error) {
	logger.Section("Ingest")
	defer logger.Timed("ingest")()

	result := &driving.SyncResult{}
	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()

		case err, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			if err != nil {
				o.recordFailure(result, fmt.Errorf("connector: %w", err))
			}

		case raw, ok := <-docsCh:
			if !ok {
				// Drain errors the connector reported before closing.
				for err := range drain(errsCh) {
					if err != nil {
						o.recordFailure(result, fmt.Errorf("connector: %w", err))
					}
				}
				logger.Info("Ingested %d documents, %d failed", result.Processed, result.Failed)
				return result, nil
			}

			logger.Debug("Processing: %s", raw.SourcePath)
			if _, err := o.documents.Process(ctx, &raw, o.strategy); err != nil {
				o.recordFailure(result, fmt.Errorf("%s: %w", raw.SourcePath, err))
				continue
			}
			o.recordSuccess(result)
		}
	}
}

// Apply processes a single change event. Created and updated files both
// replace every document previously ingested from the same source path, so
// editors that save by renaming over the target do not leave duplicates.
// A change that fails to ingest leaves the previous version searchable.
func (o *SyncOrchestrator) Apply(ctx context.Context, change domain.RawDocumentChange) error {
	path := change.Document.SourcePath
	switch change.Type {
	case domain.ChangeCreated, domain.ChangeUpdated:
		logger.Debug("Processing %s: %s", change.Type, path)
		_, err := o.documents.Replace(ctx, &change.Document, o.strategy)
		return err

	case domain.ChangeDeleted:
		logger.Debug("Deleting: %s", path)
		_, err := o.documents.DeleteBySourcePath(ctx, path)
		return err

	default:
		return fmt.Errorf("change type %d: %w", change.Type, domain.ErrUnsupportedType)
	}
}

// Watch applies changes until the channel closes or ctx is cancelled.
// A failed change is logged and counted; watching continues.
func (o *SyncOrchestrator) Watch(
	ctx context.Context,
	changes <-chan domain.RawDocumentChange,
) (*driving.SyncResult, error) {
	o.setWatching(true)
	defer o.setWatching(false)

	result := &driving.SyncResult{}
	for {
		select {
		case <-ctx.Done():
			return result, ctx.Err()

		case change, ok := <-changes:
			if !ok {
				return result, nil
			}
			if err := o.Apply(ctx, change); err != nil {
				logger.Warn("Failed to apply %s change for %s: %v", change.Type, change.Document.SourcePath, err)
				o.recordFailure(result, err)
				continue
			}
			logger.Info("Applied %s: %s", change.Type, change.Document.SourcePath)
			o.recordSuccess(result)
		}
	}
}

// Status returns the running totals.
func (o *SyncOrchestrator) Status() driving.SyncStatus {
	o.mu.RLock()
	defer o.mu.RUnlock()
	return o.status
}

func (o *SyncOrchestrator) recordSuccess(result *driving.SyncResult) {
	result.Processed++
	o.mu.Lock()
	o.status.DocumentsProcessed++
	o.mu.Unlock()
}

func (o *SyncOrchestrator) recordFailure(result *driving.SyncResult, err error) {
	logger.Debug("Failed: %v", err)
	result.Failed++
	result.Errors = append(result.Errors, err)
	o.mu.Lock()
	o.status.ErrorCount++
	o.mu.Unlock()
}

func (o *SyncOrchestrator) setWatching(watching bool) {
	o.mu.Lock()
	o.status.Watching = watching
	o.mu.Unlock()
}

// drain returns errs, or a closed channel when errs is nil.
func drain(errs <-chan error) <-chan error {
	if errs != nil {
		return errs
	}
	closed := make(chan error)
	close(closed)
	return closed
}
