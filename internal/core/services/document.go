package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
	"github.com/custodia-labs/minirag/internal/core/ports/driving"
	"github.com/custodia-labs/minirag/internal/logger"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService is the document processor: it extracts text, chunks it
// and registers the result with the document store.
type DocumentService struct {
	docStore  driven.DocumentStore
	extractor driven.ContentExtractor
	chunkers  driven.ChunkerFactory
	chunking  domain.ChunkingConfig
	now       func() time.Time
}

// NewDocumentService creates a new document service.
// chunking is the configuration used when a call does not name a strategy.
func NewDocumentService(
	docStore driven.DocumentStore,
	extractor driven.ContentExtractor,
	chunkers driven.ChunkerFactory,
	chunking domain.ChunkingConfig,
) *DocumentService {
	return &DocumentService{
		docStore:  docStore,
		extractor: extractor,
		chunkers:  chunkers,
		chunking:  chunking,
		now:       time.Now,
	}
}

// ProcessContent ingests text that did not come from a file.
// The content kind is chosen from the source path extension.
func (s *DocumentService) ProcessContent(
	ctx context.Context, content, sourcePath string, strategy domain.ChunkType,
) (*domain.Document, error) {
	raw := &domain.RawDocument{
		SourcePath: sourcePath,
		Kind:       domain.KindForPath(sourcePath),
		Content:    []byte(content),
	}
	return s.Process(ctx, raw, strategy)
}

// Process ingests a raw document: extract, chunk, store.
func (s *DocumentService) Process(
	ctx context.Context, raw *domain.RawDocument, strategy domain.ChunkType,
) (*domain.Document, error) {
	if raw == nil {
		return nil, fmt.Errorf("raw document is nil: %w", domain.ErrInvalidInput)
	}

	logger.Section("Document Processing")
	logger.Debug("Source: %s (%s, %d bytes)", raw.SourcePath, raw.Kind, raw.Size())

	cfg := s.chunking
	if strategy != "" {
		cfg.Strategy = strategy
	}
	pipeline, err := s.chunkers.Pipeline(cfg)
	if err != nil {
		return nil, err
	}

	result, err := s.extractor.Normalise(ctx, raw)
	if err != nil {
		return nil, err
	}

	doc := result.Document
	doc.ID = uuid.New().String()
	doc.Metadata.CreatedAt = s.now()
	logger.Debug("Extracted %q: %d words", doc.Title, doc.Metadata.WordCount)

	chunks, err := pipeline.Process(ctx, &doc)
	if err != nil {
		return nil, fmt.Errorf("chunk %s: %w", raw.SourcePath, err)
	}
	logger.Debug("Chunked with %s: %d chunks", cfg.Strategy, len(chunks))

	if err := s.docStore.PutDocument(ctx, &doc, chunks); err != nil {
		return nil, fmt.Errorf("store %s: %w", raw.SourcePath, err)
	}
	logger.Info("Processed %s as %s (%d chunks)", raw.SourcePath, doc.ID, len(chunks))

	return &doc, nil
}

// Get retrieves a document by ID.
func (s *DocumentService) Get(ctx context.Context, documentID string) (*domain.Document, error) {
	return s.docStore.GetDocument(ctx, documentID)
}

// GetChunks returns the chunks of a document ordered by position.
func (s *DocumentService) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	return s.docStore.GetChunks(ctx, documentID)
}

// GetContent returns the full document content.
func (s *DocumentService) GetContent(ctx context.Context, documentID string) (string, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return "", err
	}
	return doc.Content, nil
}

// GetDetails returns the listing view of a single document.
func (s *DocumentService) GetDetails(ctx context.Context, documentID string) (*domain.DocumentSummary, error) {
	doc, err := s.docStore.GetDocument(ctx, documentID)
	if err != nil {
		return nil, err
	}
	chunks, err := s.docStore.GetChunks(ctx, documentID)
	if err != nil {
		return nil, err
	}
	summary := doc.Summary(len(chunks))
	return &summary, nil
}

// List returns document summaries sorted by source path.
// Sorting happens each time the sequence is ranged over.
func (s *DocumentService) List(ctx context.Context) (iter.Seq[domain.DocumentSummary], error) {
	stored, err := s.docStore.ListDocuments(ctx)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return func(yield func(domain.DocumentSummary) bool) {
		var summaries []domain.DocumentSummary
		for summary := range stored {
			summaries = append(summaries, summary)
		}
		sort.SliceStable(summaries, func(i, j int) bool {
			return summaries[i].SourcePath < summaries[j].SourcePath
		})
		for _, summary := range summaries {
			if !yield(summary) {
				return
			}
		}
	}, nil
}

// Replace ingests raw, then removes the documents previously ingested from
// the same source path. The older documents are looked up first and only
// removed once the new one is stored, so a failed ingest keeps them. If a
// removal fails the new document is withdrawn again.
func (s *DocumentService) Replace(
	ctx context.Context, raw *domain.RawDocument, strategy domain.ChunkType,
) (*domain.Document, error) {
	if raw == nil {
		return nil, fmt.Errorf("raw document is nil: %w", domain.ErrInvalidInput)
	}

	previous, err := s.docStore.FindBySourcePath(ctx, raw.SourcePath)
	if err != nil {
		return nil, fmt.Errorf("replace %s: %w", raw.SourcePath, err)
	}

	doc, err := s.Process(ctx, raw, strategy)
	if err != nil {
		return nil, err
	}

	for _, id := range previous {
		err := s.docStore.DeleteDocument(ctx, id)
		if err == nil || errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if rollback := s.docStore.DeleteDocument(ctx, doc.ID); rollback != nil {
			logger.Warn("Withdrawing %s after failed replace: %v", doc.ID, rollback)
		}
		return nil, fmt.Errorf("replace %s: remove %s: %w", raw.SourcePath, id, err)
	}
	logger.Debug("Replaced %d documents for %s with %s", len(previous), raw.SourcePath, doc.ID)
	return doc, nil
}

// Delete removes a document and its chunks.
func (s *DocumentService) Delete(ctx context.Context, documentID string) error {
	if err := s.docStore.DeleteDocument(ctx, documentID); err != nil {
		return err
	}
	logger.Info("Deleted %s", documentID)
	return nil
}

// DeleteBySourcePath removes every document ingested from path.
// A document removed concurrently is not counted and is not an error.
func (s *DocumentService) DeleteBySourcePath(ctx context.Context, path string) (int, error) {
	ids, err := s.docStore.FindBySourcePath(ctx, path)
	if err != nil {
		return 0, fmt.Errorf("find %s: %w", path, err)
	}

	removed := 0
	for _, id := range ids {
		err := s.docStore.DeleteDocument(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			continue
		}
		if err != nil {
			return removed, err
		}
		removed++
	}
	logger.Debug("Deleted %d documents for %s", removed, path)
	return removed, nil
}

// Stats returns storage totals.
func (s *DocumentService) Stats(ctx context.Context) (domain.StorageStats, error) {
	stats, err := s.docStore.Stats(ctx)
	if err != nil {
		return domain.StorageStats{}, fmt.Errorf("stats: %w", err)
	}
	return stats, nil
}

// Clear removes all documents.
func (s *DocumentService) Clear(ctx context.Context) error {
	if err := s.docStore.Clear(ctx); err != nil {
		return fmt.Errorf("clear: %w", err)
	}
	logger.Info("Cleared document store")
	return nil
}
