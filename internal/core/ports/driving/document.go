package driving

import (
	"context"
	"iter"

	"github.com/custodia-labs/minirag/internal/core/domain"
)

// DocumentService ingests documents and manages the stored collection.
type DocumentService interface {
	// ProcessContent ingests text that did not come from a file.
	// An empty strategy uses the configured default.
	ProcessContent(ctx context.Context, content, sourcePath string, strategy domain.ChunkType) (*domain.Document, error)

	// Process ingests a raw document: extract, chunk, store.
	Process(ctx context.Context, raw *domain.RawDocument, strategy domain.ChunkType) (*domain.Document, error)

	// Get retrieves a document by ID.
	Get(ctx context.Context, documentID string) (*domain.Document, error)

	// GetChunks returns the chunks of a document ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// GetContent returns the full document content.
	GetContent(ctx context.Context, documentID string) (string, error)

	// GetDetails returns the listing view of a single document.
	GetDetails(ctx context.Context, documentID string) (*domain.DocumentSummary, error)

	// List returns a lazy, restartable sequence of document summaries
	// sorted by source path.
	List(ctx context.Context) (iter.Seq[domain.DocumentSummary], error)

	// Replace ingests raw and then removes every older document from the
	// same source path. A failed ingest leaves the older documents in place.
	Replace(ctx context.Context, raw *domain.RawDocument, strategy domain.ChunkType) (*domain.Document, error)

	// Delete removes a document and its chunks.
	Delete(ctx context.Context, documentID string) error

	// DeleteBySourcePath removes every document ingested from path.
	// Returns the number of documents removed.
	DeleteBySourcePath(ctx context.Context, path string) (int, error)

	// Stats returns storage totals.
	Stats(ctx context.Context) (domain.StorageStats, error)

	// Clear removes all documents.
	Clear(ctx context.Context) error
}
