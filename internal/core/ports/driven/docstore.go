package driven

import (
	"context"
	"iter"

	"github.com/custodia-labs/minirag/internal/core/domain"
)

// DocumentStore holds documents and their chunks.
// Implementations must be safe for concurrent use. A document and its
// chunks are inserted and removed as one step.
type DocumentStore interface {
	// PutDocument stores a document together with its chunks.
	// Returns domain.ErrDuplicateID if the document id or any chunk id is
	// already present or repeated within the batch, in which case nothing
	// is stored.
	PutDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error

	// GetDocument retrieves a document by ID.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// GetChunk retrieves a specific chunk by ID.
	GetChunk(ctx context.Context, id string) (*domain.Chunk, error)

	// GetChunks retrieves all chunks for a document, ordered by position.
	GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error)

	// FindBySourcePath returns the ids of documents ingested from path,
	// oldest first. No match is an empty result, not an error.
	FindBySourcePath(ctx context.Context, path string) ([]string, error)

	// ListDocuments returns a lazy sequence of summaries in insertion order.
	// The sequence can be ranged over more than once. Read failures are
	// reported by the call, never mid-iteration.
	ListDocuments(ctx context.Context) (iter.Seq[domain.DocumentSummary], error)

	// AllChunks returns every chunk, grouped by document in insertion
	// order and ordered by position within a document.
	AllChunks(ctx context.Context) ([]domain.Chunk, error)

	// DeleteDocument removes a document and all of its chunks.
	DeleteDocument(ctx context.Context, id string) error

	// Stats returns the live document, chunk and byte totals.
	Stats(ctx context.Context) (domain.StorageStats, error)

	// Clear removes everything.
	Clear(ctx context.Context) error
}
