package driven

import (
	"context"

	"github.com/custodia-labs/minirag/internal/core/domain"
)

// PostProcessor processes document content to produce chunks.
// PostProcessors are chained in a pipeline.
type PostProcessor interface {
	// Name returns the processor name for logging and configuration.
	Name() string

	// Process takes a document and returns chunks.
	// A chunker receives nil and returns new chunks. A processor that
	// refines chunks receives and returns them.
	Process(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error)
}

// PostProcessorPipeline chains multiple PostProcessors.
type PostProcessorPipeline interface {
	// Process runs the document through all processors in order.
	// Returns the final chunks after all processing.
	Process(ctx context.Context, doc *domain.Document) ([]domain.Chunk, error)
}

// ChunkerFactory builds the chunking pipeline for a configuration.
type ChunkerFactory interface {
	// Pipeline returns domain.ErrInvalidConfiguration for out-of-range
	// parameters and domain.ErrUnsupportedType for an unknown strategy.
	Pipeline(cfg domain.ChunkingConfig) (PostProcessorPipeline, error)
}
