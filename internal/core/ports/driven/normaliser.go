package driven

import (
	"context"

	"github.com/custodia-labs/minirag/internal/core/domain"
)

// ContentExtractor turns a raw document into a document with Content and
// Title populated. Ids and timestamps are assigned by the caller.
type ContentExtractor interface {
	// Normalise returns domain.ErrInvalidInput if the bytes are not valid
	// UTF-8 and domain.ErrUnsupportedType for a kind it cannot handle.
	Normalise(ctx context.Context, raw *domain.RawDocument) (*NormaliseResult, error)
}

// Normaliser extracts text from raw bytes of a single content kind.
type Normaliser interface {
	ContentExtractor

	// Kind returns the content kind this normaliser handles.
	Kind() domain.ContentKind
}

// NormaliseResult contains the output of normalisation.
// Chunking is handled by the PostProcessor pipeline.
type NormaliseResult struct {
	// Document is the normalised document with Content field populated.
	Document domain.Document
}
