package normalisers

import (
	"context"
	"fmt"

	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
	"github.com/custodia-labs/minirag/internal/normalisers/markdown"
	"github.com/custodia-labs/minirag/internal/normalisers/plaintext"
)

// Ensure Dispatcher implements the interface.
var _ driven.ContentExtractor = (*Dispatcher)(nil)

// Dispatcher routes a raw document to the normaliser for its kind.
type Dispatcher struct {
	plainText driven.Normaliser
	markdown  driven.Normaliser
}

// NewDispatcher creates a dispatcher with the built-in normalisers.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{
		plainText: plaintext.New(),
		markdown:  markdown.New(),
	}
}

// Normalise extracts the document with the normaliser for raw.Kind.
func (d *Dispatcher) Normalise(ctx context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, fmt.Errorf("raw document is nil: %w", domain.ErrInvalidInput)
	}

	switch raw.Kind {
	case domain.KindPlainText:
		return d.plainText.Normalise(ctx, raw)
	case domain.KindMarkdown:
		return d.markdown.Normalise(ctx, raw)
	default:
		return nil, fmt.Errorf("content kind %d for %s: %w", raw.Kind, raw.SourcePath, domain.ErrUnsupportedType)
	}
}
