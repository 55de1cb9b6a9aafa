package driven

import (
	"context"

	"github.com/custodia-labs/minirag/internal/core/domain"
)

// Connector loads raw documents from outside the core.
type Connector interface {
	// Type returns the connector type identifier.
	Type() string

	// Validate checks that the configured location is readable.
	Validate(ctx context.Context) error

	// FullSync streams every document the connector can see.
	// Both channels are closed when the scan finishes.
	FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error)

	// Watch emits changes until ctx is cancelled.
	Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error)

	// Close releases resources.
	Close() error
}
