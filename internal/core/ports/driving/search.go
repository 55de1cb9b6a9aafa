package driving

import (
	"context"

	"github.com/custodia-labs/minirag/internal/core/domain"
)

// SearchService provides search capabilities to external actors.
type SearchService interface {
	// Search ranks stored chunks against the query.
	// An empty or term-less query yields no results and no error.
	Search(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}
