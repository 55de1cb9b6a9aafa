package tui

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/minirag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/services"
	"github.com/custodia-labs/minirag/internal/normalisers"
	"github.com/custodia-labs/minirag/internal/postprocessors"
)

// MockSearchService implements driving.SearchService for testing.
type MockSearchService struct {
	SearchFunc func(ctx context.Context, query string, opts domain.SearchOptions) ([]domain.SearchResult, error)
}

func (m *MockSearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, opts)
	}
	return nil, nil
}

// testServices returns real in-memory services holding the given documents.
func testServices(t *testing.T, docs map[string]string) (*services.SearchService, *services.DocumentService) {
	t.Helper()
	store := memory.NewDocumentStore()
	documents := services.NewDocumentService(
		store,
		normalisers.NewDispatcher(),
		postprocessors.DefaultRegistry(),
		domain.DefaultChunkingConfig(),
	)
	for path, content := range docs {
		_, err := documents.ProcessContent(context.Background(), content, path, "")
		require.NoError(t, err)
	}
	return services.NewSearchService(store, 0), documents
}

func TestNewPorts(t *testing.T) {
	search, documents := testServices(t, nil)

	ports := NewPorts(search, documents)

	assert.Same(t, search, ports.Search)
	assert.Same(t, documents, ports.Document)
	assert.Nil(t, ports.Sync)
	assert.Nil(t, ports.Clipboard)
}

func TestPorts_Validate(t *testing.T) {
	search, documents := testServices(t, nil)

	tests := []struct {
		name    string
		ports   *Ports
		wantErr error
	}{
		{"valid", &Ports{Search: search, Document: documents}, nil},
		{"missing search", &Ports{Document: documents}, ErrMissingSearchService},
		{"missing document", &Ports{Search: search}, ErrMissingDocumentService},
		{"empty", &Ports{}, ErrMissingSearchService},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ports.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
