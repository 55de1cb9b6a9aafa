package mcp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/minirag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/services"
	"github.com/custodia-labs/minirag/internal/normalisers"
	"github.com/custodia-labs/minirag/internal/postprocessors"
)

func newMockServer(t *testing.T, ports *Ports) *Server {
	t.Helper()
	if ports.Search == nil {
		ports.Search = &mockSearchService{}
	}
	if ports.Document == nil {
		ports.Document = &mockDocumentService{}
	}
	server, err := NewServer(ports)
	require.NoError(t, err)
	return server
}

func TestServer_handleSearch(t *testing.T) {
	ctx := context.Background()

	t.Run("returns search results", func(t *testing.T) {
		mockSearch := &mockSearchService{
			results: []domain.SearchResult{
				{
					Chunk: domain.Chunk{
						ID:         "chunk-1",
						DocumentID: "doc-1",
						Content:    "This is the content",
						Position:   2,
					},
					Score:         0.5,
					Rank:          1,
					SourcePath:    "/path/to/doc.txt",
					DocumentTitle: "doc",
					Highlights:    []string{"This is the content"},
				},
			},
		}
		server := newMockServer(t, &Ports{Search: mockSearch})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "content", Limit: 3})

		require.NoError(t, err)
		assert.Equal(t, 1, output.Count)
		require.Len(t, output.Results, 1)
		got := output.Results[0]
		assert.Equal(t, 1, got.Rank)
		assert.Equal(t, 0.5, got.Score)
		assert.Equal(t, "doc-1", got.DocumentID)
		assert.Equal(t, "chunk-1", got.ChunkID)
		assert.Equal(t, 2, got.Position)
		assert.Equal(t, "/path/to/doc.txt", got.SourcePath)
		assert.Equal(t, "doc", got.Title)
		assert.Equal(t, "This is the content", got.Content)
		assert.Equal(t, []string{"This is the content"}, got.Highlights)
		assert.Equal(t, 3, mockSearch.lastOpts.Limit)
	})

	t.Run("zero limit is passed through for the service default", func(t *testing.T) {
		mockSearch := &mockSearchService{}
		server := newMockServer(t, &Ports{Search: mockSearch})

		_, output, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		require.NoError(t, err)
		assert.Equal(t, 0, mockSearch.lastOpts.Limit)
		assert.Equal(t, 0, output.Count)
		assert.NotNil(t, output.Results)
	})

	t.Run("returns error on search failure", func(t *testing.T) {
		server := newMockServer(t, &Ports{Search: &mockSearchService{err: errors.New("boom")}})

		_, _, err := server.handleSearch(ctx, nil, SearchInput{Query: "test"})

		assert.EqualError(t, err, "boom")
	})
}

func TestServer_handleEvaluate(t *testing.T) {
	ctx := context.Background()

	t.Run("returns metrics", func(t *testing.T) {
		eval := &mockEvaluationService{
			report: &domain.EvaluationReport{
				Metrics: domain.EvaluationMetrics{Relevance: 1, Precision: 0.5, Recall: 1, F1: 2.0 / 3.0},
				Results: []domain.SearchResult{{Chunk: domain.Chunk{DocumentID: "a"}, Score: 1, Rank: 1}},
			},
		}
		server := newMockServer(t, &Ports{Evaluation: eval})

		_, output, err := server.handleEvaluate(ctx, nil, EvaluateInput{
			Query:    "machine learning",
			Expected: []string{"a"},
			Limit:    2,
		})

		require.NoError(t, err)
		assert.Equal(t, 1.0, output.Relevance)
		assert.Equal(t, 0.5, output.Precision)
		assert.Equal(t, 1.0, output.Recall)
		assert.InDelta(t, 0.667, output.F1, 0.001)
		require.Len(t, output.Results, 1)
		assert.Equal(t, "a", output.Results[0].DocumentID)
		assert.Equal(t, "machine learning", eval.lastCase.Query)
		assert.Equal(t, []string{"a"}, eval.lastCase.Expected)
		assert.Equal(t, 2, eval.lastCase.Limit)
	})

	t.Run("missing evaluation service", func(t *testing.T) {
		server := newMockServer(t, &Ports{})

		_, _, err := server.handleEvaluate(ctx, nil, EvaluateInput{Query: "x"})

		assert.ErrorIs(t, err, ErrMissingEvaluationService)
	})

	t.Run("propagates evaluation errors", func(t *testing.T) {
		eval := &mockEvaluationService{err: domain.ErrInvalidConfiguration}
		server := newMockServer(t, &Ports{Evaluation: eval})

		_, _, err := server.handleEvaluate(ctx, nil, EvaluateInput{Query: "x", Limit: -1})

		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	})
}

func TestServer_handleProcess(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the stored summary", func(t *testing.T) {
		docs := &mockDocumentService{
			document: &domain.Document{ID: "doc-1"},
			summaries: []domain.DocumentSummary{
				{ID: "doc-1", SourcePath: "notes.md", Title: "Notes", Kind: domain.KindMarkdown, ChunkCount: 2},
			},
		}
		server := newMockServer(t, &Ports{Document: docs})

		_, output, err := server.handleProcess(ctx, nil, ProcessInput{
			Content:    "# Notes",
			SourcePath: "notes.md",
			Strategy:   "paragraph",
		})

		require.NoError(t, err)
		assert.Equal(t, "doc-1", output.ID)
		assert.Equal(t, "Notes", output.Title)
		assert.Equal(t, domain.KindMarkdown.String(), output.Kind)
		assert.Equal(t, 2, output.ChunkCount)
		assert.Equal(t, domain.ChunkParagraph, docs.lastStrategy)
	})

	t.Run("empty strategy uses the default", func(t *testing.T) {
		docs := &mockDocumentService{
			document:  &domain.Document{ID: "doc-1"},
			summaries: []domain.DocumentSummary{{ID: "doc-1"}},
		}
		server := newMockServer(t, &Ports{Document: docs})

		_, _, err := server.handleProcess(ctx, nil, ProcessInput{Content: "text"})

		require.NoError(t, err)
		assert.Equal(t, domain.ChunkType(""), docs.lastStrategy)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		server := newMockServer(t, &Ports{})

		_, _, err := server.handleProcess(ctx, nil, ProcessInput{Content: "text", Strategy: "sentences"})

		assert.ErrorIs(t, err, domain.ErrInvalidConfiguration)
	})

	t.Run("processing failure", func(t *testing.T) {
		docs := &mockDocumentService{err: domain.ErrInvalidInput}
		server := newMockServer(t, &Ports{Document: docs})

		_, _, err := server.handleProcess(ctx, nil, ProcessInput{Content: "text"})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestServer_handleListDocuments(t *testing.T) {
	docs := &mockDocumentService{
		summaries: []domain.DocumentSummary{
			{ID: "a", SourcePath: "a.txt", WordCount: 3, ChunkCount: 1},
			{ID: "b", SourcePath: "b.txt", WordCount: 5, ChunkCount: 2},
		},
	}
	server := newMockServer(t, &Ports{Document: docs})

	_, output, err := server.handleListDocuments(context.Background(), nil, ListDocumentsInput{})

	require.NoError(t, err)
	assert.Equal(t, 2, output.Count)
	assert.Equal(t, "a", output.Documents[0].ID)
	assert.Equal(t, 5, output.Documents[1].WordCount)
}

func TestServer_handleListDocuments_Empty(t *testing.T) {
	server := newMockServer(t, &Ports{})

	_, output, err := server.handleListDocuments(context.Background(), nil, ListDocumentsInput{})

	require.NoError(t, err)
	assert.Equal(t, 0, output.Count)
	assert.NotNil(t, output.Documents)
}

func TestServer_handleStats(t *testing.T) {
	docs := &mockDocumentService{
		stats: domain.StorageStats{TotalDocuments: 2, TotalChunks: 5, TotalSizeBytes: 1234},
	}
	server := newMockServer(t, &Ports{Document: docs})

	_, output, err := server.handleStats(context.Background(), nil, StatsInput{})

	require.NoError(t, err)
	assert.Equal(t, StatsOutput{TotalDocuments: 2, TotalChunks: 5, TotalSizeBytes: 1234}, output)
}

func TestServer_StoreFailuresAreReturned(t *testing.T) {
	storeErr := errors.New("database is locked")
	docs := &mockDocumentService{storeErr: storeErr}
	server := newMockServer(t, &Ports{Document: docs})
	ctx := context.Background()

	_, _, err := server.handleListDocuments(ctx, nil, ListDocumentsInput{})
	require.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), "listing documents")

	_, _, err = server.handleStats(ctx, nil, StatsInput{})
	require.ErrorIs(t, err, storeErr)
	assert.Contains(t, err.Error(), "reading stats")
}

func TestServer_Tools_WithServices(t *testing.T) {
	ctx := context.Background()
	store := memory.NewDocumentStore()
	docs := services.NewDocumentService(
		store,
		normalisers.NewDispatcher(),
		postprocessors.DefaultRegistry(),
		domain.DefaultChunkingConfig(),
	)
	search := services.NewSearchService(store, 0)
	server, err := NewServer(&Ports{
		Search:     search,
		Document:   docs,
		Evaluation: services.NewEvaluationService(search, store, 0),
	})
	require.NoError(t, err)

	_, processed, err := server.handleProcess(ctx, nil, ProcessInput{
		Content:    "Machine learning is a subset of artificial intelligence.",
		SourcePath: "ml.txt",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, processed.ChunkCount)

	_, found, err := server.handleSearch(ctx, nil, SearchInput{Query: "machine learning"})
	require.NoError(t, err)
	require.Equal(t, 1, found.Count)
	assert.Equal(t, 1.0, found.Results[0].Score)
	assert.Equal(t, processed.ID, found.Results[0].DocumentID)

	_, metrics, err := server.handleEvaluate(ctx, nil, EvaluateInput{
		Query:    "machine learning",
		Expected: []string{"ml.txt"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1.0, metrics.Precision)
	assert.Equal(t, 1.0, metrics.Recall)
	assert.Equal(t, 1.0, metrics.F1)

	_, stats, err := server.handleStats(ctx, nil, StatsInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalDocuments)
	assert.Equal(t, 1, stats.TotalChunks)
}
