package mcp

import (
	"context"
	"iter"
	"slices"

	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driving"
)

// mockSearchService is a mock implementation of driving.SearchService.
type mockSearchService struct {
	results  []domain.SearchResult
	err      error
	lastOpts domain.SearchOptions
}

func (m *mockSearchService) Search(
	_ context.Context,
	_ string,
	opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	m.lastOpts = opts
	return m.results, m.err
}

// mockEvaluationService is a mock implementation of driving.EvaluationService.
type mockEvaluationService struct {
	report   *domain.EvaluationReport
	err      error
	lastCase domain.EvaluationCase
}

func (m *mockEvaluationService) Evaluate(_ string, _ []domain.SearchResult, _ []string) domain.EvaluationMetrics {
	if m.report == nil {
		return domain.EvaluationMetrics{}
	}
	return m.report.Metrics
}

func (m *mockEvaluationService) EvaluateQuery(
	_ context.Context,
	c domain.EvaluationCase,
) (*domain.EvaluationReport, error) {
	m.lastCase = c
	return m.report, m.err
}

func (m *mockEvaluationService) EvaluateSuite(
	_ context.Context,
	_ []domain.EvaluationCase,
) ([]domain.EvaluationReport, error) {
	if m.err != nil {
		return nil, m.err
	}
	return []domain.EvaluationReport{*m.report}, nil
}

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	document     *domain.Document
	summaries    []domain.DocumentSummary
	content      string
	stats        domain.StorageStats
	err          error
	storeErr     error
	lastStrategy domain.ChunkType
}

func (m *mockDocumentService) ProcessContent(
	_ context.Context,
	_, _ string,
	strategy domain.ChunkType,
) (*domain.Document, error) {
	m.lastStrategy = strategy
	return m.document, m.err
}

func (m *mockDocumentService) Process(
	_ context.Context,
	_ *domain.RawDocument,
	strategy domain.ChunkType,
) (*domain.Document, error) {
	m.lastStrategy = strategy
	return m.document, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ string) (*domain.Document, error) {
	return m.document, m.err
}

func (m *mockDocumentService) GetChunks(_ context.Context, _ string) ([]domain.Chunk, error) {
	return nil, m.err
}

func (m *mockDocumentService) GetContent(_ context.Context, _ string) (string, error) {
	return m.content, m.err
}

func (m *mockDocumentService) GetDetails(_ context.Context, id string) (*domain.DocumentSummary, error) {
	if m.err != nil {
		return nil, m.err
	}
	for i := range m.summaries {
		if m.summaries[i].ID == id {
			return &m.summaries[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *mockDocumentService) List(_ context.Context) (iter.Seq[domain.DocumentSummary], error) {
	if m.storeErr != nil {
		return nil, m.storeErr
	}
	return slices.Values(m.summaries), nil
}

func (m *mockDocumentService) Replace(
	_ context.Context,
	_ *domain.RawDocument,
	strategy domain.ChunkType,
) (*domain.Document, error) {
	m.lastStrategy = strategy
	return m.document, m.err
}

func (m *mockDocumentService) Delete(_ context.Context, _ string) error {
	return m.err
}

func (m *mockDocumentService) DeleteBySourcePath(_ context.Context, _ string) (int, error) {
	return 0, m.err
}

func (m *mockDocumentService) Stats(_ context.Context) (domain.StorageStats, error) {
	return m.stats, m.storeErr
}

func (m *mockDocumentService) Clear(_ context.Context) error {
	return m.storeErr
}

var (
	_ driving.SearchService     = (*mockSearchService)(nil)
	_ driving.EvaluationService = (*mockEvaluationService)(nil)
	_ driving.DocumentService   = (*mockDocumentService)(nil)
)
