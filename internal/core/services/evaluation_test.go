package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/minirag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/minirag/internal/core/domain"
)

func result(docID string, score float64) domain.SearchResult {
	return domain.SearchResult{
		Chunk: domain.Chunk{ID: docID + "-c", DocumentID: docID},
		Score: score,
	}
}

func TestComputeMetrics(t *testing.T) {
	tests := []struct {
		name     string
		results  []domain.SearchResult
		expected []string
		want     domain.EvaluationMetrics
	}{
		{
			name:     "perfect single hit",
			results:  []domain.SearchResult{result("doc-1", 1.0)},
			expected: []string{"doc-1"},
			want:     domain.EvaluationMetrics{Relevance: 1, Precision: 1, Recall: 1, F1: 1},
		},
		{
			name:     "nothing retrieved nothing expected",
			results:  nil,
			expected: nil,
			want:     domain.EvaluationMetrics{Relevance: 0, Precision: 1, Recall: 1, F1: 1},
		},
		{
			name:     "nothing retrieved something expected",
			results:  nil,
			expected: []string{"doc-1"},
			want:     domain.EvaluationMetrics{},
		},
		{
			name:     "retrieved but nothing expected",
			results:  []domain.SearchResult{result("doc-1", 0.5)},
			expected: nil,
			want:     domain.EvaluationMetrics{Precision: 0, Recall: 1, F1: 0},
		},
		{
			name:     "no overlap",
			results:  []domain.SearchResult{result("doc-2", 1.0)},
			expected: []string{"doc-1"},
			want:     domain.EvaluationMetrics{},
		},
		{
			name: "half precision full recall",
			results: []domain.SearchResult{
				result("doc-1", 1.0),
				result("doc-2", 0.5),
			},
			expected: []string{"doc-1"},
			want:     domain.EvaluationMetrics{Relevance: 1, Precision: 0.5, Recall: 1, F1: 2.0 / 3.0},
		},
		{
			name: "duplicate documents count once",
			results: []domain.SearchResult{
				result("doc-1", 1.0),
				result("doc-1", 0.5),
			},
			expected: []string{"doc-1", "doc-2"},
			want:     domain.EvaluationMetrics{Relevance: 0.75, Precision: 1, Recall: 0.5, F1: 2.0 / 3.0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeMetrics(tt.results, tt.expected)
			assert.InDelta(t, tt.want.Relevance, got.Relevance, 1e-9, "relevance")
			assert.InDelta(t, tt.want.Precision, got.Precision, 1e-9, "precision")
			assert.InDelta(t, tt.want.Recall, got.Recall, 1e-9, "recall")
			assert.InDelta(t, tt.want.F1, got.F1, 1e-9, "f1")
		})
	}
}

func TestComputeMetrics_Bounds(t *testing.T) {
	results := []domain.SearchResult{
		result("a", 1.0), result("b", 0.25), result("a", 0.75), result("c", 0.5),
	}
	for _, expected := range [][]string{nil, {"a"}, {"a", "b", "c", "d"}, {"z"}} {
		m := ComputeMetrics(results, expected)
		for _, v := range []float64{m.Relevance, m.Precision, m.Recall, m.F1} {
			assert.GreaterOrEqual(t, v, 0.0)
			assert.LessOrEqual(t, v, 1.0)
		}
	}
}

func newTestEvaluationService(t *testing.T) (*EvaluationService, *memory.DocumentStore) {
	t.Helper()
	store := memory.NewDocumentStore()
	putDoc(t, store, "doc-ml", "notes/ml.txt", "Machine learning basics", "Neural networks learn")
	putDoc(t, store, "doc-db", "notes/db.txt", "Databases store data", "Indexes speed up queries")
	return NewEvaluationService(NewSearchService(store, 10), store, 0), store
}

func TestEvaluationService_Evaluate(t *testing.T) {
	svc, _ := newTestEvaluationService(t)

	m := svc.Evaluate("q", []domain.SearchResult{result("doc-1", 1.0)}, []string{"doc-1"})
	assert.Equal(t, domain.EvaluationMetrics{Relevance: 1, Precision: 1, Recall: 1, F1: 1}, m)
}

func TestEvaluationService_EvaluateQuery(t *testing.T) {
	svc, _ := newTestEvaluationService(t)

	report, err := svc.EvaluateQuery(context.Background(), domain.EvaluationCase{
		Query:    "machine learning",
		Expected: []string{"doc-ml"},
	})
	require.NoError(t, err)
	require.NotEmpty(t, report.Results)
	assert.Equal(t, "doc-ml", report.Results[0].Chunk.DocumentID)
	assert.InDelta(t, 1.0, report.Metrics.Precision, 1e-9)
	assert.InDelta(t, 1.0, report.Metrics.Recall, 1e-9)
}

func TestEvaluationService_EvaluateQuery_ResolvesSourcePaths(t *testing.T) {
	svc, _ := newTestEvaluationService(t)

	report, err := svc.EvaluateQuery(context.Background(), domain.EvaluationCase{
		Query:    "databases",
		Expected: []string{"notes/db.txt"},
	})
	require.NoError(t, err)
	assert.InDelta(t, 1.0, report.Metrics.F1, 1e-9)
	assert.Equal(t, []string{"notes/db.txt"}, report.Case.Expected)
}

func TestEvaluationService_EvaluateQuery_Limit(t *testing.T) {
	svc, _ := newTestEvaluationService(t)

	report, err := svc.EvaluateQuery(context.Background(), domain.EvaluationCase{
		Query: "learning networks databases indexes",
		Limit: 1,
	})
	require.NoError(t, err)
	assert.Len(t, report.Results, 1)

	_, err = svc.EvaluateQuery(context.Background(), domain.EvaluationCase{Query: "x", Limit: -1})
	assert.True(t, errors.Is(err, domain.ErrInvalidConfiguration))
}

func TestEvaluationService_EvaluateSuite(t *testing.T) {
	svc, _ := newTestEvaluationService(t)

	reports, err := svc.EvaluateSuite(context.Background(), []domain.EvaluationCase{
		{Query: "machine learning", Expected: []string{"doc-ml"}},
		{Query: "databases", Expected: []string{"doc-ml"}},
	})
	require.NoError(t, err)
	require.Len(t, reports, 2)
	assert.InDelta(t, 1.0, reports[0].Metrics.F1, 1e-9)
	assert.Zero(t, reports[1].Metrics.F1)

	mean := domain.MeanMetrics(reports)
	assert.InDelta(t, 0.5, mean.F1, 1e-9)
}

func TestEvaluationService_EvaluateSuite_Cancelled(t *testing.T) {
	svc, _ := newTestEvaluationService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reports, err := svc.EvaluateSuite(ctx, []domain.EvaluationCase{{Query: "machine"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, reports)
}

func TestEvaluationService_EvaluateQuery_ResolveFailure(t *testing.T) {
	storeErr := errors.New("database is closed")
	store := newFaultyStore(storeErr, "FindBySourcePath")
	putDoc(t, store.DocumentStore, "doc-ml", "notes/ml.txt", "Machine learning basics")
	svc := NewEvaluationService(NewSearchService(store, 10), store, 0)

	report, err := svc.EvaluateQuery(context.Background(), domain.EvaluationCase{
		Query:    "machine learning",
		Expected: []string{"notes/ml.txt"},
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, report)
}
