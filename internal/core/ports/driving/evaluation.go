package driving

import (
	"context"

	"github.com/custodia-labs/minirag/internal/core/domain"
)

// EvaluationService scores search results against expected documents.
type EvaluationService interface {
	// Evaluate computes metrics for results already retrieved.
	Evaluate(query string, results []domain.SearchResult, expected []string) domain.EvaluationMetrics

	// EvaluateQuery runs the search and scores it.
	EvaluateQuery(ctx context.Context, c domain.EvaluationCase) (*domain.EvaluationReport, error)

	// EvaluateSuite runs every case in order.
	EvaluateSuite(ctx context.Context, cases []domain.EvaluationCase) ([]domain.EvaluationReport, error)
}
