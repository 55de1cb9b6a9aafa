package services

import (
	"context"
	"fmt"

	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
	"github.com/custodia-labs/minirag/internal/core/ports/driving"
	"github.com/custodia-labs/minirag/internal/logger"
)

// Ensure EvaluationService implements the interface.
var _ driving.EvaluationService = (*EvaluationService)(nil)

// EvaluationService scores retrieval quality against expected documents.
type EvaluationService struct {
	search       driving.SearchService
	docStore     driven.DocumentStore
	defaultLimit int
}

// NewEvaluationService creates a new evaluation service.
// defaultLimit is the search limit for cases that do not set one.
func NewEvaluationService(
	search driving.SearchService,
	docStore driven.DocumentStore,
	defaultLimit int,
) *EvaluationService {
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultEvaluationLimit
	}
	return &EvaluationService{
		search:       search,
		docStore:     docStore,
		defaultLimit: defaultLimit,
	}
}

// Evaluate computes metrics for results already retrieved.
func (s *EvaluationService) Evaluate(
	query string, results []domain.SearchResult, expected []string,
) domain.EvaluationMetrics {
	metrics := ComputeMetrics(results, expected)
	logger.Debug("Evaluated %q: precision=%.3f recall=%.3f f1=%.3f relevance=%.3f",
		query, metrics.Precision, metrics.Recall, metrics.F1, metrics.Relevance)
	return metrics
}

// EvaluateQuery searches for the case query and scores the results.
// Expected entries naming a stored source path are resolved to document ids.
func (s *EvaluationService) EvaluateQuery(
	ctx context.Context, c domain.EvaluationCase,
) (*domain.EvaluationReport, error) {
	if c.Limit < 0 {
		return nil, fmt.Errorf("limit %d: %w", c.Limit, domain.ErrInvalidConfiguration)
	}
	limit := c.Limit
	if limit == 0 {
		limit = s.defaultLimit
	}

	results, err := s.search.Search(ctx, c.Query, domain.SearchOptions{Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", c.Query, err)
	}

	expected, err := s.resolveExpected(ctx, c.Expected)
	if err != nil {
		return nil, fmt.Errorf("evaluate %q: %w", c.Query, err)
	}
	return &domain.EvaluationReport{
		Case:    c,
		Results: results,
		Metrics: s.Evaluate(c.Query, results, expected),
	}, nil
}

// EvaluateSuite runs every case in order and stops at the first failure.
func (s *EvaluationService) EvaluateSuite(
	ctx context.Context, cases []domain.EvaluationCase,
) ([]domain.EvaluationReport, error) {
	logger.Section("Evaluation Suite")
	defer logger.Timed("evaluate suite")()

	reports := make([]domain.EvaluationReport, 0, len(cases))
	for i := range cases {
		if err := ctx.Err(); err != nil {
			return reports, err
		}
		report, err := s.EvaluateQuery(ctx, cases[i])
		if err != nil {
			return reports, fmt.Errorf("case %d: %w", i+1, err)
		}
		reports = append(reports, *report)
	}

	mean := domain.MeanMetrics(reports)
	logger.Info("Evaluated %d cases: mean f1=%.3f", len(reports), mean.F1)
	return reports, nil
}

// resolveExpected maps source paths to the ids stored for them.
// Entries that match no source path are kept as ids.
func (s *EvaluationService) resolveExpected(ctx context.Context, expected []string) ([]string, error) {
	if s.docStore == nil {
		return expected, nil
	}
	resolved := make([]string, 0, len(expected))
	for _, e := range expected {
		ids, err := s.docStore.FindBySourcePath(ctx, e)
		if err != nil {
			return nil, fmt.Errorf("resolve expected %s: %w", e, err)
		}
		if len(ids) == 0 {
			resolved = append(resolved, e)
			continue
		}
		logger.Debug("Resolved %s to %v", e, ids)
		resolved = append(resolved, ids...)
	}
	return resolved, nil
}

// ComputeMetrics scores results against a set of expected document ids.
// Retrieved documents are the distinct document ids behind the results.
func ComputeMetrics(results []domain.SearchResult, expected []string) domain.EvaluationMetrics {
	expectedSet := make(map[string]struct{}, len(expected))
	for _, id := range expected {
		expectedSet[id] = struct{}{}
	}

	retrieved := make(map[string]struct{}, len(results))
	relevantRetrieved := 0
	var scoreSum float64
	scored := 0
	for i := range results {
		docID := results[i].Chunk.DocumentID
		_, relevant := expectedSet[docID]
		if relevant {
			scoreSum += results[i].Score
			scored++
		}
		if _, seen := retrieved[docID]; seen {
			continue
		}
		retrieved[docID] = struct{}{}
		if relevant {
			relevantRetrieved++
		}
	}

	var m domain.EvaluationMetrics
	switch {
	case len(retrieved) > 0:
		m.Precision = float64(relevantRetrieved) / float64(len(retrieved))
	case len(expectedSet) == 0:
		m.Precision = 1
	}
	if len(expectedSet) == 0 {
		m.Recall = 1
	} else {
		m.Recall = float64(relevantRetrieved) / float64(len(expectedSet))
	}
	if m.Precision+m.Recall > 0 {
		m.F1 = 2 * m.Precision * m.Recall / (m.Precision + m.Recall)
	}
	if scored > 0 {
		m.Relevance = scoreSum / float64(scored)
	}
	return m
}
