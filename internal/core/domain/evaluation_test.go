package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeanMetrics(t *testing.T) {
	t.Run("empty reports", func(t *testing.T) {
		assert.Equal(t, EvaluationMetrics{}, MeanMetrics(nil))
	})

	t.Run("averages each metric", func(t *testing.T) {
		reports := []EvaluationReport{
			{Metrics: EvaluationMetrics{Relevance: 1, Precision: 1, Recall: 1, F1: 1}},
			{Metrics: EvaluationMetrics{Relevance: 0, Precision: 0.5, Recall: 0, F1: 0}},
		}

		mean := MeanMetrics(reports)

		assert.InDelta(t, 0.5, mean.Relevance, 1e-9)
		assert.InDelta(t, 0.75, mean.Precision, 1e-9)
		assert.InDelta(t, 0.5, mean.Recall, 1e-9)
		assert.InDelta(t, 0.5, mean.F1, 1e-9)
	})
}
