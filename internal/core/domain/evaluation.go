package domain

// DefaultEvaluationLimit is the result limit used when evaluating a query.
const DefaultEvaluationLimit = 5

// EvaluationMetrics holds retrieval quality scores, each in [0,1].
type EvaluationMetrics struct {
	Relevance float64
	Precision float64
	Recall    float64
	F1        float64
}

// EvaluationCase is one query with its expected document ids.
type EvaluationCase struct {
	// Query is the search text.
	Query string `yaml:"query" json:"query"`

	// Expected lists document ids (or source paths) considered relevant.
	Expected []string `yaml:"expected" json:"expected"`

	// Limit overrides the evaluation limit for this case.
	Limit int `yaml:"limit,omitempty" json:"limit,omitempty"`
}

// EvaluationReport is the outcome of evaluating one case.
type EvaluationReport struct {
	Case    EvaluationCase
	Results []SearchResult
	Metrics EvaluationMetrics
}

// MeanMetrics macro-averages metrics across reports.
// Returns the zero value for no reports.
func MeanMetrics(reports []EvaluationReport) EvaluationMetrics {
	if len(reports) == 0 {
		return EvaluationMetrics{}
	}
	var sum EvaluationMetrics
	for i := range reports {
		sum.Relevance += reports[i].Metrics.Relevance
		sum.Precision += reports[i].Metrics.Precision
		sum.Recall += reports[i].Metrics.Recall
		sum.F1 += reports[i].Metrics.F1
	}
	n := float64(len(reports))
	return EvaluationMetrics{
		Relevance: sum.Relevance / n,
		Precision: sum.Precision / n,
		Recall:    sum.Recall / n,
		F1:        sum.F1 / n,
	}
}
