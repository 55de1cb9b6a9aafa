package driven

import "github.com/custodia-labs/minirag/internal/core/domain"

// SuiteStore loads evaluation suites.
type SuiteStore interface {
	// Load reads the cases of a suite. name is either a path to a file or
	// the name of a suite in the store's directory.
	Load(name string) ([]domain.EvaluationCase, error)

	// List returns the names of suites in the store's directory.
	List() ([]string, error)
}
