package search

import "errors"

// Error definitions for the search view.
var (
	// ErrNoSearchService indicates that no search service was provided.
	ErrNoSearchService = errors.New("search service is required")

	// ErrNothingToCopy indicates copy was requested with no selected result.
	ErrNothingToCopy = errors.New("no result selected")

	// ErrNoClipboard indicates that no clipboard writer was provided.
	ErrNoClipboard = errors.New("clipboard not available")
)
