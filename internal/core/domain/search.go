package domain

// DefaultSearchLimit is used when a caller does not specify a limit.
const DefaultSearchLimit = 10

// SearchOptions configures a search query.
type SearchOptions struct {
	// Limit is the maximum number of results. Zero or less uses the default.
	Limit int
}

// SearchResult represents a single ranked hit.
type SearchResult struct {
	// Chunk is the matched chunk.
	Chunk Chunk

	// Score is the fraction of distinct query terms present, in [0,1].
	Score float64

	// Rank is the 1-based position in the returned ordering.
	Rank int

	// SourcePath is the parent document's source path, for display.
	SourcePath string

	// DocumentTitle is the parent document's title, for display.
	DocumentTitle string

	// Highlights contains sentences with matched terms.
	Highlights []string
}
