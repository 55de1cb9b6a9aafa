// Package domain defines the core business entities for minirag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An ingested text document with derived metadata
//   - Chunk: A retrievable unit within a document
//   - SearchResult: A scored, ranked chunk returned for a query
//   - EvaluationMetrics: Retrieval quality against an expected set
//   - StorageStats: Aggregate counts over the in-memory collections
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
