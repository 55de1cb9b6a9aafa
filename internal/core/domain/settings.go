package domain

import "fmt"

// Default chunking parameters.
const (
	// DefaultChunkSize is the default maximum characters per fixed-size chunk.
	DefaultChunkSize = 1000

	// DefaultChunkOverlap is the default number of characters shared between
	// consecutive fixed-size chunks.
	DefaultChunkOverlap = 0

	// DefaultBoundaryLookBack is how far back, in characters, a fixed-size split
	// may move to land on whitespace before cutting at the exact length.
	DefaultBoundaryLookBack = 100
)

// ChunkingConfig configures the chunking engine.
type ChunkingConfig struct {
	// Strategy selects the chunker.
	Strategy ChunkType

	// ChunkSize is the maximum characters per fixed-size chunk.
	ChunkSize int

	// Overlap is the characters shared between consecutive fixed-size chunks.
	Overlap int

	// LookBack is the whitespace snap tolerance for fixed-size splits.
	LookBack int
}

// DefaultChunkingConfig returns the default chunking configuration.
func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{
		Strategy:  ChunkFixedSize,
		ChunkSize: DefaultChunkSize,
		Overlap:   DefaultChunkOverlap,
		LookBack:  DefaultBoundaryLookBack,
	}
}

// Validate checks the configuration and names the offending parameter.
func (c ChunkingConfig) Validate() error {
	if !c.Strategy.IsValid() {
		return fmt.Errorf("chunk strategy %q: %w", c.Strategy, ErrInvalidConfiguration)
	}
	if c.Strategy != ChunkFixedSize {
		return nil
	}
	if c.ChunkSize <= 0 {
		return fmt.Errorf("chunk_size must be positive, got %d: %w", c.ChunkSize, ErrInvalidConfiguration)
	}
	if c.Overlap < 0 {
		return fmt.Errorf("overlap must not be negative, got %d: %w", c.Overlap, ErrInvalidConfiguration)
	}
	if c.Overlap >= c.ChunkSize {
		return fmt.Errorf("overlap %d must be smaller than chunk_size %d: %w",
			c.Overlap, c.ChunkSize, ErrInvalidConfiguration)
	}
	if c.LookBack < 0 {
		return fmt.Errorf("lookback must not be negative, got %d: %w", c.LookBack, ErrInvalidConfiguration)
	}
	return nil
}

// ProcessorConfig returns the generic processor config map for the registry.
func (c ChunkingConfig) ProcessorConfig() map[string]any {
	return map[string]any{
		"chunk_size": c.ChunkSize,
		"overlap":    c.Overlap,
		"lookback":   c.LookBack,
	}
}

// SearchSettings holds search behaviour configuration.
type SearchSettings struct {
	// Limit is the default number of results.
	Limit int
}

// EvaluationSettings holds evaluation behaviour configuration.
type EvaluationSettings struct {
	// Limit is the number of results evaluated per query.
	Limit int
}

// AppSettings aggregates all application settings.
type AppSettings struct {
	// Chunking holds chunking engine settings.
	Chunking ChunkingConfig

	// Search holds search behaviour settings.
	Search SearchSettings

	// Evaluation holds evaluation settings.
	Evaluation EvaluationSettings
}

// DefaultAppSettings returns settings that work out of the box.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		Chunking:   DefaultChunkingConfig(),
		Search:     SearchSettings{Limit: DefaultSearchLimit},
		Evaluation: EvaluationSettings{Limit: DefaultEvaluationLimit},
	}
}
