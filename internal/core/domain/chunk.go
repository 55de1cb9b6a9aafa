package domain

import (
	"fmt"
	"strings"
)

// ChunkType records which chunking strategy produced a chunk.
type ChunkType string

// Available chunking strategies.
const (
	// ChunkFixedSize splits text into segments of bounded byte length.
	ChunkFixedSize ChunkType = "fixed_size"

	// ChunkParagraph splits text on blank-line boundaries.
	ChunkParagraph ChunkType = "paragraph"
)

// IsValid returns true if the chunk type is recognised.
func (t ChunkType) IsValid() bool {
	return t == ChunkFixedSize || t == ChunkParagraph
}

// String returns the string representation.
func (t ChunkType) String() string {
	return string(t)
}

// Description returns a human-readable description of the strategy.
func (t ChunkType) Description() string {
	switch t {
	case ChunkFixedSize:
		return "Fixed size (byte windows, snapped to whitespace)"
	case ChunkParagraph:
		return "Paragraph (blank-line separated blocks)"
	default:
		return unknownDescription
	}
}

// ParseChunkType parses a strategy name. Accepts "fixed" as an alias.
func ParseChunkType(s string) (ChunkType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fixed", "fixed_size", "fixedsize", "fixed-size":
		return ChunkFixedSize, nil
	case "paragraph", "paragraphs":
		return ChunkParagraph, nil
	default:
		return "", fmt.Errorf("chunk strategy %q: %w", s, ErrInvalidConfiguration)
	}
}

// Chunk represents a retrievable unit within a document.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document. Lookup only.
	DocumentID string

	// Content is a trimmed substring of the parent document's content.
	Content string

	// Type is the strategy that produced this chunk.
	Type ChunkType

	// Position is the zero-based sequence index within the document.
	Position int

	// Start and End are byte offsets of Content within the parent content.
	Start int
	End   int

	// WordCount is the number of whitespace-delimited tokens in Content.
	WordCount int
}
