package domain

import (
	"path/filepath"
	"strings"
	"time"
)

// ContentKind identifies the source format of a document.
// Each kind has exactly one extraction function in the normalisers package.
type ContentKind int

const (
	// KindPlainText is UTF-8 text with no markup.
	KindPlainText ContentKind = iota

	// KindMarkdown is UTF-8 text with Markdown markup.
	KindMarkdown
)

// String returns the string representation.
func (k ContentKind) String() string {
	switch k {
	case KindPlainText:
		return "text"
	case KindMarkdown:
		return "markdown"
	default:
		return unknownDescription
	}
}

// IsValid returns true if the content kind is recognised.
func (k ContentKind) IsValid() bool {
	return k == KindPlainText || k == KindMarkdown
}

// KindForPath selects a content kind from a file extension.
// Anything that is not Markdown is treated as plain text.
func KindForPath(path string) ContentKind {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".md", ".markdown":
		return KindMarkdown
	default:
		return KindPlainText
	}
}

// DocumentMetadata holds facts derived from a document at ingestion time.
type DocumentMetadata struct {
	// SizeBytes is the byte size of the source.
	SizeBytes int

	// WordCount is the number of whitespace-delimited tokens in Content.
	WordCount int

	// Kind is the content kind the document was extracted as.
	Kind ContentKind

	// CreatedAt is when the document was ingested.
	CreatedAt time.Time
}

// Document represents an ingested document.
// It is immutable once stored.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// SourcePath is the original location. Opaque to the core.
	SourcePath string

	// Title is the human-readable title.
	Title string

	// Content is the full decoded text.
	Content string

	// Metadata contains derived facts.
	Metadata DocumentMetadata
}

// Summary returns the listing view of the document.
func (d *Document) Summary(chunkCount int) DocumentSummary {
	return DocumentSummary{
		ID:         d.ID,
		SourcePath: d.SourcePath,
		Title:      d.Title,
		Kind:       d.Metadata.Kind,
		SizeBytes:  d.Metadata.SizeBytes,
		WordCount:  d.Metadata.WordCount,
		ChunkCount: chunkCount,
		CreatedAt:  d.Metadata.CreatedAt,
	}
}

// DocumentSummary is a lightweight view of a stored document for listings.
type DocumentSummary struct {
	ID         string
	SourcePath string
	Title      string
	Kind       ContentKind
	SizeBytes  int
	WordCount  int
	ChunkCount int
	CreatedAt  time.Time
}

// TitleFromPath derives a readable title from a file name.
// "notes/machine_learning-intro.txt" becomes "machine learning intro".
func TitleFromPath(path string) string {
	if path == "" {
		return ""
	}
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return strings.TrimSpace(name)
}

// WordCount counts whitespace-delimited tokens.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

const unknownDescription = "unknown"
