// Package plaintext extracts plain UTF-8 text documents.
package plaintext

import (
	"context"
	"fmt"
	"unicode/utf8"

	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles plain text documents.
type Normaliser struct{}

// New creates a new plain text normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Kind returns the content kind this normaliser handles.
func (n *Normaliser) Kind() domain.ContentKind {
	return domain.KindPlainText
}

// Normalise converts a raw document to a normalised document.
// Content is kept byte for byte. The title comes from the file name.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, fmt.Errorf("raw document is nil: %w", domain.ErrInvalidInput)
	}
	if !utf8.Valid(raw.Content) {
		return nil, fmt.Errorf("%s is not valid UTF-8: %w", raw.SourcePath, domain.ErrInvalidInput)
	}

	content := string(raw.Content)

	return &driven.NormaliseResult{
		Document: domain.Document{
			SourcePath: raw.SourcePath,
			Title:      domain.TitleFromPath(raw.SourcePath),
			Content:    content,
			Metadata: domain.DocumentMetadata{
				SizeBytes: raw.Size(),
				WordCount: domain.WordCount(content),
				Kind:      domain.KindPlainText,
			},
		},
	}, nil
}
