// Package markdown extracts Markdown documents.
package markdown

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles Markdown documents.
// Content is kept verbatim so chunk offsets refer to the file as written;
// the Markdown structure is only read to find a title.
type Normaliser struct{}

// New creates a new Markdown normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// Kind returns the content kind this normaliser handles.
func (n *Normaliser) Kind() domain.ContentKind {
	return domain.KindMarkdown
}

// Normalise converts a markdown document to a normalised document.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, fmt.Errorf("raw document is nil: %w", domain.ErrInvalidInput)
	}
	if !utf8.Valid(raw.Content) {
		return nil, fmt.Errorf("%s is not valid UTF-8: %w", raw.SourcePath, domain.ErrInvalidInput)
	}

	content := string(raw.Content)

	title := Title(raw.Content)
	if title == "" {
		title = domain.TitleFromPath(raw.SourcePath)
	}

	return &driven.NormaliseResult{
		Document: domain.Document{
			SourcePath: raw.SourcePath,
			Title:      title,
			Content:    content,
			Metadata: domain.DocumentMetadata{
				SizeBytes: raw.Size(),
				WordCount: domain.WordCount(content),
				Kind:      domain.KindMarkdown,
			},
		},
	}, nil
}

// Title returns the text of the first level-one heading, or the first
// heading of any level when there is no level-one heading.
// Returns "" for a document without headings.
func Title(source []byte) string {
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	var first, h1 string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := n.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}
		title := strings.TrimSpace(string(heading.Text(source)))
		if title == "" {
			return ast.WalkSkipChildren, nil
		}
		if first == "" {
			first = title
		}
		if heading.Level == 1 {
			h1 = title
			return ast.WalkStop, nil
		}
		return ast.WalkSkipChildren, nil
	})

	if h1 != "" {
		return h1
	}
	return first
}
