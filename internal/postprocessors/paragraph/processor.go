// Package paragraph provides a blank-line paragraph chunking processor.
package paragraph

import (
	"context"
	"regexp"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/minirag/internal/core/domain"
)

// Name is the registry name of this processor.
const Name = string(domain.ChunkParagraph)

// separator matches a line break followed by one or more blank lines.
// Blank lines may hold spaces or tabs.
var separator = regexp.MustCompile(`\r?\n(?:[ \t]*\r?\n)+`)

// Processor splits document content on blank lines.
// Short paragraphs are kept as they are; nothing is merged.
type Processor struct{}

// New creates a paragraph processor.
func New() *Processor {
	return &Processor{}
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process splits the document content into one chunk per paragraph.
func (p *Processor) Process(_ context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	text := doc.Content
	if text == "" {
		return nil, nil
	}

	var chunks []domain.Chunk
	emit := func(from, to int) {
		block := text[from:to]
		trimmed := strings.TrimLeftFunc(block, unicode.IsSpace)
		lead := len(block) - len(trimmed)
		trimmed = strings.TrimRightFunc(trimmed, unicode.IsSpace)
		if trimmed == "" {
			return
		}
		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    trimmed,
			Type:       domain.ChunkParagraph,
			Position:   len(chunks),
			Start:      from + lead,
			End:        from + lead + len(trimmed),
			WordCount:  domain.WordCount(trimmed),
		})
	}

	prev := 0
	for _, loc := range separator.FindAllStringIndex(text, -1) {
		emit(prev, loc[0])
		prev = loc[1]
	}
	emit(prev, len(text))

	return chunks, nil
}
