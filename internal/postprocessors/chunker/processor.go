// Package chunker provides a fixed-size text chunking processor.
package chunker

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/custodia-labs/minirag/internal/core/domain"
)

// Name is the registry name of this processor.
const Name = string(domain.ChunkFixedSize)

// Processor splits document content into chunks of at most chunkSize
// characters. Sizes count runes; chunk Start and End stay byte offsets.
// Split points snap back to whitespace within lookBack characters; otherwise
// the cut falls at exactly chunkSize characters.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize int
	overlap   int
	lookBack  int
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the maximum chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		p.chunkSize = size
	}
}

// WithOverlap sets the overlap between consecutive chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		p.overlap = overlap
	}
}

// WithLookBack sets how many characters back a split may move to find whitespace.
func WithLookBack(n int) Option {
	return func(p *Processor) {
		p.lookBack = n
	}
}

// New creates a new chunker processor with the given options.
// Returns domain.ErrInvalidConfiguration naming the offending parameter.
func New(opts ...Option) (*Processor, error) {
	p := &Processor{
		chunkSize: domain.DefaultChunkSize,
		overlap:   domain.DefaultChunkOverlap,
		lookBack:  domain.DefaultBoundaryLookBack,
	}

	for _, opt := range opts {
		opt(p)
	}

	cfg := domain.ChunkingConfig{
		Strategy:  domain.ChunkFixedSize,
		ChunkSize: p.chunkSize,
		Overlap:   p.overlap,
		LookBack:  p.lookBack,
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return p, nil
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return Name
}

// Process splits the document content into chunks.
// Input chunks are ignored; this processor creates new chunks from document content.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	t := newRuneText(doc.Content)
	n := t.len()

	chunks := make([]domain.Chunk, 0, n/p.chunkSize+1)
	start := 0

	for {
		for start < n && t.space(start) {
			start++
		}
		if start >= n {
			break
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("chunking %s: %w", doc.ID, err)
		}

		cut := p.splitPoint(t, start)
		offset := t.offsets[start]
		content := strings.TrimRightFunc(t.text[offset:t.offsets[cut]], isSpaceRune)

		chunks = append(chunks, domain.Chunk{
			ID:         uuid.New().String(),
			DocumentID: doc.ID,
			Content:    content,
			Type:       domain.ChunkFixedSize,
			Position:   len(chunks),
			Start:      offset,
			End:        offset + len(content),
			WordCount:  domain.WordCount(content),
		})

		if cut >= n {
			break
		}
		start = p.nextStart(t, start, cut)
	}

	return chunks, nil
}

// splitPoint returns the exclusive end rune of the chunk beginning at start.
func (p *Processor) splitPoint(t runeText, start int) int {
	end := start + p.chunkSize
	if end >= t.len() {
		return t.len()
	}

	low := max(start+1, end-p.lookBack)
	for i := end; i >= low; i-- {
		if t.space(i) {
			return i
		}
	}
	return end
}

// nextStart steps back by the overlap and moves forward to a word start.
func (p *Processor) nextStart(t runeText, start, cut int) int {
	if p.overlap == 0 {
		return cut
	}
	next := cut - p.overlap
	for next < cut && next > 0 && !t.space(next-1) {
		next++
	}
	if next <= start {
		return cut
	}
	return next
}

// runeText indexes a string by rune. offsets holds the byte offset of every
// rune plus a final entry equal to len(text).
type runeText struct {
	text    string
	offsets []int
}

func newRuneText(text string) runeText {
	offsets := make([]int, 0, utf8.RuneCountInString(text)+1)
	for i := range text {
		offsets = append(offsets, i)
	}
	return runeText{text: text, offsets: append(offsets, len(text))}
}

// len returns the number of runes.
func (t runeText) len() int {
	return len(t.offsets) - 1
}

// space reports whether rune i is ASCII whitespace.
func (t runeText) space(i int) bool {
	return isSpace(t.text[t.offsets[i]])
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}

func isSpaceRune(r rune) bool {
	return r < utf8.RuneSelf && isSpace(byte(r))
}
