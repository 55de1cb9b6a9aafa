package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
	"github.com/custodia-labs/minirag/internal/core/ports/driving"
	"github.com/custodia-labs/minirag/internal/logger"
)

// Ensure SearchService implements the interface.
var _ driving.SearchService = (*SearchService)(nil)

const (
	maxHighlights      = 3
	maxHighlightLength = 200
)

// scoredChunk holds intermediate search results before hydration.
type scoredChunk struct {
	chunk domain.Chunk
	score float64
}

// SearchService ranks chunks by the fraction of distinct query terms they contain.
type SearchService struct {
	docStore     driven.DocumentStore
	defaultLimit int
}

// NewSearchService creates a new search service.
// defaultLimit applies when a query does not set one.
func NewSearchService(docStore driven.DocumentStore, defaultLimit int) *SearchService {
	if defaultLimit <= 0 {
		defaultLimit = domain.DefaultSearchLimit
	}
	return &SearchService{
		docStore:     docStore,
		defaultLimit: defaultLimit,
	}
}

// Search scores every stored chunk against the query and returns the best
// matches. A query without terms yields an empty result, not an error.
func (s *SearchService) Search(
	ctx context.Context, query string, opts domain.SearchOptions,
) ([]domain.SearchResult, error) {
	logger.Section("Search Execution")
	logger.Debug("Query: %q", query)
	defer logger.Timed("search")()

	terms := Terms(query)
	if len(terms) == 0 {
		logger.Debug("Empty query, returning no results")
		return []domain.SearchResult{}, nil
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = s.defaultLimit
	}
	logger.Debug("Terms: %v, limit: %d", terms, limit)

	chunks, err := s.docStore.AllChunks(ctx)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	candidates := make([]scoredChunk, 0, len(chunks))
	for i := range chunks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		score := Score(terms, TokenSet(chunks[i].Content))
		if score > 0 {
			candidates = append(candidates, scoredChunk{chunk: chunks[i], score: score})
		}
	}
	logger.Debug("Scored %d chunks, %d matched", len(chunks), len(candidates))

	// Stable sort keeps storage order as the last tie-break.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].chunk.Position < candidates[j].chunk.Position
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	results, err := s.hydrate(ctx, terms, candidates)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	logger.Info("Final results: %d", len(results))
	return results, nil
}

// hydrate attaches document details and highlights, and assigns ranks.
// A chunk whose document was removed after scoring is dropped; any other
// store failure is returned.
func (s *SearchService) hydrate(
	ctx context.Context, terms []string, candidates []scoredChunk,
) ([]domain.SearchResult, error) {
	docs := make(map[string]*domain.Document)
	results := make([]domain.SearchResult, 0, len(candidates))

	for _, c := range candidates {
		doc, seen := docs[c.chunk.DocumentID]
		if !seen {
			var err error
			doc, err = s.docStore.GetDocument(ctx, c.chunk.DocumentID)
			switch {
			case errors.Is(err, domain.ErrNotFound):
				logger.Debug("Document %s for chunk %s is gone, skipping", c.chunk.DocumentID, c.chunk.ID)
				doc = nil
			case err != nil:
				return nil, fmt.Errorf("document %s: %w", c.chunk.DocumentID, err)
			}
			docs[c.chunk.DocumentID] = doc
		}
		if doc == nil {
			continue
		}

		results = append(results, domain.SearchResult{
			Chunk:         c.chunk,
			Score:         c.score,
			Rank:          len(results) + 1,
			SourcePath:    doc.SourcePath,
			DocumentTitle: doc.Title,
			Highlights:    Highlights(c.chunk.Content, terms),
		})
	}
	return results, nil
}

// Tokenize splits text on anything that is not a letter or digit and
// lowercases the pieces.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Terms returns the distinct tokens of a query in first-seen order.
func Terms(query string) []string {
	tokens := Tokenize(query)
	seen := make(map[string]struct{}, len(tokens))
	terms := tokens[:0]
	for _, t := range tokens {
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		terms = append(terms, t)
	}
	return terms
}

// TokenSet returns the set of tokens in text.
func TokenSet(text string) map[string]struct{} {
	tokens := Tokenize(text)
	set := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		set[t] = struct{}{}
	}
	return set
}

// Score is the fraction of distinct terms present in tokens.
// It is 1.0 only when every term is present and 0 for no terms.
func Score(terms []string, tokens map[string]struct{}) float64 {
	if len(terms) == 0 {
		return 0
	}
	matched := 0
	for _, t := range terms {
		if _, ok := tokens[t]; ok {
			matched++
		}
	}
	return float64(matched) / float64(len(terms))
}

// Highlights returns up to three sentences of content that contain a term,
// each at most 200 bytes.
func Highlights(content string, terms []string) []string {
	var out []string
	for _, sentence := range sentences(content) {
		if Score(terms, TokenSet(sentence)) == 0 {
			continue
		}
		out = append(out, truncate(sentence, maxHighlightLength))
		if len(out) == maxHighlights {
			break
		}
	}
	return out
}

// sentences splits on terminal punctuation followed by whitespace and on
// line breaks, trimming each piece.
func sentences(content string) []string {
	var out []string
	start := 0
	emit := func(end int) {
		if s := strings.Join(strings.Fields(content[start:end]), " "); s != "" {
			out = append(out, s)
		}
		start = end
	}
	for i := 0; i < len(content); i++ {
		switch content[i] {
		case '\n':
			emit(i + 1)
		case '.', '!', '?':
			if i+1 == len(content) || content[i+1] == ' ' || content[i+1] == '\n' || content[i+1] == '\t' {
				emit(i + 1)
			}
		}
	}
	emit(len(content))
	return out
}

// truncate shortens s to at most n bytes without splitting a rune,
// marking the cut with "...".
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n - len("...")
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return strings.TrimRightFunc(s[:cut], unicode.IsSpace) + "..."
}
