package memory

import (
	"context"
	"fmt"
	"iter"
	"slices"
	"sync"

	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore is an in-memory implementation of driven.DocumentStore.
// A single lock guards documents, chunks and the indexes between them.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	chunks    map[string]domain.Chunk
	docChunks map[string][]string // document id -> chunk ids by position
	order     []string            // document ids in insertion order
	stats     domain.StorageStats
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		chunks:    make(map[string]domain.Chunk),
		docChunks: make(map[string][]string),
	}
}

// PutDocument stores a document together with its chunks.
func (s *DocumentStore) PutDocument(_ context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("document id required: %w", domain.ErrInvalidInput)
	}

	ordered := slices.Clone(chunks)
	slices.SortStableFunc(ordered, func(a, b domain.Chunk) int {
		return a.Position - b.Position
	})

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.documents[doc.ID]; exists {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrDuplicateID)
	}
	batch := make(map[string]struct{}, len(ordered))
	for i := range ordered {
		id := ordered[i].ID
		if _, exists := s.chunks[id]; exists {
			return fmt.Errorf("chunk %s: %w", id, domain.ErrDuplicateID)
		}
		if _, repeated := batch[id]; repeated {
			return fmt.Errorf("chunk %s repeated in batch: %w", id, domain.ErrDuplicateID)
		}
		batch[id] = struct{}{}
	}

	ids := make([]string, 0, len(ordered))
	for i := range ordered {
		c := ordered[i]
		c.DocumentID = doc.ID
		s.chunks[c.ID] = c
		ids = append(ids, c.ID)
	}
	s.documents[doc.ID] = *doc
	s.docChunks[doc.ID] = ids
	s.order = append(s.order, doc.ID)

	s.stats.TotalDocuments++
	s.stats.TotalChunks += len(ids)
	s.stats.TotalSizeBytes += len(doc.Content)
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocumentStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return &doc, nil
}

// GetChunk retrieves a specific chunk by ID.
func (s *DocumentStore) GetChunk(_ context.Context, id string) (*domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	chunk, ok := s.chunks[id]
	if !ok {
		return nil, fmt.Errorf("chunk %s: %w", id, domain.ErrNotFound)
	}
	return &chunk, nil
}

// GetChunks retrieves all chunks for a document ordered by position.
func (s *DocumentStore) GetChunks(_ context.Context, documentID string) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids, ok := s.docChunks[documentID]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}
	result := make([]domain.Chunk, 0, len(ids))
	for _, id := range ids {
		result = append(result, s.chunks[id])
	}
	return result, nil
}

// FindBySourcePath returns ids of documents ingested from path, oldest first.
func (s *DocumentStore) FindBySourcePath(_ context.Context, path string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var ids []string
	for _, id := range s.order {
		if s.documents[id].SourcePath == path {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// ListDocuments returns a lazy sequence of summaries in insertion order.
// The snapshot is taken when iteration starts, not when the sequence is created.
func (s *DocumentStore) ListDocuments(ctx context.Context) (iter.Seq[domain.DocumentSummary], error) {
	return func(yield func(domain.DocumentSummary) bool) {
		for _, summary := range s.snapshot() {
			if ctx.Err() != nil {
				return
			}
			if !yield(summary) {
				return
			}
		}
	}, nil
}

func (s *DocumentStore) snapshot() []domain.DocumentSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.DocumentSummary, 0, len(s.order))
	for _, id := range s.order {
		doc := s.documents[id]
		result = append(result, doc.Summary(len(s.docChunks[id])))
	}
	return result
}

// AllChunks returns every chunk, documents in insertion order and chunks by position.
func (s *DocumentStore) AllChunks(_ context.Context) ([]domain.Chunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Chunk, 0, len(s.chunks))
	for _, docID := range s.order {
		for _, id := range s.docChunks[docID] {
			result = append(result, s.chunks[id])
		}
	}
	return result, nil
}

// DeleteDocument removes a document and its chunks.
func (s *DocumentStore) DeleteDocument(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[id]
	if !ok {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	ids := s.docChunks[id]
	for _, chunkID := range ids {
		delete(s.chunks, chunkID)
	}
	delete(s.docChunks, id)
	delete(s.documents, id)
	if i := slices.Index(s.order, id); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}

	s.stats.TotalDocuments--
	s.stats.TotalChunks -= len(ids)
	s.stats.TotalSizeBytes -= len(doc.Content)
	return nil
}

// Stats returns the live totals.
func (s *DocumentStore) Stats(_ context.Context) (domain.StorageStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats, nil
}

// Clear removes all documents and chunks.
func (s *DocumentStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = make(map[string]domain.Document)
	s.chunks = make(map[string]domain.Chunk)
	s.docChunks = make(map[string][]string)
	s.order = nil
	s.stats = domain.StorageStats{}
	return nil
}
