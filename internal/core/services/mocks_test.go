package services

import (
	"context"
	"iter"
	"slices"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/minirag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*faultyStore)(nil)

// faultyStore wraps a memory store and fails the operations named in fail.
// failDeleteOf fails DeleteDocument for that one id only.
type faultyStore struct {
	*memory.DocumentStore
	err          error
	fail         map[string]bool
	failDeleteOf string
}

func newFaultyStore(err error, ops ...string) *faultyStore {
	fail := make(map[string]bool, len(ops))
	for _, op := range ops {
		fail[op] = true
	}
	return &faultyStore{DocumentStore: memory.NewDocumentStore(), err: err, fail: fail}
}

func (f *faultyStore) PutDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if f.fail["PutDocument"] {
		return f.err
	}
	return f.DocumentStore.PutDocument(ctx, doc, chunks)
}

func (f *faultyStore) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	if f.fail["GetDocument"] {
		return nil, f.err
	}
	return f.DocumentStore.GetDocument(ctx, id)
}

func (f *faultyStore) FindBySourcePath(ctx context.Context, path string) ([]string, error) {
	if f.fail["FindBySourcePath"] {
		return nil, f.err
	}
	return f.DocumentStore.FindBySourcePath(ctx, path)
}

func (f *faultyStore) ListDocuments(ctx context.Context) (iter.Seq[domain.DocumentSummary], error) {
	if f.fail["ListDocuments"] {
		return nil, f.err
	}
	return f.DocumentStore.ListDocuments(ctx)
}

func (f *faultyStore) AllChunks(ctx context.Context) ([]domain.Chunk, error) {
	if f.fail["AllChunks"] {
		return nil, f.err
	}
	return f.DocumentStore.AllChunks(ctx)
}

func (f *faultyStore) DeleteDocument(ctx context.Context, id string) error {
	if f.fail["DeleteDocument"] || (f.failDeleteOf != "" && id == f.failDeleteOf) {
		return f.err
	}
	return f.DocumentStore.DeleteDocument(ctx, id)
}

func (f *faultyStore) Stats(ctx context.Context) (domain.StorageStats, error) {
	if f.fail["Stats"] {
		return domain.StorageStats{}, f.err
	}
	return f.DocumentStore.Stats(ctx)
}

func (f *faultyStore) Clear(ctx context.Context) error {
	if f.fail["Clear"] {
		return f.err
	}
	return f.DocumentStore.Clear(ctx)
}

// statsOf returns the service totals, failing the test on error.
func statsOf(t *testing.T, svc *DocumentService) domain.StorageStats {
	t.Helper()
	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	return stats
}

// listOf collects the service listing, failing the test on error.
func listOf(t *testing.T, svc *DocumentService) []domain.DocumentSummary {
	t.Helper()
	seq, err := svc.List(context.Background())
	require.NoError(t, err)
	return slices.Collect(seq)
}
