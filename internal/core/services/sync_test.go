package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/minirag/internal/core/domain"
)

func raw(path, content string) domain.RawDocument {
	return domain.RawDocument{
		SourcePath: path,
		Kind:       domain.KindForPath(path),
		Content:    []byte(content),
	}
}

func feed(docs []domain.RawDocument, errs []error) (<-chan domain.RawDocument, <-chan error) {
	docsCh := make(chan domain.RawDocument, len(docs))
	errsCh := make(chan error, len(errs))
	for _, d := range docs {
		docsCh <- d
	}
	for _, e := range errs {
		errsCh <- e
	}
	close(docsCh)
	close(errsCh)
	return docsCh, errsCh
}

func TestSyncOrchestrator_Ingest(t *testing.T) {
	docs, _ := newTestDocumentService(t)
	o := NewSyncOrchestrator(docs, domain.ChunkParagraph)
	ctx := context.Background()

	docsCh, errsCh := feed([]domain.RawDocument{
		raw("a.txt", "alpha\n\nbeta"),
		raw("bad.txt", "bad \xff"),
		raw("c.md", "# Title\n\ngamma"),
	}, []error{errors.New("permission denied")})

	result, err := o.Ingest(ctx, docsCh, errsCh)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 2, result.Failed)
	assert.Len(t, result.Errors, 2)

	stats := statsOf(t, docs)
	assert.Equal(t, 2, stats.TotalDocuments)
	assert.Equal(t, 4, stats.TotalChunks)

	status := o.Status()
	assert.Equal(t, 2, status.DocumentsProcessed)
	assert.Equal(t, 2, status.ErrorCount)
	assert.False(t, status.Watching)
}

func TestSyncOrchestrator_Ingest_Cancelled(t *testing.T) {
	docs, _ := newTestDocumentService(t)
	o := NewSyncOrchestrator(docs, "")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// Unclosed channels block forever without cancellation.
	_, err := o.Ingest(ctx, make(chan domain.RawDocument), make(chan error))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSyncOrchestrator_Apply(t *testing.T) {
	docs, _ := newTestDocumentService(t)
	o := NewSyncOrchestrator(docs, domain.ChunkParagraph)
	ctx := context.Background()

	require.NoError(t, o.Apply(ctx, domain.RawDocumentChange{
		Type:     domain.ChangeCreated,
		Document: raw("notes.txt", "first version"),
	}))
	assert.Equal(t, 1, statsOf(t, docs).TotalDocuments)

	require.NoError(t, o.Apply(ctx, domain.RawDocumentChange{
		Type:     domain.ChangeUpdated,
		Document: raw("notes.txt", "second\n\nversion"),
	}))
	stats := statsOf(t, docs)
	assert.Equal(t, 1, stats.TotalDocuments)
	assert.Equal(t, 2, stats.TotalChunks)

	var contents []string
	for _, summary := range listOf(t, docs) {
		content, err := docs.GetContent(ctx, summary.ID)
		require.NoError(t, err)
		contents = append(contents, content)
	}
	assert.Equal(t, []string{"second\n\nversion"}, contents)

	require.NoError(t, o.Apply(ctx, domain.RawDocumentChange{
		Type:     domain.ChangeDeleted,
		Document: domain.RawDocument{SourcePath: "notes.txt"},
	}))
	assert.Equal(t, domain.StorageStats{}, statsOf(t, docs))
}

func TestSyncOrchestrator_Apply_FailedUpdateKeepsPrevious(t *testing.T) {
	docs, _ := newTestDocumentService(t)
	o := NewSyncOrchestrator(docs, "")
	ctx := context.Background()

	require.NoError(t, o.Apply(ctx, domain.RawDocumentChange{
		Type:     domain.ChangeCreated,
		Document: raw("a.txt", "alpha beta"),
	}))

	err := o.Apply(ctx, domain.RawDocumentChange{
		Type:     domain.ChangeUpdated,
		Document: raw("a.txt", "bad \xff"),
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	summaries := listOf(t, docs)
	require.Len(t, summaries, 1)
	content, err := docs.GetContent(ctx, summaries[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "alpha beta", content)
}

func TestSyncOrchestrator_Apply_UpdateOfUnknownPath(t *testing.T) {
	docs, _ := newTestDocumentService(t)
	o := NewSyncOrchestrator(docs, "")
	ctx := context.Background()

	require.NoError(t, o.Apply(ctx, domain.RawDocumentChange{
		Type:     domain.ChangeUpdated,
		Document: raw("new.txt", "content"),
	}))
	assert.Equal(t, 1, statsOf(t, docs).TotalDocuments)
}

func TestSyncOrchestrator_Apply_CreatedTwice(t *testing.T) {
	docs, _ := newTestDocumentService(t)
	o := NewSyncOrchestrator(docs, "")
	ctx := context.Background()

	for _, content := range []string{"v1", "v2"} {
		require.NoError(t, o.Apply(ctx, domain.RawDocumentChange{
			Type:     domain.ChangeCreated,
			Document: raw("saved.txt", content),
		}))
	}
	assert.Equal(t, 1, statsOf(t, docs).TotalDocuments)
}

func TestSyncOrchestrator_Apply_UnknownType(t *testing.T) {
	docs, _ := newTestDocumentService(t)
	o := NewSyncOrchestrator(docs, "")

	err := o.Apply(context.Background(), domain.RawDocumentChange{Type: domain.ChangeType(42)})
	assert.True(t, errors.Is(err, domain.ErrUnsupportedType))
}

func TestSyncOrchestrator_Watch(t *testing.T) {
	docs, _ := newTestDocumentService(t)
	o := NewSyncOrchestrator(docs, "")
	ctx := context.Background()

	changes := make(chan domain.RawDocumentChange, 3)
	changes <- domain.RawDocumentChange{Type: domain.ChangeCreated, Document: raw("a.txt", "alpha")}
	changes <- domain.RawDocumentChange{Type: domain.ChangeCreated, Document: raw("b.txt", "bad \xff")}
	changes <- domain.RawDocumentChange{Type: domain.ChangeDeleted, Document: domain.RawDocument{SourcePath: "a.txt"}}
	close(changes)

	result, err := o.Watch(ctx, changes)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Processed)
	assert.Equal(t, 1, result.Failed)
	assert.Equal(t, 0, statsOf(t, docs).TotalDocuments)
	assert.False(t, o.Status().Watching)
}

func TestSyncOrchestrator_Watch_Cancelled(t *testing.T) {
	docs, _ := newTestDocumentService(t)
	o := NewSyncOrchestrator(docs, "")
	ctx, cancel := context.WithCancel(context.Background())

	changes := make(chan domain.RawDocumentChange)
	done := make(chan error, 1)
	go func() {
		_, err := o.Watch(ctx, changes)
		done <- err
	}()

	require.Eventually(t, func() bool { return o.Status().Watching }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("watch did not stop after cancellation")
	}
}
