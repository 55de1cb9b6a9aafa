package filesystem

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
)

const eventTimeout = 2 * time.Second

func collect(t *testing.T, c *Connector) ([]domain.RawDocument, []error) {
	t.Helper()
	docsCh, errsCh := c.FullSync(context.Background())
	var docs []domain.RawDocument
	var errs []error
	for docsCh != nil || errsCh != nil {
		select {
		case d, ok := <-docsCh:
			if !ok {
				docsCh = nil
				continue
			}
			docs = append(docs, d)
		case e, ok := <-errsCh:
			if !ok {
				errsCh = nil
				continue
			}
			errs = append(errs, e)
		}
	}
	sort.Slice(docs, func(i, j int) bool { return docs[i].SourcePath < docs[j].SourcePath })
	return docs, errs
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestNew(t *testing.T) {
	t.Run("creates connector with defaults", func(t *testing.T) {
		c := New("/tmp/test")
		require.NotNil(t, c)
		assert.Equal(t, "/tmp/test", c.RootPath())
		assert.Equal(t, DefaultExtensions, c.extensions)
		assert.Equal(t, int64(DefaultMaxFileSize), c.maxFileSize)
	})

	t.Run("resolves file URIs", func(t *testing.T) {
		c := New("file:///tmp/test/")
		assert.Equal(t, "/tmp/test", c.RootPath())
	})

	t.Run("normalises extensions", func(t *testing.T) {
		c := New("/tmp", WithExtensions("TXT", ".Md"))
		assert.Equal(t, []string{".txt", ".md"}, c.extensions)
	})

	t.Run("implements Connector interface", func(t *testing.T) {
		var _ driven.Connector = New("/tmp")
	})
}

func TestConnector_Type(t *testing.T) {
	assert.Equal(t, "filesystem", New("/tmp").Type())
}

func TestConnector_Validate(t *testing.T) {
	t.Run("existing directory", func(t *testing.T) {
		assert.NoError(t, New(t.TempDir()).Validate(context.Background()))
	})

	t.Run("missing path", func(t *testing.T) {
		err := New("/non/existent/path").Validate(context.Background())
		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrNotFound))
		assert.Contains(t, err.Error(), "does not exist")
	})
}

func TestConnector_FullSync(t *testing.T) {
	t.Run("syncs eligible files from directory tree", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "file1.txt"), "content 1")
		writeFile(t, filepath.Join(dir, "nested", "file2.md"), "# Markdown")
		writeFile(t, filepath.Join(dir, "image.png"), "not text")

		docs, errs := collect(t, New(dir))
		assert.Empty(t, errs)
		require.Len(t, docs, 2)

		assert.Equal(t, filepath.Join(dir, "file1.txt"), docs[0].SourcePath)
		assert.Equal(t, domain.KindPlainText, docs[0].Kind)
		assert.Equal(t, []byte("content 1"), docs[0].Content)
		assert.Equal(t, 9, docs[0].SizeBytes)

		assert.Equal(t, filepath.Join(dir, "nested", "file2.md"), docs[1].SourcePath)
		assert.Equal(t, domain.KindMarkdown, docs[1].Kind)
	})

	t.Run("skips hidden files and directories", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "visible.txt"), "visible")
		writeFile(t, filepath.Join(dir, ".hidden.txt"), "hidden")
		writeFile(t, filepath.Join(dir, ".git", "notes.txt"), "hidden dir")

		docs, _ := collect(t, New(dir))
		require.Len(t, docs, 1)
		assert.Contains(t, docs[0].SourcePath, "visible.txt")
	})

	t.Run("reads a single file root whatever its extension", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "README")
		writeFile(t, path, "plain words")

		docs, errs := collect(t, New(path))
		assert.Empty(t, errs)
		require.Len(t, docs, 1)
		assert.Equal(t, path, docs[0].SourcePath)
	})

	t.Run("custom extensions", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "a")
		writeFile(t, filepath.Join(dir, "b.rst"), "b")

		docs, _ := collect(t, New(dir, WithExtensions("rst")))
		require.Len(t, docs, 1)
		assert.Contains(t, docs[0].SourcePath, "b.rst")
	})

	t.Run("reports oversized files and continues", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "big.txt"), "0123456789")
		writeFile(t, filepath.Join(dir, "small.txt"), "01")

		docs, errs := collect(t, New(dir, WithMaxFileSize(5)))
		require.Len(t, docs, 1)
		assert.Contains(t, docs[0].SourcePath, "small.txt")
		require.Len(t, errs, 1)
		assert.True(t, errors.Is(errs[0], domain.ErrInvalidInput))
	})

	t.Run("handles non-existent directory", func(t *testing.T) {
		docs, errs := collect(t, New("/non/existent/path"))
		assert.Empty(t, docs)
		require.Len(t, errs, 1)
		assert.Contains(t, errs[0].Error(), "does not exist")
	})

	t.Run("handles cancelled context", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, filepath.Join(dir, "a.txt"), "a")

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		docsCh, errsCh := New(dir).FullSync(ctx)
		require.NotNil(t, docsCh)
		require.NotNil(t, errsCh)

		// Channels should close.
		for range docsCh {
		}
		for range errsCh {
		}
	})
}

func waitChange(t *testing.T, changes <-chan domain.RawDocumentChange) domain.RawDocumentChange {
	t.Helper()
	select {
	case change, ok := <-changes:
		require.True(t, ok, "changes channel closed")
		return change
	case <-time.After(eventTimeout):
		t.Fatal("timeout waiting for file change event")
	}
	return domain.RawDocumentChange{}
}

func TestConnector_Watch(t *testing.T) {
	t.Run("detects file creation", func(t *testing.T) {
		dir := t.TempDir()
		c := New(dir)
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := c.Watch(ctx)
		require.NoError(t, err)

		writeFile(t, filepath.Join(dir, "new-file.txt"), "content")

		change := waitChange(t, changes)
		assert.Equal(t, domain.ChangeCreated, change.Type)
		assert.Contains(t, change.Document.SourcePath, "new-file.txt")
	})

	t.Run("detects file modifications", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "test.txt")
		writeFile(t, path, "initial")

		c := New(dir)
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := c.Watch(ctx)
		require.NoError(t, err)

		writeFile(t, path, "modified")

		change := waitChange(t, changes)
		assert.Equal(t, domain.ChangeUpdated, change.Type)
		assert.Equal(t, path, change.Document.SourcePath)
	})

	t.Run("detects file deletions", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "to-delete.txt")
		writeFile(t, path, "delete me")

		c := New(dir)
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := c.Watch(ctx)
		require.NoError(t, err)

		require.NoError(t, os.Remove(path))

		change := waitChange(t, changes)
		assert.Equal(t, domain.ChangeDeleted, change.Type)
		assert.Equal(t, path, change.Document.SourcePath)
	})

	t.Run("ignores ineligible files", func(t *testing.T) {
		dir := t.TempDir()
		c := New(dir)
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		changes, err := c.Watch(ctx)
		require.NoError(t, err)

		writeFile(t, filepath.Join(dir, "skip.bin"), "binary")
		writeFile(t, filepath.Join(dir, "keep.md"), "# Keep")

		change := waitChange(t, changes)
		assert.Contains(t, change.Document.SourcePath, "keep.md")
	})

	t.Run("returns error for non-existent directory", func(t *testing.T) {
		changes, err := New("/non/existent/path").Watch(context.Background())
		assert.Error(t, err)
		assert.Nil(t, changes)
		assert.Contains(t, err.Error(), "root path error")
	})

	t.Run("closes channel when context is cancelled", func(t *testing.T) {
		c := New(t.TempDir())
		defer c.Close()
		ctx, cancel := context.WithCancel(context.Background())

		changes, err := c.Watch(ctx)
		require.NoError(t, err)
		cancel()

		select {
		case _, ok := <-changes:
			if ok {
				for range changes {
				}
			}
		case <-time.After(eventTimeout):
			t.Fatal("channel did not close after context cancellation")
		}
	})

	t.Run("returns error when connector is closed", func(t *testing.T) {
		c := New(t.TempDir())
		require.NoError(t, c.Close())

		changes, err := c.Watch(context.Background())
		assert.ErrorIs(t, err, ErrClosed)
		assert.Nil(t, changes)
	})
}

func TestConnector_Close(t *testing.T) {
	t.Run("close is idempotent", func(t *testing.T) {
		c := New("/tmp/test")
		assert.NoError(t, c.Close())
		assert.NoError(t, c.Close())
	})

	t.Run("close stops a running watch", func(t *testing.T) {
		c := New(t.TempDir())
		changes, err := c.Watch(context.Background())
		require.NoError(t, err)

		require.NoError(t, c.Close())

		select {
		case _, ok := <-changes:
			if ok {
				for range changes {
				}
			}
		case <-time.After(eventTimeout):
			t.Fatal("channel did not close after Close")
		}
	})
}
