// Package filesystem loads documents from local files and directories.
package filesystem

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
	"github.com/custodia-labs/minirag/internal/logger"
)

// Ensure Connector implements the interface.
var _ driven.Connector = (*Connector)(nil)

const (
	// ConnectorType identifies this connector.
	ConnectorType = "filesystem"

	// DefaultMaxFileSize is the largest file read, in bytes.
	DefaultMaxFileSize = 10 << 20

	// DefaultEventRate is the sustained number of watch events emitted per second.
	DefaultEventRate = 20

	// DefaultEventBurst is the number of watch events emitted without throttling.
	DefaultEventBurst = 10
)

// DefaultExtensions lists the file extensions picked up from directories.
// A root that names a single file is read whatever its extension.
var DefaultExtensions = []string{".txt", ".text", ".md", ".markdown"}

// ErrClosed is returned when watching a closed connector.
var ErrClosed = errors.New("connector closed")

// Connector reads documents from a file or a directory tree.
type Connector struct {
	rootPath    string
	extensions  []string
	maxFileSize int64
	limiter     *rate.Limiter

	mu      sync.Mutex
	closed  bool
	watcher *fsnotify.Watcher
}

// Option configures a Connector.
type Option func(*Connector)

// WithExtensions replaces the accepted extensions. Matching ignores case.
func WithExtensions(exts ...string) Option {
	return func(c *Connector) {
		c.extensions = make([]string, 0, len(exts))
		for _, e := range exts {
			if !strings.HasPrefix(e, ".") {
				e = "." + e
			}
			c.extensions = append(c.extensions, strings.ToLower(e))
		}
	}
}

// WithMaxFileSize sets the largest file read.
func WithMaxFileSize(n int64) Option {
	return func(c *Connector) {
		c.maxFileSize = n
	}
}

// WithEventRate throttles watch events to r per second with the given burst.
func WithEventRate(r rate.Limit, burst int) Option {
	return func(c *Connector) {
		c.limiter = rate.NewLimiter(r, burst)
	}
}

// New creates a connector for a file or directory.
// The path is not checked until Validate, FullSync or Watch.
func New(rootPath string, opts ...Option) *Connector {
	c := &Connector{
		rootPath:    ResolvePath(rootPath),
		extensions:  DefaultExtensions,
		maxFileSize: DefaultMaxFileSize,
		limiter:     rate.NewLimiter(DefaultEventRate, DefaultEventBurst),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Type returns the connector type identifier.
func (c *Connector) Type() string {
	return ConnectorType
}

// RootPath returns the resolved root.
func (c *Connector) RootPath() string {
	return c.rootPath
}

// Validate checks that the root exists.
func (c *Connector) Validate(_ context.Context) error {
	_, err := c.stat()
	return err
}

func (c *Connector) stat() (fs.FileInfo, error) {
	info, err := os.Stat(c.rootPath)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("root path error: %s does not exist: %w", c.rootPath, domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("root path error: %w", err)
	}
	return info, nil
}

// FullSync streams every eligible file under the root.
// Unreadable files are reported on the error channel and the scan continues.
func (c *Connector) FullSync(ctx context.Context) (<-chan domain.RawDocument, <-chan error) {
	docs := make(chan domain.RawDocument)
	errs := make(chan error, 16)

	go func() {
		defer close(docs)
		defer close(errs)

		info, err := c.stat()
		if err != nil {
			sendErr(ctx, errs, err)
			return
		}

		if !info.IsDir() {
			c.emitFile(ctx, c.rootPath, docs, errs)
			return
		}

		err = filepath.WalkDir(c.rootPath, func(path string, d fs.DirEntry, err error) error {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				sendErr(ctx, errs, fmt.Errorf("walk %s: %w", path, err))
				if d != nil && d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if path != c.rootPath && isHidden(d.Name()) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !d.Type().IsRegular() || !c.accepts(path) {
				return nil
			}
			c.emitFile(ctx, path, docs, errs)
			return nil
		})
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			sendErr(ctx, errs, err)
		}
	}()

	return docs, errs
}

func (c *Connector) emitFile(ctx context.Context, path string, docs chan<- domain.RawDocument, errs chan<- error) {
	raw, err := c.read(path)
	if err != nil {
		sendErr(ctx, errs, err)
		return
	}
	select {
	case docs <- *raw:
	case <-ctx.Done():
	}
}

// read loads a file into a RawDocument.
func (c *Connector) read(path string) (*domain.RawDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if c.maxFileSize > 0 && info.Size() > c.maxFileSize {
		return nil, fmt.Errorf("%s is %d bytes, limit is %d: %w",
			path, info.Size(), c.maxFileSize, domain.ErrInvalidInput)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return &domain.RawDocument{
		SourcePath: path,
		Kind:       domain.KindForPath(path),
		Content:    content,
		SizeBytes:  len(content),
	}, nil
}

// Watch emits changes to eligible files under the root until ctx is
// cancelled or the connector is closed. A single-file root is watched
// through its parent directory.
func (c *Connector) Watch(ctx context.Context) (<-chan domain.RawDocumentChange, error) {
	info, err := c.stat()
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrClosed
	}
	if c.watcher != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("already watching %s: %w", c.rootPath, domain.ErrInvalidInput)
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		c.mu.Unlock()
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	c.watcher = w
	c.mu.Unlock()

	if info.IsDir() {
		err = c.addRecursive(w, c.rootPath)
	} else {
		err = w.Add(filepath.Dir(c.rootPath))
	}
	if err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("watch %s: %w", c.rootPath, err)
	}

	changes := make(chan domain.RawDocumentChange)
	go c.watchLoop(ctx, w, info.IsDir(), changes)
	logger.Debug("Watching %s", c.rootPath)
	return changes, nil
}

func (c *Connector) watchLoop(ctx context.Context, w *fsnotify.Watcher, isDir bool, changes chan<- domain.RawDocumentChange) {
	defer close(changes)

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.Events:
			if !ok {
				return
			}
			for _, change := range c.translate(w, isDir, event) {
				if err := c.limiter.Wait(ctx); err != nil {
					return
				}
				select {
				case changes <- change:
				case <-ctx.Done():
					return
				}
			}

		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			logger.Warn("Watcher error: %v", err)
		}
	}
}

// translate maps an fsnotify event to zero or more document changes.
func (c *Connector) translate(w *fsnotify.Watcher, isDir bool, event fsnotify.Event) []domain.RawDocumentChange {
	path := filepath.Clean(event.Name)
	if !isDir && path != c.rootPath {
		return nil
	}
	if isHidden(filepath.Base(path)) {
		return nil
	}

	switch {
	case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
		if isDir && !c.accepts(path) {
			return nil
		}
		return []domain.RawDocumentChange{{
			Type:     domain.ChangeDeleted,
			Document: domain.RawDocument{SourcePath: path, Kind: domain.KindForPath(path)},
		}}

	case event.Has(fsnotify.Create):
		info, err := os.Stat(path)
		if err != nil {
			return nil
		}
		if info.IsDir() {
			if isDir {
				return c.createdTree(w, path)
			}
			return nil
		}
		return c.fileChange(domain.ChangeCreated, path, isDir)

	case event.Has(fsnotify.Write):
		return c.fileChange(domain.ChangeUpdated, path, isDir)
	}
	return nil
}

func (c *Connector) fileChange(t domain.ChangeType, path string, isDir bool) []domain.RawDocumentChange {
	if isDir && !c.accepts(path) {
		return nil
	}
	raw, err := c.read(path)
	if err != nil {
		logger.Debug("Skipping %s: %v", path, err)
		return nil
	}
	return []domain.RawDocumentChange{{Type: t, Document: *raw}}
}

// createdTree watches a new directory and reports the files already in it.
func (c *Connector) createdTree(w *fsnotify.Watcher, root string) []domain.RawDocumentChange {
	if err := c.addRecursive(w, root); err != nil {
		logger.Warn("Watch %s: %v", root, err)
	}
	var out []domain.RawDocumentChange
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if isHidden(d.Name()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Type().IsRegular() {
			out = append(out, c.fileChange(domain.ChangeCreated, path, true)...)
		}
		return nil
	})
	return out
}

func (c *Connector) addRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrPermission) {
				return filepath.SkipDir
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && isHidden(d.Name()) {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}

// accepts reports whether path has an accepted extension.
func (c *Connector) accepts(path string) bool {
	return slices.Contains(c.extensions, strings.ToLower(filepath.Ext(path)))
}

// Close stops any watch. It is safe to call more than once.
func (c *Connector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.watcher == nil {
		return nil
	}
	err := c.watcher.Close()
	c.watcher = nil
	return err
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func sendErr(ctx context.Context, errs chan<- error, err error) {
	select {
	case errs <- err:
	case <-ctx.Done():
	}
}
