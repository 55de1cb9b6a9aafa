package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"iter"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/minirag/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/minirag/internal/core/domain"
	"github.com/custodia-labs/minirag/internal/core/ports/driven"
	"github.com/custodia-labs/minirag/internal/logger"
)

// Ensure Store implements the interface.
var _ driven.DocumentStore = (*Store)(nil)

// memoryDSN opens a private in-memory database with foreign keys enforced.
const memoryDSN = ":memory:?_pragma=foreign_keys(1)"

const documentColumns = `id, source_path, title, content, size_bytes, word_count, kind, created_at`

const chunkColumns = `id, document_id, content, type, position, start_byte, end_byte, word_count`

// Store is a SQLite-backed driven.DocumentStore.
type Store struct {
	db *sql.DB
}

// NewStore opens an empty in-memory database and applies the migrations.
func NewStore() (*Store, error) {
	db, err := sql.Open("sqlite", memoryDSN)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Each connection to :memory: is a separate database.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	db.SetConnMaxIdleTime(0)

	s := &Store{db: db}
	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}
	return s, nil
}

// Close releases the database. Everything stored is lost.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate runs all pending migrations.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_documents.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if _, err := s.db.Exec(string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
		logger.Debug("Applied migration %s", name)
	}

	return nil
}

// PutDocument stores a document together with its chunks in one transaction.
func (s *Store) PutDocument(ctx context.Context, doc *domain.Document, chunks []domain.Chunk) error {
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("document id required: %w", domain.ErrInvalidInput)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if exists, err := rowExists(ctx, tx, "SELECT 1 FROM documents WHERE id = ?", doc.ID); err != nil {
		return err
	} else if exists {
		return fmt.Errorf("document %s: %w", doc.ID, domain.ErrDuplicateID)
	}
	batch := make(map[string]struct{}, len(chunks))
	for i := range chunks {
		id := chunks[i].ID
		if _, repeated := batch[id]; repeated {
			return fmt.Errorf("chunk %s repeated in batch: %w", id, domain.ErrDuplicateID)
		}
		batch[id] = struct{}{}
		if exists, err := rowExists(ctx, tx, "SELECT 1 FROM chunks WHERE id = ?", id); err != nil {
			return err
		} else if exists {
			return fmt.Errorf("chunk %s: %w", id, domain.ErrDuplicateID)
		}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO documents (`+documentColumns+`, content_bytes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, doc.ID, doc.SourcePath, doc.Title, doc.Content, doc.Metadata.SizeBytes,
		doc.Metadata.WordCount, int(doc.Metadata.Kind), toUnixNano(doc.Metadata.CreatedAt), len(doc.Content))
	if err != nil {
		return fmt.Errorf("saving document: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO chunks (`+chunkColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing statement: %w", err)
	}
	defer stmt.Close()

	for i := range chunks {
		c := &chunks[i]
		if _, err := stmt.ExecContext(ctx, c.ID, doc.ID, c.Content, string(c.Type),
			c.Position, c.Start, c.End, c.WordCount); err != nil {
			return fmt.Errorf("saving chunk: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// GetDocument retrieves a document by ID.
func (s *Store) GetDocument(ctx context.Context, id string) (*domain.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+documentColumns+` FROM documents WHERE id = ?`, id)
	doc, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}
	return doc, err
}

// GetChunk retrieves a specific chunk by ID.
func (s *Store) GetChunk(ctx context.Context, id string) (*domain.Chunk, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+chunkColumns+` FROM chunks WHERE id = ?`, id)
	chunk, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("chunk %s: %w", id, domain.ErrNotFound)
	}
	return chunk, err
}

// GetChunks retrieves all chunks for a document ordered by position.
func (s *Store) GetChunks(ctx context.Context, documentID string) ([]domain.Chunk, error) {
	exists, err := rowExists(ctx, s.db, "SELECT 1 FROM documents WHERE id = ?", documentID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, fmt.Errorf("document %s: %w", documentID, domain.ErrNotFound)
	}

	chunks, err := s.queryChunks(ctx, `
		SELECT `+chunkColumns+` FROM chunks WHERE document_id = ? ORDER BY position
	`, documentID)
	if err != nil {
		return nil, err
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	return chunks, nil
}

// FindBySourcePath returns ids of documents ingested from path, oldest first.
func (s *Store) FindBySourcePath(ctx context.Context, path string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM documents WHERE source_path = ? ORDER BY seq`, path)
	if err != nil {
		return nil, fmt.Errorf("querying documents for %s: %w", path, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scanning document id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents for %s: %w", path, err)
	}
	return ids, nil
}

// ListDocuments returns a sequence over the summaries read by this call, in
// insertion order. Rows are read in full up front, so the caller may use the
// store while ranging and a failed read is returned here.
func (s *Store) ListDocuments(ctx context.Context) (iter.Seq[domain.DocumentSummary], error) {
	summaries, err := s.summaries(ctx)
	if err != nil {
		return nil, err
	}
	return func(yield func(domain.DocumentSummary) bool) {
		for _, summary := range summaries {
			if ctx.Err() != nil {
				return
			}
			if !yield(summary) {
				return
			}
		}
	}, nil
}

func (s *Store) summaries(ctx context.Context) ([]domain.DocumentSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT d.id, d.source_path, d.title, d.size_bytes, d.word_count, d.kind, d.created_at,
		       (SELECT COUNT(*) FROM chunks c WHERE c.document_id = d.id)
		FROM documents d
		ORDER BY d.seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying documents: %w", err)
	}
	defer rows.Close()

	var summaries []domain.DocumentSummary
	for rows.Next() {
		var (
			summary   domain.DocumentSummary
			kind      int
			createdAt int64
		)
		if err := rows.Scan(&summary.ID, &summary.SourcePath, &summary.Title, &summary.SizeBytes,
			&summary.WordCount, &kind, &createdAt, &summary.ChunkCount); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		summary.Kind = domain.ContentKind(kind)
		summary.CreatedAt = fromUnixNano(createdAt)
		summaries = append(summaries, summary)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return summaries, nil
}

// AllChunks returns every chunk, documents in insertion order and chunks by position.
func (s *Store) AllChunks(ctx context.Context) ([]domain.Chunk, error) {
	chunks, err := s.queryChunks(ctx, `
		SELECT c.id, c.document_id, c.content, c.type, c.position, c.start_byte, c.end_byte, c.word_count
		FROM chunks c JOIN documents d ON d.id = c.document_id
		ORDER BY d.seq, c.position
	`)
	if err != nil {
		return nil, fmt.Errorf("loading chunks: %w", err)
	}
	if chunks == nil {
		chunks = []domain.Chunk{}
	}
	return chunks, nil
}

// DeleteDocument removes a document and its chunks.
func (s *Store) DeleteDocument(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks WHERE document_id = ?", id); err != nil {
		return fmt.Errorf("deleting chunks: %w", err)
	}
	res, err := tx.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting document: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("document %s: %w", id, domain.ErrNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Stats returns the live totals.
func (s *Store) Stats(ctx context.Context) (domain.StorageStats, error) {
	var stats domain.StorageStats
	row := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM documents),
		       (SELECT COUNT(*) FROM chunks),
		       (SELECT COALESCE(SUM(content_bytes), 0) FROM documents)
	`)
	if err := row.Scan(&stats.TotalDocuments, &stats.TotalChunks, &stats.TotalSizeBytes); err != nil {
		return domain.StorageStats{}, fmt.Errorf("reading storage stats: %w", err)
	}
	return stats, nil
}

// Clear removes all documents and chunks in one transaction.
func (s *Store) Clear(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, "DELETE FROM chunks"); err != nil {
		return fmt.Errorf("clearing chunks: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM documents"); err != nil {
		return fmt.Errorf("clearing documents: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

func (s *Store) queryChunks(ctx context.Context, query string, args ...any) ([]domain.Chunk, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying chunks: %w", err)
	}
	defer rows.Close()

	var chunks []domain.Chunk //nolint:prealloc // size unknown from query
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, *chunk)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating chunks: %w", err)
	}
	return chunks, nil
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func rowExists(ctx context.Context, q queryer, query string, args ...any) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking existence: %w", err)
	}
	return true, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*domain.Document, error) {
	var (
		doc       domain.Document
		kind      int
		createdAt int64
	)
	if err := row.Scan(&doc.ID, &doc.SourcePath, &doc.Title, &doc.Content, &doc.Metadata.SizeBytes,
		&doc.Metadata.WordCount, &kind, &createdAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning document: %w", err)
	}
	doc.Metadata.Kind = domain.ContentKind(kind)
	doc.Metadata.CreatedAt = fromUnixNano(createdAt)
	return &doc, nil
}

func scanChunk(row scanner) (*domain.Chunk, error) {
	var (
		chunk     domain.Chunk
		chunkType string
	)
	if err := row.Scan(&chunk.ID, &chunk.DocumentID, &chunk.Content, &chunkType,
		&chunk.Position, &chunk.Start, &chunk.End, &chunk.WordCount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scanning chunk: %w", err)
	}
	chunk.Type = domain.ChunkType(chunkType)
	return &chunk, nil
}

// toUnixNano stores the zero time as 0 so it survives the round trip.
func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n)
}
