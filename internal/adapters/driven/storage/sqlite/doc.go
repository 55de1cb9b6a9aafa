// Package sqlite provides a SQLite implementation of driven.DocumentStore.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. The database lives in memory and is discarded when the
// store is closed, so it holds exactly what the in-memory store holds for
// the lifetime of one process.
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Files are named NNN_description.up.sql.
//
// # Thread Safety
//
// All operations are safe for concurrent use. The pool is limited to a single
// connection, so statements are serialised by database/sql.
package sqlite
