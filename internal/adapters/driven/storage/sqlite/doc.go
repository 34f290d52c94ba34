// Package sqlite provides a SQLite-based implementation of the document and
// vector store ports.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. Both stores share a single database
// connection:
//
//   - DocumentStore: job description records
//   - VectorStore: embedded chunks, matched by brute-force cosine similarity
//     over the chunks of one document
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.jdrag/data/jdrag.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
