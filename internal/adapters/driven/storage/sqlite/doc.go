// Package sqlite provides SQLite-backed implementations of driven port
// interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that
// requires no CGO. It currently implements:
//
//   - HistoryStore: summaries of completed requests
//
// # Schema
//
// The schema is managed through versioned migrations embedded from the
// migrations/ directory. Applied versions are recorded in schema_migrations.
//
// # Data Location
//
// By default, the database is stored at ~/.vaultqa/data/history.db.
package sqlite
