// Package sqlite provides a unified SQLite-based implementation of driven port interfaces.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements multiple store interfaces
// through a single database connection:
//
//   - PairingStore: Pairing configuration and lifecycle persistence
//   - ItemStore: Content item, container node and failure persistence
//   - CheckpointStore: Crawl checkpoint persistence
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory.
//
// Item timestamps are stored as integer unix nanoseconds so the keyset
// comparison in QueryItemsUnderNode is a plain integer comparison with no
// timezone or precision ambiguity.
//
// # Data Location
//
// By default, the database is stored at ~/.corpus/data/corpus.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode.
package sqlite
