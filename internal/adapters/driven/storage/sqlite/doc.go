// Package sqlite provides a SQLite-based implementation of the local stores.
//
// This adapter uses modernc.org/sqlite, a pure Go SQLite implementation that requires
// no CGO, enabling easy cross-compilation. It implements several store interfaces
// through a single database connection:
//
//   - DocumentStore / DocumentWriter: offline content store
//   - ProposalStore: proposal table and last run summary
//   - LinkHistoryStore: log of inserted links
//
// # Schema
//
// The database schema is managed through versioned migrations stored in the
// migrations/ directory. Each migration is a pair of .up.sql and .down.sql files.
//
// # Data Location
//
// By default, the database is stored at ~/.clusterlink/data/clusterlink.db
//
// # Thread Safety
//
// All operations are thread-safe. The store uses database-level locking provided
// by SQLite in WAL mode. Proposal replacement runs in a single transaction.
package sqlite
