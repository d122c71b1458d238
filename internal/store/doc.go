// Package store provides SQLite-backed durable storage for the hashfold ledger.
//
// The store holds four tables:
//   - roots: registered root directories
//   - common: process-wide key/value metadata (update time, machine identity)
//   - files: the append-only file event log
//   - hashperf: the bounded table of slowest big-file hash timings
//
// # Repositories
//
// Each table has a small repository type (RootRepo, CommonRepo, FileRepo,
// HashPerfRepo) built over a Querier. A Querier is either the store's *sql.DB
// or a *sql.Tx handed out by WithTx, so the same repository code runs inside
// and outside a transaction. There is no implicit session.
//
// # Ordering
//
// files.sequence is the ledger-wide logical clock. "Latest" always means the
// greatest sequence, never the greatest mtime.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
