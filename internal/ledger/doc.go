// Package ledger tracks the state of files under registered root directories.
//
// The ledger is an append-only log of FileEvents stored in SQLite. For every
// (root, relative path) the current state is the event with the greatest
// sequence; older events are kept forever as history.
//
// ARCHITECTURE:
//
// Record Flow:
//  1. Probe the file for an exclusive lock; locked files are skipped
//  2. Stat size and mtime
//  3. Compare with the current event (in-memory index of latest sequences)
//  4. Unchanged (same size, mtime within one second): nothing is written
//  5. Changed: probe attributes, hash, then in one transaction append the
//     event, offer big-file timings to the hash performance table, and
//     refresh the update time
//
// The in-memory index maps (root, path) to its latest sequence. It is loaded
// once at Open and updated after every committed append, so lookups and the
// content hash index never scan the whole log.
//
// Known limitations, kept deliberately:
//   - Scan does not detect deletions; a removed file's last event stays current
//   - History is never compacted
//   - A store written before multi-root support that is opened for a
//     different root is dropped and rebuilt
//
// A Ledger is single-writer. Concurrent use from several goroutines, or of
// one store file from several processes, must be serialized by the caller.
package ledger
