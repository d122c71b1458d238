package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/roach88/hashfold/internal/ir"
)

// createTestStore creates a new store in a temp directory for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// createTestEvent creates a file event with minimal required fields.
func createTestEvent(root, path, hash string, seq int64) ir.FileEvent {
	return ir.FileEvent{
		Root:    ir.RootID(root),
		Path:    path,
		Hash:    hash,
		Size:    int64(len(hash)),
		ModTime: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Seq:     seq,
	}
}

func createTestPerfEntry(root, path string, secs float64) ir.HashPerfEntry {
	return ir.HashPerfEntry{
		Root:    ir.RootID(root),
		Path:    path,
		Elapsed: time.Duration(secs * float64(time.Second)),
	}
}
