// Package hashperf keeps the slowest big-file hash timings seen on this
// machine in a table of bounded size.
//
// The table answers "what does hashing a large file cost here" without
// keeping unbounded history. Admission rules:
//   - a reading for a path already in the table replaces its old reading
//   - a new path is inserted while the table is below capacity
//   - once full, a new path is admitted only if it is strictly slower than
//     the fastest stored entry, which it evicts
package hashperf

import (
	"context"
	"fmt"

	"github.com/roach88/hashfold/internal/ir"
)

// DefaultCapacity is the table size used when none is configured.
const DefaultCapacity = 20

// Table is the storage the cache operates on. store.HashPerfRepo satisfies it,
// usually bound to the transaction that records the file event.
type Table interface {
	Get(ctx context.Context, root ir.RootID, path string) (ir.HashPerfEntry, bool, error)
	Count(ctx context.Context) (int, error)
	Min(ctx context.Context) (ir.HashPerfEntry, bool, error)
	Put(ctx context.Context, e ir.HashPerfEntry) error
	Delete(ctx context.Context, root ir.RootID, path string) error
}

// Cache applies the admission policy for a fixed capacity.
type Cache struct {
	capacity int
}

// New returns a Cache holding at most capacity entries. A non-positive
// capacity falls back to DefaultCapacity.
func New(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Cache{capacity: capacity}
}

// Capacity returns the maximum number of entries.
func (c *Cache) Capacity() int { return c.capacity }

// Observe offers a reading to the table and reports whether it was stored.
func (c *Cache) Observe(ctx context.Context, t Table, e ir.HashPerfEntry) (bool, error) {
	_, exists, err := t.Get(ctx, e.Root, e.Path)
	if err != nil {
		return false, fmt.Errorf("observe hash time: %w", err)
	}
	if exists {
		if err := t.Put(ctx, e); err != nil {
			return false, fmt.Errorf("observe hash time: %w", err)
		}
		return true, nil
	}

	n, err := t.Count(ctx)
	if err != nil {
		return false, fmt.Errorf("observe hash time: %w", err)
	}
	if n < c.capacity {
		if err := t.Put(ctx, e); err != nil {
			return false, fmt.Errorf("observe hash time: %w", err)
		}
		return true, nil
	}

	// A table written under a larger capacity is shrunk first.
	if n > c.capacity {
		if _, err := c.evict(ctx, t, n-c.capacity); err != nil {
			return false, err
		}
	}

	fastest, ok, err := t.Min(ctx)
	if err != nil {
		return false, fmt.Errorf("observe hash time: %w", err)
	}
	if !ok || e.Seconds() <= fastest.Seconds() {
		return false, nil
	}
	if err := t.Delete(ctx, fastest.Root, fastest.Path); err != nil {
		return false, fmt.Errorf("observe hash time: evict: %w", err)
	}
	if err := t.Put(ctx, e); err != nil {
		return false, fmt.Errorf("observe hash time: %w", err)
	}
	return true, nil
}

// Trim evicts the fastest entries until the table holds at most capacity
// entries, and returns how many were removed.
func (c *Cache) Trim(ctx context.Context, t Table) (int, error) {
	n, err := t.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("trim hash times: %w", err)
	}
	if n <= c.capacity {
		return 0, nil
	}
	left, err := c.evict(ctx, t, n-c.capacity)
	if err != nil {
		return 0, err
	}
	return n - left, nil
}

// evict removes up to excess fastest entries and returns the count left.
func (c *Cache) evict(ctx context.Context, t Table, excess int) (int, error) {
	for ; excess > 0; excess-- {
		fastest, ok, err := t.Min(ctx)
		if err != nil {
			return 0, fmt.Errorf("evict hash time: %w", err)
		}
		if !ok {
			break
		}
		if err := t.Delete(ctx, fastest.Root, fastest.Path); err != nil {
			return 0, fmt.Errorf("evict hash time: %w", err)
		}
	}
	n, err := t.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("evict hash time: %w", err)
	}
	return n, nil
}
