package store

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/hashfold/internal/ir"
)

func TestRootRepo_InsertIsIdempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Roots().Insert(ctx, "/b"))
	require.NoError(t, s.Roots().Insert(ctx, "/a"))
	require.NoError(t, s.Roots().Insert(ctx, "/b"))

	roots, err := s.Roots().List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []ir.RootID{"/a", "/b"}, roots)
}

func TestCommonRepo_SetIfAbsentKeepsFirstValue(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Common().SetIfAbsent(ctx, "ledgerid", "first"))
	require.NoError(t, s.Common().SetIfAbsent(ctx, "ledgerid", "second"))

	val, _, err := s.Common().Get(ctx, "ledgerid")
	require.NoError(t, err)
	assert.Equal(t, "first", val)

	require.NoError(t, s.Common().Set(ctx, "ledgerid", "third"))
	val, _, err = s.Common().Get(ctx, "ledgerid")
	require.NoError(t, err)
	assert.Equal(t, "third", val)

	require.NoError(t, s.Common().Delete(ctx, "ledgerid"))
	_, ok, err := s.Common().Get(ctx, "ledgerid")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestFileRepo_RoundTripsEvent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	want := ir.FileEvent{
		Root:    "/r",
		Path:    "src/a.txt",
		Hash:    "abc",
		Size:    42,
		ModTime: time.Date(2024, 5, 6, 7, 8, 9, 123456789, time.UTC),
		Hidden:  true,
		System:  false,
		Seq:     7,
	}
	require.NoError(t, s.Files().Append(ctx, want))

	got, err := s.Files().BySeq(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFileRepo_CurrentIsGreatestSequence(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	// Appended with decreasing mtimes: ordering must follow sequence only.
	for i, hash := range []string{"h1", "h2", "h3"} {
		ev := createTestEvent("/r", "a", hash, int64(i+1))
		ev.ModTime = time.Date(2024, 1, 10-i, 0, 0, 0, 0, time.UTC)
		require.NoError(t, s.Files().Append(ctx, ev))
	}

	seqs, err := s.Files().CurrentSeqs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[ir.PathKey]int64{{Root: "/r", Path: "a"}: 3}, seqs)

	history, err := s.Files().History(ctx, "/r", "a")
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "h1", history[0].Hash)
}

func TestFileRepo_BySeqNotFound(t *testing.T) {
	s := createTestStore(t)

	_, err := s.Files().BySeq(context.Background(), 99)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestFileRepo_DuplicateSequenceFails(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Files().Append(ctx, createTestEvent("/r", "a", "h1", 1)))
	assert.Error(t, s.Files().Append(ctx, createTestEvent("/r", "b", "h2", 1)))
}

func TestFileRepo_CurrentAndCurrentSeqs(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	events := []ir.FileEvent{
		createTestEvent("/r", "b", "h1", 1),
		createTestEvent("/r", "a", "h1", 2),
		createTestEvent("/r", "b", "h2", 3),
		createTestEvent("/other", "a", "h9", 4),
	}
	for _, ev := range events {
		require.NoError(t, s.Files().Append(ctx, ev))
	}

	current, err := s.Files().Current(ctx, "/r")
	require.NoError(t, err)
	require.Len(t, current, 2)
	assert.Equal(t, "a", current[0].Path)
	assert.Equal(t, "b", current[1].Path)
	assert.Equal(t, "h2", current[1].Hash)

	seqs, err := s.Files().CurrentSeqs(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[ir.PathKey]int64{
		{Root: "/r", Path: "a"}:     2,
		{Root: "/r", Path: "b"}:     3,
		{Root: "/other", Path: "a"}: 4,
	}, seqs)

	maxSeq, err := s.Files().MaxSeq(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 4, maxSeq)
}

func TestFileRepo_ByHashIncludesHistory(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Files().Append(ctx, createTestEvent("/r", "a", "h1", 1)))
	require.NoError(t, s.Files().Append(ctx, createTestEvent("/r", "a", "h2", 2)))
	require.NoError(t, s.Files().Append(ctx, createTestEvent("/r", "b", "h1", 3)))
	require.NoError(t, s.Files().Append(ctx, createTestEvent("/x", "c", "h1", 4)))

	events, err := s.Files().ByHash(ctx, "/r", "h1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "a", events[0].Path)
	assert.Equal(t, "b", events[1].Path)
}

func TestFileRepo_ForEachInSequenceOrder(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Files().Append(ctx, createTestEvent("/r", "b", "h2", 5)))
	require.NoError(t, s.Files().Append(ctx, createTestEvent("/r", "a", "h1", 2)))

	var seqs []int64
	require.NoError(t, s.Files().ForEach(ctx, func(ev ir.FileEvent) error {
		seqs = append(seqs, ev.Seq)
		return nil
	}))
	assert.Equal(t, []int64{2, 5}, seqs)
}

func TestHashPerfRepo_PutGetMinList(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	repo := s.HashPerf()

	require.NoError(t, repo.Put(ctx, ir.HashPerfEntry{Root: "/r", Path: "slow", Elapsed: 3 * time.Second}))
	require.NoError(t, repo.Put(ctx, ir.HashPerfEntry{Root: "/r", Path: "fast", Elapsed: time.Second}))
	require.NoError(t, repo.Put(ctx, ir.HashPerfEntry{Root: "/r", Path: "mid", Elapsed: 2 * time.Second}))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	fastest, ok, err := repo.Min(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "fast", fastest.Path)

	// Put on an existing key replaces it.
	require.NoError(t, repo.Put(ctx, ir.HashPerfEntry{Root: "/r", Path: "fast", Elapsed: 5 * time.Second}))
	got, ok, err := repo.Get(ctx, "/r", "fast")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5*time.Second, got.Elapsed)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"fast", "slow", "mid"}, []string{list[0].Path, list[1].Path, list[2].Path})

	require.NoError(t, repo.Delete(ctx, "/r", "fast"))
	_, ok, err = repo.Get(ctx, "/r", "fast")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestHashPerfRepo_MinOnEmptyTable(t *testing.T) {
	s := createTestStore(t)

	_, ok, err := s.HashPerf().Min(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}
