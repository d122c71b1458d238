package hasher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	sha512OfA     = "1f40fc92da241694750979ee6cf582f2d5d7d28e18335de05abc54d0560e0f5302860c652bf08d560252aa5e74210546f369fbbbce8c12cfc7957b2652fe9a75"
	sha512OfEmpty = "cf83e1357eefb8bdf1542850d66d8007d620e4050b5715dc83f4a921d36ce9ce47d0d13c5d85f2b0ff8318d2877eec2f63b931bd47417a81a538327af927da3e"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestSHA512_KnownDigests(t *testing.T) {
	h := NewSHA512()

	got, _, err := h.Hash(context.Background(), writeFile(t, "a"), false)
	require.NoError(t, err)
	assert.Equal(t, sha512OfA, got)

	got, _, err = h.Hash(context.Background(), writeFile(t, ""), false)
	require.NoError(t, err)
	assert.Equal(t, sha512OfEmpty, got)
}

func TestSHA512_MatchesBytes(t *testing.T) {
	content := "the quick brown fox"
	got, _, err := (&SHA512{BufferSize: 4}).Hash(context.Background(), writeFile(t, content), false)
	require.NoError(t, err)
	assert.Equal(t, Bytes([]byte(content)), got)
}

func TestSHA512_ElapsedOnlyForBigFiles(t *testing.T) {
	path := writeFile(t, "a")
	ticks := []time.Time{time.Unix(100, 0), time.Unix(103, 0)}
	h := &SHA512{now: func() time.Time {
		next := ticks[0]
		ticks = ticks[1:]
		return next
	}}

	_, elapsed, err := h.Hash(context.Background(), path, true)
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, elapsed)

	h.now = nil
	_, elapsed, err = h.Hash(context.Background(), path, false)
	require.NoError(t, err)
	assert.Zero(t, elapsed)
}

func TestSHA512_MissingFile(t *testing.T) {
	_, _, err := NewSHA512().Hash(context.Background(), filepath.Join(t.TempDir(), "missing"), false)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSHA512_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := NewSHA512().Hash(ctx, writeFile(t, "a"), false)
	assert.ErrorIs(t, err, context.Canceled)
}
