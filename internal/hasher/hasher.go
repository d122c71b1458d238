// Package hasher computes content hashes for the ledger.
package hasher

import (
	"context"
	"crypto/sha512"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"
)

// Hasher computes the content hash of a file. Elapsed is only measured when
// isBig is set; otherwise it is zero.
type Hasher interface {
	Hash(ctx context.Context, absPath string, isBig bool) (hash string, elapsed time.Duration, err error)
}

const defaultBufferSize = 1 << 20

// SHA512 streams a file through SHA-512 and returns the lowercase hex digest.
type SHA512 struct {
	// BufferSize is the read size; zero means 1 MiB.
	BufferSize int

	now func() time.Time
}

// NewSHA512 returns a SHA-512 hasher with the default buffer size.
func NewSHA512() *SHA512 {
	return &SHA512{}
}

// Hash implements Hasher. Cancellation is checked before the file is opened;
// an individual file is always hashed to completion once started.
func (h *SHA512) Hash(ctx context.Context, absPath string, isBig bool) (string, time.Duration, error) {
	if err := ctx.Err(); err != nil {
		return "", 0, err
	}

	now := h.now
	if now == nil {
		now = time.Now
	}
	start := now()

	f, err := os.Open(absPath)
	if err != nil {
		return "", 0, fmt.Errorf("hash %s: %w", absPath, err)
	}
	defer f.Close()

	size := h.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}

	d := sha512.New()
	if _, err := io.CopyBuffer(d, f, make([]byte, size)); err != nil {
		return "", 0, fmt.Errorf("hash %s: %w", absPath, err)
	}

	var elapsed time.Duration
	if isBig {
		elapsed = now().Sub(start)
	}
	return hex.EncodeToString(d.Sum(nil)), elapsed, nil
}

// Bytes returns the hex SHA-512 of an in-memory buffer.
func Bytes(data []byte) string {
	sum := sha512.Sum512(data)
	return hex.EncodeToString(sum[:])
}
