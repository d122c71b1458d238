// Package compression wraps zstd streams for ledger exports.
package compression

import (
	"io"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// Extension marks a zstd-compressed file.
const Extension = ".zst"

// IsCompressedName reports whether path names a zstd file.
func IsCompressedName(path string) bool {
	return strings.HasSuffix(strings.ToLower(path), Extension)
}

// Level maps a small integer to a zstd encoder level: 1 fastest, 2 default,
// 3 better compression. Anything else is the default.
func Level(level int) zstd.EncoderLevel {
	switch level {
	case 1:
		return zstd.SpeedFastest
	case 3:
		return zstd.SpeedBetterCompression
	default:
		return zstd.SpeedDefault
	}
}

// NewWriter returns a zstd writer over w. Close flushes the frame but does
// not close w.
func NewWriter(w io.Writer, level int) (io.WriteCloser, error) {
	return zstd.NewWriter(w,
		zstd.WithEncoderLevel(Level(level)),
		zstd.WithEncoderConcurrency(1),
	)
}

// NewReader returns a zstd reader over r.
func NewReader(r io.Reader) (io.ReadCloser, error) {
	d, err := zstd.NewReader(r, zstd.WithDecoderConcurrency(1))
	if err != nil {
		return nil, err
	}
	return d.IOReadCloser(), nil
}
