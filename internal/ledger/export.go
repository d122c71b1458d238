package ledger

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/roach88/hashfold/internal/ir"
)

// Export writes every event in the log to w as newline-delimited JSON, in
// sequence order, and returns the number of events written.
func (l *Ledger) Export(ctx context.Context, w io.Writer) (int64, error) {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)

	var n int64
	err := l.st.Files().ForEach(ctx, func(ev ir.FileEvent) error {
		if err := enc.Encode(ev); err != nil {
			return err
		}
		n++
		return nil
	})
	if err != nil {
		return n, fmt.Errorf("export: %w", err)
	}
	if err := bw.Flush(); err != nil {
		return n, fmt.Errorf("export: %w", err)
	}
	return n, nil
}
