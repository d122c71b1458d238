package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/roach88/hashfold/internal/ir"
	"github.com/roach88/hashfold/internal/ledger"
)

// progress prints a running file count while scanning. It is silent unless
// the writer is a terminal.
type progress struct {
	w       io.Writer
	enabled bool
	count   int
}

func newProgress(w io.Writer) *progress {
	p := &progress{w: w}
	if f, ok := w.(*os.File); ok {
		p.enabled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return p
}

// onRecord is a ledger.WithOnRecord callback.
func (p *progress) onRecord(root ir.RootID, _ string, _ ledger.RecordStatus) {
	p.count++
	if p.enabled && p.count%100 == 0 {
		fmt.Fprintf(p.w, "\r%s: %d files", root, p.count)
	}
}

// done clears the progress line.
func (p *progress) done() {
	if p.enabled && p.count >= 100 {
		fmt.Fprint(p.w, "\r\033[K")
	}
	p.count = 0
}
