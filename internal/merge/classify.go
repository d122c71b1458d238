package merge

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/roach88/hashfold/internal/ir"
	"github.com/roach88/hashfold/internal/ledger"
)

// Outcome is the classification of one source file against the destination.
type Outcome int

const (
	OutcomeExact Outcome = iota
	OutcomeConflict
	OutcomeElsewhere
	OutcomeAbsent
)

// Outcomes lists every outcome in report order.
var Outcomes = []Outcome{OutcomeExact, OutcomeConflict, OutcomeElsewhere, OutcomeAbsent}

// String returns the name used in plan comments.
func (o Outcome) String() string {
	switch o {
	case OutcomeExact:
		return "exists_exact"
	case OutcomeConflict:
		return "conflict"
	case OutcomeElsewhere:
		return "exists_elsewhere"
	case OutcomeAbsent:
		return "does_not_exist"
	default:
		return fmt.Sprintf("Outcome(%d)", int(o))
	}
}

// DestState is what the destination holds at the source's relative path.
type DestState struct {
	Exists bool
	Hash   string
}

// Classify decides the outcome for a source file with hash srcHash, given the
// destination state at the same relative path and the destination paths
// already holding the same content. It is total over its inputs.
func Classify(srcHash string, dest DestState, elsewhere []string) Outcome {
	if dest.Exists {
		if dest.Hash == srcHash {
			return OutcomeExact
		}
		return OutcomeConflict
	}
	if len(elsewhere) > 0 {
		return OutcomeElsewhere
	}
	return OutcomeAbsent
}

// Result is the classification of one source file.
type Result struct {
	Path       string    `json:"path"`
	Source     string    `json:"source"`
	Dest       string    `json:"dest"`
	SourceHash string    `json:"sha512"`
	Outcome    Outcome   `json:"-"`
	Name       string    `json:"outcome"`
	Elsewhere  []string  `json:"elsewhere,omitempty"`
	Dst        DestState `json:"-"`
}

// Ledger is the part of the ledger the classifier needs.
type Ledger interface {
	Record(ctx context.Context, root ir.RootID, rel string) (ledger.RecordStatus, error)
	Lookup(ctx context.Context, root ir.RootID, rel string) (ir.FileEvent, error)
	FindPaths(ctx context.Context, hash string, root ir.RootID, prefix string) ([]string, error)
}

// ErrNotAccessible reports a source file whose hash could not be obtained,
// usually because another process holds it locked.
var ErrNotAccessible = errors.New("merge: source not accessible")

// Classifier compares source files against one destination root.
type Classifier struct {
	ledger Ledger
	src    ir.RootID
	dst    ir.RootID
}

// NewClassifier returns a Classifier for the given registered roots.
func NewClassifier(l Ledger, src, dst ir.RootID) *Classifier {
	return &Classifier{ledger: l, src: src, dst: dst}
}

// Compare classifies the source file at rel. Both sides are recorded on demand
// so their hashes come from the ledger.
func (c *Classifier) Compare(ctx context.Context, rel string) (Result, error) {
	res := Result{
		Path:   rel,
		Source: ir.AbsPath(c.src, rel),
		Dest:   ir.AbsPath(c.dst, rel),
	}

	srcHash, err := c.hash(ctx, c.src, rel)
	if err != nil {
		return res, err
	}
	if srcHash == "" {
		return res, fmt.Errorf("%w: %s", ErrNotAccessible, res.Source)
	}
	res.SourceHash = srcHash

	info, err := os.Stat(res.Dest)
	switch {
	case err == nil && info.Mode().IsRegular():
		res.Dst.Exists = true
		res.Dst.Hash, err = c.hash(ctx, c.dst, rel)
		if err != nil {
			return res, err
		}
	case err == nil:
		// a directory or device at the same path still occupies it
		res.Dst.Exists = true
	case !errors.Is(err, fs.ErrNotExist):
		return res, fmt.Errorf("compare %s: %w", res.Dest, err)
	}

	if !res.Dst.Exists {
		res.Elsewhere, err = c.ledger.FindPaths(ctx, srcHash, c.dst, "")
		if err != nil {
			return res, fmt.Errorf("compare %s: %w", rel, err)
		}
	}

	res.Outcome = Classify(srcHash, res.Dst, res.Elsewhere)
	res.Name = res.Outcome.String()
	return res, nil
}

// hash records rel under root and returns its current hash. A file that is
// locked and has never been recorded yields an empty hash.
func (c *Classifier) hash(ctx context.Context, root ir.RootID, rel string) (string, error) {
	if _, err := c.ledger.Record(ctx, root, rel); err != nil {
		return "", err
	}
	ev, err := c.ledger.Lookup(ctx, root, rel)
	if errors.Is(err, ledger.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return ev.Hash, nil
}
