package merge

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Planner writes plan lines. In analyze mode it writes nothing.
type Planner struct {
	w    *bufio.Writer
	mode Mode
}

// NewPlanner returns a Planner writing to w for the given mode.
func NewPlanner(w io.Writer, mode Mode) *Planner {
	return &Planner{w: bufio.NewWriter(w), mode: mode}
}

// Header writes the run id and both roots as comments.
func (p *Planner) Header(runID, source, dest string) error {
	if !p.mode.writesPlan() {
		return nil
	}
	_, err := fmt.Fprintf(p.w, "REM run %s\nREM source %s\nREM dest %s\n", runID, source, dest)
	return err
}

// Write emits the line for one classified file: an action for Absent, a
// comment for everything else.
func (p *Planner) Write(r Result) error {
	if !p.mode.writesPlan() {
		return nil
	}
	if r.Outcome == OutcomeAbsent {
		_, err := fmt.Fprintf(p.w, "%s %s %s\n", p.mode, r.Source, r.Dest)
		return err
	}
	_, err := fmt.Fprintf(p.w, "REM %s %s %s\n", r.Outcome, r.Source, r.Dest)
	return err
}

// Skip emits a comment for a source file that could not be classified.
func (p *Planner) Skip(source, dest string) error {
	if !p.mode.writesPlan() {
		return nil
	}
	_, err := fmt.Fprintf(p.w, "REM not_accessible %s %s\n", source, dest)
	return err
}

// Flush writes any buffered lines.
func (p *Planner) Flush() error {
	return p.w.Flush()
}

// OpenPlanFile creates (or truncates) the plan file at path.
func OpenPlanFile(path string) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, NewOutputOpenError(path, err)
	}
	return f, nil
}
