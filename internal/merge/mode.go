package merge

import "strings"

// Mode selects what a merge run does with files missing from the
// destination.
type Mode int

const (
	ModeUndefined Mode = iota
	ModeAnalyze
	ModeCopy
	ModeMove
)

// ParseMode maps a name to a Mode by its first letter, so "c", "copy" and
// "Copy" are equivalent. Anything unrecognised is ModeUndefined.
func ParseMode(s string) Mode {
	if s == "" {
		return ModeUndefined
	}
	switch strings.ToLower(s[:1]) {
	case "c":
		return ModeCopy
	case "m":
		return ModeMove
	case "a":
		return ModeAnalyze
	default:
		return ModeUndefined
	}
}

// String returns the mode name. Analyze is reported as "finddup".
func (m Mode) String() string {
	switch m {
	case ModeAnalyze:
		return "finddup"
	case ModeCopy:
		return "copy"
	case ModeMove:
		return "move"
	default:
		return "undefined"
	}
}

// Valid reports whether m is a mode a run can execute.
func (m Mode) Valid() bool {
	return m == ModeAnalyze || m == ModeCopy || m == ModeMove
}

// writesPlan reports whether the mode emits plan lines.
func (m Mode) writesPlan() bool {
	return m == ModeCopy || m == ModeMove
}
