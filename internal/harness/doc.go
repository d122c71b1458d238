// Package harness runs merge scenarios described in YAML.
//
// A scenario lays out a source and a destination tree, runs one merge over a
// fresh ledger, and checks the outcome of every source file. The plan text,
// with both roots replaced by $SRC and $DST, can be compared against a golden
// file.
//
// # Scenario Format
//
//	name: four_outcomes
//	description: "One file of each outcome"
//	mode: copy
//	verbose: false
//	source:
//	  src/a.txt: "a"
//	dest:
//	  src/a.txt: "a"
//	locked:
//	  - src/busy.txt
//	expect:
//	  outcomes:
//	    src/a.txt: exists_exact
//	  counts:
//	    exists_exact: 1
//	  skipped:
//	    - src/busy.txt
//
// Locked paths are relative to the source root and are reported as held by
// another process. Counts and outcomes are subset matches; skipped is exact.
//
// Every scenario uses a fixed run id so plans are reproducible.
package harness
