// Package merge compares a source tree against a destination tree and writes
// a plan for bringing the source's content into the destination.
//
// Every source file is classified by content against the destination:
//
//	Exact      same relative path, same hash
//	Conflict   same relative path, different hash
//	Elsewhere  not at the same path, but the content exists under the destination
//	Absent     the content exists nowhere under the destination
//
// Hashes come from the ledger, which records files on demand, so a second
// run over unchanged trees hashes nothing. The plan is a line-oriented script:
// only Absent files get an action line ("copy src dst" or "move src dst");
// everything else is a "REM" comment. Planning never touches either tree.
package merge
