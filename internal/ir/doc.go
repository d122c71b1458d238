// Package ir provides the value types shared by every hashfold package.
//
// This package contains type definitions and small pure helpers only. All
// other internal packages import ir; ir imports nothing internal.
//
// Key design constraints:
//   - FileEvent values are immutable snapshots; the ledger never updates one
//   - Seq is a ledger-wide logical clock, never a wall-clock timestamp
//   - Relative paths always use forward slashes, regardless of OS
//   - All JSON tags use snake_case
package ir
