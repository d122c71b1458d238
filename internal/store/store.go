package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Single-root schema (files and hashperf without absroot)
// 1 - Multi-root: roots table, absroot columns
const currentSchemaVersion = 1

// Querier is the subset of *sql.DB and *sql.Tx the repositories need.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store provides durable storage for the ledger.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and migrations automatically.
//
// This function is idempotent - safe to call multiple times.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// WithTx runs fn inside a transaction. The transaction commits if fn returns
// nil and rolls back otherwise, so everything fn writes persists together or
// not at all.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Reinitialize drops every table and recreates an empty schema. All ledger
// history is lost.
func (s *Store) Reinitialize(ctx context.Context) error {
	for _, table := range []string{"files", "hashperf", "common", "roots"} {
		if _, err := s.db.ExecContext(ctx, "DROP TABLE IF EXISTS "+table); err != nil {
			return fmt.Errorf("reinitialize: drop %s: %w", table, err)
		}
	}
	if _, err := s.db.ExecContext(ctx, "PRAGMA user_version = 0"); err != nil {
		return fmt.Errorf("reinitialize: reset user_version: %w", err)
	}
	if err := applySchema(s.db); err != nil {
		return fmt.Errorf("reinitialize: %w", err)
	}
	return nil
}

// Roots returns the roots repository over the store's connection.
func (s *Store) Roots() RootRepo { return RootRepo{q: s.db} }

// Common returns the common metadata repository over the store's connection.
func (s *Store) Common() CommonRepo { return CommonRepo{q: s.db} }

// Files returns the file event repository over the store's connection.
func (s *Store) Files() FileRepo { return FileRepo{q: s.db} }

// HashPerf returns the hash timing repository over the store's connection.
func (s *Store) HashPerf() HashPerfRepo { return HashPerfRepo{q: s.db} }

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema runs migrations and then creates any missing tables and
// indexes. Migrations come first because the schema's indexes reference
// columns that v0 tables lack. This function is idempotent.
func applySchema(db *sql.DB) error {
	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if err := migrateToV1(db); err != nil {
			return err
		}
	}

	return nil
}

// migrateToV1 adds the absroot column to v0 files and hashperf tables. Rows
// keep an empty absroot until the ledger adopts them for the legacy root.
// The v0 hashperf table is keyed by path alone, so it is rebuilt with the
// (absroot, path) key instead of altered. Fresh databases have no tables yet
// and are left to schema.sql.
func migrateToV1(db *sql.DB) error {
	has, err := legacyTable(db, "files")
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	if has {
		if _, err := db.Exec("ALTER TABLE files ADD COLUMN absroot TEXT NOT NULL DEFAULT ''"); err != nil {
			return fmt.Errorf("migrate to v1: add files.absroot: %w", err)
		}
	}

	has, err = legacyTable(db, "hashperf")
	if err != nil {
		return fmt.Errorf("migrate to v1: %w", err)
	}
	if has {
		if err := rebuildHashPerf(db); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}
	return nil
}

// legacyTable reports whether table exists without an absroot column.
func legacyTable(db *sql.DB, table string) (bool, error) {
	exists, err := tableExists(db, table)
	if err != nil || !exists {
		return false, err
	}
	has, err := columnExists(db, table, "absroot")
	if err != nil {
		return false, err
	}
	return !has, nil
}

func rebuildHashPerf(db *sql.DB) (err error) {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin hashperf rebuild: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmts := []string{
		`CREATE TABLE hashperf_v1 (
			absroot TEXT NOT NULL DEFAULT '',
			path    TEXT NOT NULL,
			time    REAL NOT NULL,
			PRIMARY KEY (absroot, path)
		)`,
		`INSERT INTO hashperf_v1 (absroot, path, time) SELECT '', path, time FROM hashperf`,
		`DROP TABLE hashperf`,
		`ALTER TABLE hashperf_v1 RENAME TO hashperf`,
	}
	for _, stmt := range stmts {
		if _, err = tx.Exec(stmt); err != nil {
			return fmt.Errorf("rebuild hashperf: %w", err)
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit hashperf rebuild: %w", err)
	}
	return nil
}

func tableExists(db *sql.DB, name string) (bool, error) {
	var count int
	err := db.QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = ?", name,
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("look up table %s: %w", name, err)
	}
	return count > 0, nil
}

func columnExists(db *sql.DB, table, column string) (bool, error) {
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		return false, fmt.Errorf("table info %s: %w", table, err)
	}
	defer rows.Close()

	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return false, fmt.Errorf("scan table info %s: %w", table, err)
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := s.db.QueryRow(query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
