// Package store provides the embedded SQLite persistence layer for Bones:
// connection management, WAL configuration, schema migrations, and the
// single transactional primitive every write path funnels through.
package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const dbFile = "bones.db"

// Store wraps the single writer connection to the game's SQLite database.
type Store struct {
	conn    *sql.DB
	dataDir string
}

// openConn opens a SQLite connection with safe defaults for single-writer access.
func openConn(dbPath string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports exactly one writer; pinning the pool to one connection
	// keeps the driver from opening a second connection that would corrupt
	// the WAL/SHM files under concurrent access from this process.
	conn.SetMaxOpenConns(1)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := conn.Exec("PRAGMA busy_timeout=5000"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	conn.Exec("PRAGMA synchronous=NORMAL")

	return conn, nil
}

// Open opens (creating if absent) the SQLite database under dataDir and runs
// any pending migrations. Table/column creation is idempotent, so Open is
// safe to call against an existing database.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	dbPath := filepath.Join(dataDir, dbFile)

	conn, err := openConn(dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := conn.Exec(schema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	s := &Store{conn: conn, dataDir: dataDir}
	if err := s.runMigrations(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	slog.Debug("store opened", "path", dbPath)
	return s, nil
}

// Close flushes the WAL back into the main database file and closes the
// connection. The checkpoint is best-effort: a failure here should not mask
// whatever error the caller is already propagating.
func (s *Store) Close() error {
	s.conn.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.conn.Close()
}

// DataDir returns the directory holding the database file and its lock.
func (s *Store) DataDir() string {
	return s.dataDir
}

// Transaction runs fn within a SQL transaction guarded by the process-wide
// write lock (see lock.go). fn's error, if any, triggers a rollback;
// otherwise the transaction commits. This is the only primitive through
// which multi-statement writes are allowed to reach the database — it
// eliminates the TOCTOU window between "check a row" and "mutate it".
func (s *Store) Transaction(fn func(tx *sql.Tx) error) error {
	return s.withWriteLock(func() error {
		tx, err := s.conn.Begin()
		if err != nil {
			return fmt.Errorf("begin transaction: %w", err)
		}
		defer tx.Rollback() // no-op once committed

		if err := fn(tx); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// Conn exposes the raw connection for read-only queries that don't need
// transactional guarantees (repository finders). Writes must go through
// Transaction.
func (s *Store) Conn() *sql.DB {
	return s.conn
}
