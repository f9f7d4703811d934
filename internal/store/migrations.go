package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// columnExists checks whether a column exists on a table.
func (s *Store) columnExists(table, column string) (bool, error) {
	rows, err := s.conn.Query(fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return false, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			cid       int
			name      string
			ctype     string
			notnull   int
			dfltValue sql.NullString
			pk        int
		)
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return false, err
		}
		if name == column {
			return true, nil
		}
	}
	return false, rows.Err()
}

// addColumnIfAbsent runs an ALTER TABLE ... ADD COLUMN, tolerating the
// "duplicate column" failure so reruns against an already-migrated database
// are safe. This mirrors the additive migration pattern used for schema
// evolution: existing data is never dropped or rewritten in place.
func (s *Store) addColumnIfAbsent(table, column, ddl string) error {
	exists, err := s.columnExists(table, column)
	if err != nil {
		return fmt.Errorf("check column %s.%s: %w", table, column, err)
	}
	if exists {
		return nil
	}
	_, err = s.conn.Exec(fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s", table, ddl))
	if err != nil && !strings.Contains(err.Error(), "duplicate column") {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}

// getSchemaVersion returns the current schema version, defaulting to 0 for a
// database that predates the schema_info table.
func (s *Store) getSchemaVersion() (int, error) {
	var v int
	err := s.conn.QueryRow("SELECT value FROM schema_info WHERE key = 'version'").Scan(&v)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return v, nil
}

func (s *Store) setSchemaVersion(v int) error {
	_, err := s.conn.Exec(
		"INSERT INTO schema_info (key, value) VALUES ('version', ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		fmt.Sprintf("%d", v),
	)
	return err
}

// migration describes one additive schema change, keyed by the version it
// brings the database to.
type migration struct {
	version int
	apply   func(s *Store) error
}

// migrations lists schema evolutions in order. CREATE TABLE IF NOT EXISTS in
// schema.go already brings a fresh database to SchemaVersion; entries here
// exist to carry an existing database from an older version forward without
// losing data, using the add-column-if-absent pattern throughout.
var migrations = []migration{
	{
		version: 1,
		apply: func(s *Store) error {
			// Baseline: schema.go's CREATE TABLE statements already define
			// every column at version 1. Nothing to add-if-absent yet; this
			// entry exists so the version ledger has a row to bootstrap
			// from and future columns have a documented precedent to follow.
			return nil
		},
	},
}

// runMigrations advances the database from its recorded version to
// SchemaVersion, applying each migration's additive changes in order.
func (s *Store) runMigrations() error {
	current, err := s.getSchemaVersion()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}
		if err := m.apply(s); err != nil {
			return fmt.Errorf("migration %d: %w", m.version, err)
		}
		if err := s.setSchemaVersion(m.version); err != nil {
			return fmt.Errorf("set schema version %d: %w", m.version, err)
		}
	}
	return nil
}
