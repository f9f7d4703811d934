// Package repo maps game package entities to and from SQLite rows and
// exposes the scoped finders the phase coordinator, scorer, and submission
// service need (pending-by-round, pattern-hash lookup, scoreboard). No
// repository method here acquires the store's write lock directly — writes
// are always handed a transaction by the caller (store.Store.Transaction),
// which is the only place the lock is taken.
package repo

import "database/sql"

// Execer is satisfied by both *sql.DB and *sql.Tx, letting every repository
// function run either as a standalone read or inside a caller-managed
// transaction.
type Execer interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}
