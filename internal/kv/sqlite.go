package kv

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/sharejoy/internal/dbx"

	_ "modernc.org/sqlite"
)

var sqliteQueries = queries{
	get: `SELECT value FROM kv WHERE key = ?`,
	set: `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`,
	delete:    `DELETE FROM kv WHERE key = ?`,
	casUpdate: `UPDATE kv SET value = ? WHERE key = ? AND value = ?`,
	casInsert: `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value WHERE kv.value = ''
	`,
}

// SQLiteStorage is the on-device backend: a single SQLite file.
type SQLiteStorage struct {
	sqlStorage
}

// NewSQLiteStorage wraps an already migrated database handle.
func NewSQLiteStorage(db dbx.DBTX) *SQLiteStorage {
	return &SQLiteStorage{sqlStorage{db: db, q: sqliteQueries}}
}

// OpenSQLite opens (creating if needed) the SQLite database at dsn, runs the
// migrations and returns the storage together with the *sql.DB to close.
//
// The pool is limited to one connection: SQLite has a single writer and
// ":memory:" databases are per connection.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStorage, *sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, nil, err
	}
	db.SetMaxOpenConns(1)

	if err := RunMigrations(ctx, db, "sqlite3", "sqlite"); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return NewSQLiteStorage(db), db, nil
}
