package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sharejoy/internal/dbx"
	"github.com/dmitrijs2005/sharejoy/internal/kv/migrations"
	"github.com/pressly/goose/v3"
)

// queries holds one dialect's statements. casUpdate takes (value, key, old);
// casInsert takes (key, value) and only overwrites an empty value.
type queries struct {
	get       string
	set       string
	delete    string
	casUpdate string
	casInsert string
}

// sqlStorage implements Storage over a single kv table. The SQLite and
// Postgres backends differ only in placeholders and migrations.
type sqlStorage struct {
	db dbx.DBTX
	q  queries
}

func (r *sqlStorage) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, r.q.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get kv[%s]: %w", key, err)
	}
	return value, true, nil
}

func (r *sqlStorage) Set(ctx context.Context, key, value string) error {
	if _, err := r.db.ExecContext(ctx, r.q.set, key, value); err != nil {
		return fmt.Errorf("failed to set kv[%s]: %w", key, err)
	}
	return nil
}

func (r *sqlStorage) Delete(ctx context.Context, key string) error {
	if _, err := r.db.ExecContext(ctx, r.q.delete, key); err != nil {
		return fmt.Errorf("failed to delete kv[%s]: %w", key, err)
	}
	return nil
}

// CompareAndSet relies on the row lock taken by UPDATE/upsert: a concurrent
// writer waits for the first one to commit and then no longer matches old.
func (r *sqlStorage) CompareAndSet(ctx context.Context, key, old, value string) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if old == "" {
		res, err = r.db.ExecContext(ctx, r.q.casInsert, key, value)
	} else {
		res, err = r.db.ExecContext(ctx, r.q.casUpdate, value, key, old)
	}
	if err != nil {
		return false, fmt.Errorf("failed to compare-and-set kv[%s]: %w", key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to compare-and-set kv[%s]: %w", key, err)
	}
	return n == 1, nil
}

// Atomically runs fn in a database transaction. A handle that is already a
// transaction runs fn directly.
func (r *sqlStorage) Atomically(ctx context.Context, fn func(ctx context.Context, s Storage) error) error {
	db, ok := r.db.(*sql.DB)
	if !ok {
		return fn(ctx, r)
	}
	return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, &sqlStorage{db: tx, q: r.q})
	})
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations of the given dialect
// ("sqlite3" or "pgx") found in dir.
func RunMigrations(ctx context.Context, db *sql.DB, dialect, dir string) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, dir); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}
