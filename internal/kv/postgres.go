package kv

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/sharejoy/internal/dbx"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var postgresQueries = queries{
	get: `SELECT value FROM kv WHERE key = $1`,
	set: `
		INSERT INTO kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = now()
	`,
	delete:    `DELETE FROM kv WHERE key = $1`,
	casUpdate: `UPDATE kv SET value = $1, updated_at = now() WHERE key = $2 AND value = $3`,
	casInsert: `
		INSERT INTO kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = now() WHERE kv.value = ''
	`,
}

// PostgresStorage keeps the store in a shared PostgreSQL database so several
// devices can work against the same accounts.
type PostgresStorage struct {
	sqlStorage
}

func NewPostgresStorage(db dbx.DBTX) *PostgresStorage {
	return &PostgresStorage{sqlStorage{db: db, q: postgresQueries}}
}

// OpenPostgres connects through the pgx stdlib driver and runs migrations.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresStorage, *sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	if err := RunMigrations(ctx, db, "pgx", "postgres"); err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	return NewPostgresStorage(db), db, nil
}
