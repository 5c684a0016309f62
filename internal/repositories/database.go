package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Database is the query surface repositories need. *pgxpool.Pool, pgx.Tx and
// pgxmock all satisfy it, so the same repository code runs against the pool,
// inside a transaction, or under test.
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxDatabase additionally opens transactions. Services that need an atomic
// unit take this and build transaction-scoped repositories from the pgx.Tx.
type TxDatabase interface {
	Database
	Begin(ctx context.Context) (pgx.Tx, error)
}
