package store

import (
	"context"
	"database/sql"
)

// DBTX is the query surface the stores are written against. Both
// *sql.DB and *sql.Tx satisfy it, so the same store code runs directly
// or inside a RunInTransaction scope via WithTx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
