package postgres

import (
	"context"
	"database/sql"
)

// fakeDBTX satisfies store.DBTX for tests that only exercise SQL
// generation and never execute a query.
type fakeDBTX struct{}

func (fakeDBTX) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, sql.ErrConnDone
}

func (fakeDBTX) PrepareContext(context.Context, string) (*sql.Stmt, error) {
	return nil, sql.ErrConnDone
}

func (fakeDBTX) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, sql.ErrConnDone
}

func (fakeDBTX) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}
