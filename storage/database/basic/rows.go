package basic

import (
	"context"
	"database/sql"

	core "auditrail/storage/database"
)

// Rows 包装 *sql.Rows
type Rows struct {
	rows *sql.Rows
}

func (r *Rows) Next() bool            { return r.rows.Next() }
func (r *Rows) Scan(dest ...any) error { return r.rows.Scan(dest...) }
func (r *Rows) Close() error          { return r.rows.Close() }
func (r *Rows) Err() error            { return r.rows.Err() }

// Row 包装 *sql.Row
type Row struct {
	row *sql.Row
}

func (r *Row) Scan(dest ...any) error { return r.row.Scan(dest...) }

// Tx 事务实现，复用 IDatabase 语义
type Tx struct {
	tx *sql.Tx
}

func (t *Tx) Query(ctx context.Context, query string, args ...any) (core.IRows, error) {
	rows, err := t.tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return &Rows{rows: rows}, nil
}

func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) core.IRow {
	return &Row{row: t.tx.QueryRowContext(ctx, query, args...)}
}

func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, query, args...)
}

// Begin 事务内不支持嵌套事务，返回自身
func (t *Tx) Begin(ctx context.Context) (core.ITransaction, error) { return t, nil }

func (t *Tx) Ping(ctx context.Context) error { return nil }
func (t *Tx) Close() error                   { return nil }
func (t *Tx) Raw() any                       { return t.tx }

func (t *Tx) Commit() error   { return t.tx.Commit() }
func (t *Tx) Rollback() error { return t.tx.Rollback() }
