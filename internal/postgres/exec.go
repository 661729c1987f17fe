package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is satisfied by *pgxpool.Pool, pgx.Tx and pgxmock.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Executor runs parameterized statements and translates failures.
// Values are always bound as parameters, never spliced into SQL text.
type Executor struct {
	q     Querier
	check func(context.Context) error
}

func (e *Executor) ready(ctx context.Context) error {
	if e.check == nil {
		return nil
	}
	return e.check(ctx)
}

// Exec runs a statement and returns the number of affected rows.
func (e *Executor) Exec(ctx context.Context, op, sql string, args ...any) (int64, error) {
	if err := e.ready(ctx); err != nil {
		return 0, err
	}
	tag, err := e.q.Exec(ctx, sql, args...)
	if err != nil {
		return 0, Translate(op, err)
	}
	return tag.RowsAffected(), nil
}

// Row scans the first row into dest. found is false when there is no row.
func (e *Executor) Row(ctx context.Context, op, sql string, args []any, dest ...any) (found bool, err error) {
	if err := e.ready(ctx); err != nil {
		return false, err
	}
	if err := e.q.QueryRow(ctx, sql, args...).Scan(dest...); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, Translate(op, err)
	}
	return true, nil
}

// Select maps every row with scan. The row set is closed on every path,
// including when scan rejects a row.
func Select[T any](ctx context.Context, e *Executor, op, sql string, args []any, scan pgx.RowToFunc[T]) ([]T, error) {
	if err := e.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := e.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, Translate(op, err)
	}
	out, err := pgx.CollectRows(rows, scan)
	if err != nil {
		return nil, Translate(op, err)
	}
	return out, nil
}
