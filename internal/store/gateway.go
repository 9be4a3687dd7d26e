// Package store is the persistence gateway: one parameterized statement at a time, with
// commit/rollback scoped to a single operation. Every operation gets its own pooled
// connection (or transaction); no cursor is shared between callers.
package store

import (
	"context"
	"errors"
)

var (
	ErrNoRows              = errors.New("store: no rows in result set")
	ErrUniqueViolation     = errors.New("store: unique constraint violated")
	ErrCheckViolation      = errors.New("store: check constraint violated")
	ErrForeignKeyViolation = errors.New("store: foreign key constraint violated")
	ErrNotNullViolation    = errors.New("store: not null constraint violated")
)

type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// Scanner is satisfied by a single row and by a rows cursor.
type Scanner interface {
	Scan(dest ...any) error
}

type Rows interface {
	Scanner
	Next() bool
	Err() error
	Close()
}

// Querier runs statements written with "?" placeholders.
type Querier interface {
	QueryRow(ctx context.Context, query string, args ...any) Scanner
	Query(ctx context.Context, query string, args ...any) (Rows, error)
	Exec(ctx context.Context, query string, args ...any) (int64, error)
}

type Gateway interface {
	Querier
	// InTx runs fn inside one transaction; fn's error (or a failed commit) rolls it back.
	InTx(ctx context.Context, fn func(q Querier) error) error
	Ping(ctx context.Context) error
	Dialect() Dialect
	Close()
}

type ScanFunc[T any] func(Scanner) (T, error)

// One returns nil, nil when the statement yields no row.
func One[T any](ctx context.Context, q Querier, scan ScanFunc[T], query string, args ...any) (*T, error) {
	v, err := scan(q.QueryRow(ctx, query, args...))
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

// Many returns the rows in storage order, never nil.
func Many[T any](ctx context.Context, q Querier, scan ScanFunc[T], query string, args ...any) ([]T, error) {
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]T, 0)
	for rows.Next() {
		v, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}
