package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgxConn is the common surface of *pgxpool.Pool and pgx.Tx.
type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type PGGateway struct {
	pool *pgxpool.Pool
	m    *Metrics
}

func OpenPostgres(ctx context.Context, dsn string, maxConns int32, m *Metrics) (*PGGateway, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = maxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PGGateway{pool: pool, m: m}, nil
}

func NewPGGateway(pool *pgxpool.Pool, m *Metrics) *PGGateway { return &PGGateway{pool: pool, m: m} }

func (g *PGGateway) Dialect() Dialect { return Postgres }

func (g *PGGateway) querier(c pgxConn) pgQuerier { return pgQuerier{c: c, m: g.m} }

func (g *PGGateway) QueryRow(ctx context.Context, query string, args ...any) Scanner {
	return g.querier(g.pool).QueryRow(ctx, query, args...)
}

func (g *PGGateway) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return g.querier(g.pool).Query(ctx, query, args...)
}

func (g *PGGateway) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return g.querier(g.pool).Exec(ctx, query, args...)
}

func (g *PGGateway) InTx(ctx context.Context, fn func(q Querier) error) (err error) {
	start := time.Now()
	defer func() { g.m.observe(Postgres, "tx", start, err) }()

	tx, err := g.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(g.querier(tx)); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", classifyPG(err))
	}
	return nil
}

func (g *PGGateway) Ping(ctx context.Context) error { return g.pool.Ping(ctx) }

func (g *PGGateway) Close() { g.pool.Close() }

type pgQuerier struct {
	c pgxConn
	m *Metrics
}

func (q pgQuerier) QueryRow(ctx context.Context, query string, args ...any) Scanner {
	return &pgRow{row: q.c.QueryRow(ctx, Rebind(query), args...), m: q.m, start: time.Now()}
}

func (q pgQuerier) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	start := time.Now()
	rows, err := q.c.Query(ctx, Rebind(query), args...)
	err = classifyPG(err)
	q.m.observe(Postgres, "query", start, err)
	if err != nil {
		return nil, err
	}
	return pgRows{rows}, nil
}

func (q pgQuerier) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	start := time.Now()
	tag, err := q.c.Exec(ctx, Rebind(query), args...)
	err = classifyPG(err)
	q.m.observe(Postgres, "exec", start, err)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

type pgRow struct {
	row   pgx.Row
	m     *Metrics
	start time.Time
}

func (r *pgRow) Scan(dest ...any) error {
	err := classifyPG(r.row.Scan(dest...))
	r.m.observe(Postgres, "query_row", r.start, err)
	return err
}

type pgRows struct{ pgx.Rows }

func (r pgRows) Scan(dest ...any) error { return classifyPG(r.Rows.Scan(dest...)) }
func (r pgRows) Err() error             { return classifyPG(r.Rows.Err()) }

func classifyPG(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNoRows
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.ConstraintName)
		case "23514":
			return fmt.Errorf("%w: %s", ErrCheckViolation, pgErr.ConstraintName)
		case "23503":
			return fmt.Errorf("%w: %s", ErrForeignKeyViolation, pgErr.ConstraintName)
		case "23502":
			return fmt.Errorf("%w: %s", ErrNotNullViolation, pgErr.ColumnName)
		}
	}
	return err
}

// Rebind rewrites "?" placeholders as $1, $2, ... outside quoted literals.
func Rebind(query string) string {
	if !strings.Contains(query, "?") {
		return query
	}
	var sb strings.Builder
	sb.Grow(len(query) + 8)
	n := 0
	inQuote := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inQuote = !inQuote
			sb.WriteByte(c)
		case c == '?' && !inQuote:
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
