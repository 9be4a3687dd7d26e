package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// sqlConn is the common surface of *sql.DB and *sql.Tx.
type sqlConn interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// SQLiteGateway backs local runs and tests. SQLite allows one writer, so the pool holds a
// single connection and operations queue on it one at a time.
type SQLiteGateway struct {
	db *sql.DB
	m  *Metrics
}

func OpenSQLite(path string, m *Metrics) (*SQLiteGateway, error) {
	if path == "" {
		path = "taller.db"
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, fmt.Errorf("create dirs: %w", err)
	}
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_time_format=sqlite"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &SQLiteGateway{db: db, m: m}, nil
}

func (g *SQLiteGateway) Dialect() Dialect { return SQLite }

func (g *SQLiteGateway) querier(c sqlConn) sqlQuerier { return sqlQuerier{c: c, m: g.m} }

func (g *SQLiteGateway) QueryRow(ctx context.Context, query string, args ...any) Scanner {
	return g.querier(g.db).QueryRow(ctx, query, args...)
}

func (g *SQLiteGateway) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	return g.querier(g.db).Query(ctx, query, args...)
}

func (g *SQLiteGateway) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	return g.querier(g.db).Exec(ctx, query, args...)
}

func (g *SQLiteGateway) InTx(ctx context.Context, fn func(q Querier) error) (err error) {
	start := time.Now()
	defer func() { g.m.observe(SQLite, "tx", start, err) }()

	tx, err := g.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(g.querier(tx)); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", classifySQLite(err))
	}
	return nil
}

func (g *SQLiteGateway) Ping(ctx context.Context) error { return g.db.PingContext(ctx) }

func (g *SQLiteGateway) Close() { _ = g.db.Close() }

type sqlQuerier struct {
	c sqlConn
	m *Metrics
}

func (q sqlQuerier) QueryRow(ctx context.Context, query string, args ...any) Scanner {
	return &sqlRow{row: q.c.QueryRowContext(ctx, query, args...), m: q.m, start: time.Now()}
}

func (q sqlQuerier) Query(ctx context.Context, query string, args ...any) (Rows, error) {
	start := time.Now()
	rows, err := q.c.QueryContext(ctx, query, args...)
	err = classifySQLite(err)
	q.m.observe(SQLite, "query", start, err)
	if err != nil {
		return nil, err
	}
	return sqlRows{rows}, nil
}

func (q sqlQuerier) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	start := time.Now()
	res, err := q.c.ExecContext(ctx, query, args...)
	err = classifySQLite(err)
	q.m.observe(SQLite, "exec", start, err)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type sqlRow struct {
	row   *sql.Row
	m     *Metrics
	start time.Time
}

func (r *sqlRow) Scan(dest ...any) error {
	err := classifySQLite(r.row.Scan(dest...))
	r.m.observe(SQLite, "query_row", r.start, err)
	return err
}

type sqlRows struct{ rows *sql.Rows }

func (r sqlRows) Next() bool             { return r.rows.Next() }
func (r sqlRows) Scan(dest ...any) error { return classifySQLite(r.rows.Scan(dest...)) }
func (r sqlRows) Err() error             { return classifySQLite(r.rows.Err()) }
func (r sqlRows) Close()                 { _ = r.rows.Close() }

func classifySQLite(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNoRows
	}
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return fmt.Errorf("%w: %s", ErrUniqueViolation, se.Error())
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return fmt.Errorf("%w: %s", ErrCheckViolation, se.Error())
		case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
			return fmt.Errorf("%w: %s", ErrForeignKeyViolation, se.Error())
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return fmt.Errorf("%w: %s", ErrNotNullViolation, se.Error())
		}
	}
	// Primary result codes only carry the message text.
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %s", ErrUniqueViolation, msg)
	case strings.Contains(msg, "CHECK constraint failed"):
		return fmt.Errorf("%w: %s", ErrCheckViolation, msg)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %s", ErrForeignKeyViolation, msg)
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return fmt.Errorf("%w: %s", ErrNotNullViolation, msg)
	}
	return err
}
