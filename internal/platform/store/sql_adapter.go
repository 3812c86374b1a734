package store

import (
	"context"
	"errors"
	"time"

	"devquest/internal/platform/store/pg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgxQuerier is what the pool and a pgx.Tx have in common
type pgxQuerier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// traced adapts a pgxQuerier to RowQuerier and reports every statement
type traced struct {
	q  pgxQuerier
	pg *pg.PG
}

func (t traced) Exec(ctx context.Context, sql string, args ...any) (CommandTag, error) {
	start := time.Now()
	ct, err := t.q.Exec(ctx, sql, args...)
	t.pg.Observe(ctx, sql, args, start, err)
	return ct, err
}

func (t traced) Query(ctx context.Context, sql string, args ...any) (Rows, error) {
	start := time.Now()
	rs, err := t.q.Query(ctx, sql, args...)
	t.pg.Observe(ctx, sql, args, start, err)
	if err != nil {
		return nil, err
	}
	return rows{rs}, nil
}

// QueryRow reports once the row is scanned since pgx defers errors until then
func (t traced) QueryRow(ctx context.Context, sql string, args ...any) Row {
	start := time.Now()
	r := t.q.QueryRow(ctx, sql, args...)
	return scanHook{r: r, done: func(err error) { t.pg.Observe(ctx, sql, args, start, err) }}
}

// pgAdapter is the TxRunner over a pool
type pgAdapter struct {
	traced
}

func newPGAdapter(p *pg.PG) *pgAdapter { return &pgAdapter{traced{q: p.Pool, pg: p}} }

// Ping bypasses the tracer so readiness checks stay out of the sql log
func (a *pgAdapter) Ping(ctx context.Context) error {
	if a == nil || a.pg == nil {
		return errors.New("pg: not configured")
	}
	return a.pg.Pool.Ping(ctx)
}

func (a *pgAdapter) Close() error {
	a.pg.Close()
	return nil
}

// Tx begins at the isolation level carried by ctx, see WithIsolation
// fn's error rolls back, otherwise the tx commits
func (a *pgAdapter) Tx(ctx context.Context, fn func(q RowQuerier) error) error {
	tx, err := a.pg.Pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: Isolation(ctx)})
	if err != nil {
		return err
	}
	if err := fn(traced{q: tx, pg: a.pg}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type scanHook struct {
	r    pgx.Row
	done func(error)
}

func (s scanHook) Scan(dst ...any) error {
	err := s.r.Scan(dst...)
	s.done(err)
	return err
}

type rows struct{ pgx.Rows }

func (r rows) Columns() []string {
	fds := r.FieldDescriptions()
	out := make([]string, len(fds))
	for i, fd := range fds {
		out[i] = fd.Name
	}
	return out
}
