// Package pg opens the pgx pool and reports statements to an optional tracer
package pg

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Config configures the pool
type Config struct {
	URL      string
	MaxConns int32
	AppName  string

	// Slow flags statements at or over this duration, zero flags none
	Slow   time.Duration
	Tracer QueryTracer
}

// PG is the pool plus its tracing settings
type PG struct {
	Pool   *pgxpool.Pool
	tracer QueryTracer
	slow   time.Duration
}

// Open parses cfg.URL and creates the pool, it does not wait for a connection
func Open(ctx context.Context, cfg Config) (*PG, error) {
	pc, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, err
	}
	if cfg.MaxConns > 0 {
		pc.MaxConns = cfg.MaxConns
	}
	if cfg.AppName != "" {
		pc.ConnConfig.RuntimeParams["application_name"] = cfg.AppName
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, err
	}
	return &PG{Pool: pool, tracer: cfg.Tracer, slow: cfg.Slow}, nil
}

// Observe reports one finished statement, a no-op without a tracer
func (p *PG) Observe(ctx context.Context, sql string, args []any, start time.Time, err error) {
	if p == nil || p.tracer == nil {
		return
	}
	elapsed := time.Since(start)
	p.tracer.OnQuery(ctx, QueryEvent{
		SQL:     sql,
		Args:    args,
		Elapsed: elapsed,
		Err:     err,
		Slow:    p.slow > 0 && elapsed >= p.slow,
	})
}

// Close closes the pool
func (p *PG) Close() {
	if p != nil && p.Pool != nil {
		p.Pool.Close()
	}
}
