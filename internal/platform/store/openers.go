package store

import (
	"context"
	"fmt"
	"time"

	chx "devquest/internal/platform/store/ch"
	"devquest/internal/platform/store/pg"
	"devquest/internal/platform/store/rds"

	"github.com/cenkalti/backoff/v4"
	"github.com/redis/go-redis/v9"
)

// openPG opens pg and wraps it with our sql adapter
func openPG(ctx context.Context, cfg Config, s *Store) (TxRunner, error) {
	var tracer pg.QueryTracer
	if cfg.PG.LogSQL {
		tracer = pg.Tracer(s.Log)
	}

	p, err := pg.Open(ctx, pg.Config{
		URL:      cfg.PG.URL,
		MaxConns: cfg.PG.MaxConns,
		AppName:  cfg.AppName,
		Slow:     cfg.PG.SlowQuery,
		Tracer:   tracer,
	})
	if err != nil {
		return nil, err
	}

	// boot pings hit the pool directly so they stay out of the sql trace
	attempts := cfg.PG.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	pingTimeout := cfg.PG.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}

	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = 150 * time.Millisecond
	eb.MaxInterval = 2 * time.Second
	eb.MaxElapsedTime = 0
	policy := backoff.WithContext(backoff.WithMaxRetries(eb, uint64(attempts-1)), ctx)

	tries := 0
	err = backoff.Retry(func() error {
		tries++
		pctx, cancel := context.WithTimeout(ctx, pingTimeout)
		defer cancel()
		return p.Pool.Ping(pctx)
	}, policy)
	if err != nil {
		p.Close()
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", tries, err)
	}

	a := newPGAdapter(p)
	s.PG = a
	return a, nil
}

func openCH(ctx context.Context, cfg Config, s *Store) (Clickhouse, error) {
	c, err := chx.Open(ctx, chx.Config{URL: cfg.CH.URL, Role: cfg.CH.ClientName, Tag: cfg.CH.ClientTag})
	if err != nil {
		return nil, err
	}
	s.Log.Debug().Str("component", "ch").Msg("clickhouse connected")
	return newCHAdapter(c), nil
}

func openRedis(ctx context.Context, cfg Config, s *Store) (*redis.Client, error) {
	c, err := rds.Open(ctx, rds.Config{URL: cfg.RDS.URL})
	if err != nil {
		return nil, err
	}
	s.Log.Debug().Str("component", "redis").Msg("redis connected")
	return c, nil
}
