// Package repo provides the intake lookups against postgres and redis
package repo

import (
	"context"
	"errors"
	"time"

	"devquest/internal/modkit/repokit"
	perr "devquest/internal/platform/errors"
	"devquest/internal/platform/store"

	"github.com/redis/go-redis/v9"
)

// Repo is the read only surface the gate needs from postgres
type Repo interface {
	EventSeen(ctx context.Context, eventID string) (bool, error)
}

type (
	// PG is a Postgres implementation of the intake repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

// EventSeen reports whether an activity already carries the event id
func (r *queries) EventSeen(ctx context.Context, eventID string) (bool, error) {
	const sql = `SELECT EXISTS (SELECT 1 FROM activities WHERE event_id = $1)`
	seen, err := store.Scalar[bool](ctx, r.q, sql, eventID)
	if err != nil {
		return false, perr.FromPostgres(err, "intake: event lookup")
	}
	return seen, nil
}

// Cache is the redis advisory marker store
// a nil client turns every call into a miss
type Cache struct {
	rdb    redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewCache returns a cache over rdb with keys under prefix
func NewCache(rdb redis.Cmdable, prefix string, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &Cache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *Cache) key(eventID string) string { return c.prefix + eventID }

// Seen reports whether the event id was remembered
func (c *Cache) Seen(ctx context.Context, eventID string) (bool, error) {
	if c == nil || c.rdb == nil {
		return false, nil
	}
	n, err := c.rdb.Exists(ctx, c.key(eventID)).Result()
	if err != nil {
		return false, perr.Wrap(err, perr.ErrorCodeUnavailable, "intake: cache lookup")
	}
	return n > 0, nil
}

// Remember marks the event id as processed for the cache ttl
func (c *Cache) Remember(ctx context.Context, eventID string) error {
	if c == nil || c.rdb == nil {
		return nil
	}
	err := c.rdb.SetArgs(ctx, c.key(eventID), 1, redis.SetArgs{Mode: "NX", TTL: c.ttl}).Err()
	if err != nil && !errors.Is(err, redis.Nil) {
		return perr.Wrap(err, perr.ErrorCodeUnavailable, "intake: cache remember")
	}
	return nil
}
