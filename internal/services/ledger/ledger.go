// Package ledger mirrors committed xp history rows into clickhouse
// the mirror is write only, postgres stays the source of truth
package ledger

import (
	"context"
	"encoding/json"
	"fmt"

	"devquest/internal/platform/logger"
	"devquest/internal/platform/store"
	pdom "devquest/internal/services/progress/domain"
)

// Table is the clickhouse table the mirror writes to
const Table = "xp_ledger"

const ddl = `
CREATE TABLE IF NOT EXISTS xp_ledger (
    id               Int64,
    user_id          String,
    activity_id      String,
    event_id         String,
    activity_type    LowCardinality(String),
    xp_change        Int64,
    new_xp           Int64,
    new_level        Int32,
    current_level_xp Int64,
    breakdown        String,
    created_at       DateTime64(3, 'UTC')
) ENGINE = ReplacingMergeTree
ORDER BY (user_id, id)
`

// Sink receives committed history rows
type Sink interface {
	Record(ctx context.Context, e pdom.HistoryEntry) error
}

// Noop drops every row
type Noop struct{}

// Record implements Sink
func (Noop) Record(context.Context, pdom.HistoryEntry) error { return nil }

// CH writes rows to clickhouse
type CH struct {
	db  store.Clickhouse
	log *logger.Logger
}

// New returns a clickhouse sink, or Noop when db is nil
func New(db store.Clickhouse) Sink {
	if db == nil {
		return Noop{}
	}
	return &CH{db: db, log: logger.Named("ledger")}
}

// EnsureTable creates the mirror table when missing
func EnsureTable(ctx context.Context, db store.Clickhouse) error {
	if db == nil {
		return nil
	}
	if err := db.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ledger: create table: %w", err)
	}
	return nil
}

// Record appends one row, ReplacingMergeTree collapses replays of the same id
func (c *CH) Record(ctx context.Context, e pdom.HistoryEntry) error {
	breakdown, err := json.Marshal(e.Breakdown)
	if err != nil {
		return fmt.Errorf("ledger: encode breakdown: %w", err)
	}
	row := []any{
		e.ID, e.UserID, e.ActivityID, e.EventID, string(e.ActivityType),
		e.XPChange, e.NewXP, int32(e.NewLevel), e.CurrentLevelXP, string(breakdown), e.CreatedAt,
	}
	if err := c.db.Insert(ctx, Table, [][]any{row}); err != nil {
		return fmt.Errorf("ledger: insert: %w", err)
	}
	c.log.Debug().Int64("id", e.ID).Str("user_id", e.UserID).Msg("ledger row mirrored")
	return nil
}
