// Package repo provides the progression repository implementation
package repo

import (
	"context"
	"encoding/json"
	"time"

	"devquest/internal/core/activity"
	"devquest/internal/modkit/repokit"
	perr "devquest/internal/platform/errors"
	"devquest/internal/platform/store"
	"devquest/internal/services/progress/domain"
)

// Repo is the progression persistence surface used by the service layer
type Repo interface {
	LoadState(ctx context.Context, userID string) (domain.UserState, error)
	CreateState(ctx context.Context, st domain.UserState) (bool, error)
	UpdateState(ctx context.Context, st domain.UserState, prevVersion int64) error

	InsertActivity(ctx context.Context, a activity.Activity, data json.RawMessage) (bool, error)
	AttachResult(ctx context.Context, activityID string, pr activity.ProcessingResult) error

	AppendHistory(ctx context.Context, e domain.HistoryEntry) error
	History(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error)

	BumpCounter(ctx context.Context, userID, name string, by int64) (int64, error)
	Counters(ctx context.Context, userID string) (map[string]int64, error)

	Award(ctx context.Context, userID string, a domain.Achievement) (bool, error)
	Achievements(ctx context.Context, userID string) ([]domain.Achievement, error)
}

type (
	// PG is a Postgres implementation of the progression repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func scanState(r store.Row) (domain.UserState, error) {
	var s domain.UserState
	err := r.Scan(&s.UserID, &s.Login, &s.XP, &s.Level, &s.CurrentLevelXP, &s.XPToNextLevel,
		&s.Version, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// LoadState reads the user document, missing users yield domain.ErrMissingUserState
func (r *queries) LoadState(ctx context.Context, userID string) (domain.UserState, error) {
	const sql = `
		SELECT user_id, login, xp, level, current_level_xp, xp_to_next_level,
		       version, created_at, updated_at
		FROM user_progress
		WHERE user_id = $1
	`
	st, err := store.One(ctx, r.q, scanState, sql, userID)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeNotFound) {
			return domain.UserState{}, domain.ErrMissingUserState
		}
		return domain.UserState{}, perr.FromPostgres(err, "load user progress")
	}
	return st, nil
}

// CreateState inserts a fresh document and reports false when one already exists
func (r *queries) CreateState(ctx context.Context, st domain.UserState) (bool, error) {
	const sql = `
		INSERT INTO user_progress (
			user_id, login, xp, level, current_level_xp, xp_to_next_level, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, 0, $7, $7)
		ON CONFLICT (user_id) DO NOTHING
	`
	tag, err := r.q.Exec(ctx, sql, st.UserID, st.Login, st.XP, st.Level, st.CurrentLevelXP, st.XPToNextLevel, st.CreatedAt)
	if err != nil {
		return false, perr.FromPostgres(err, "create user progress")
	}
	return tag.RowsAffected() == 1, nil
}

// UpdateState writes st only when the stored version still equals prevVersion
func (r *queries) UpdateState(ctx context.Context, st domain.UserState, prevVersion int64) error {
	const sql = `
		UPDATE user_progress
		SET xp               = $2,
		    level            = $3,
		    current_level_xp = $4,
		    xp_to_next_level = $5,
		    version          = $6,
		    updated_at       = $7
		WHERE user_id = $1 AND version = $8
	`
	tag, err := r.q.Exec(ctx, sql,
		st.UserID, st.XP, st.Level, st.CurrentLevelXP, st.XPToNextLevel, st.Version, st.UpdatedAt, prevVersion)
	if err != nil {
		return perr.FromPostgres(err, "update user progress")
	}
	if tag.RowsAffected() != 1 {
		return domain.ErrStaleVersion
	}
	return nil
}

// InsertActivity creates the activity unless its event id is already stored
func (r *queries) InsertActivity(ctx context.Context, a activity.Activity, data json.RawMessage) (bool, error) {
	const sql = `
		INSERT INTO activities (
			id, user_id, activity_type, event_id, provider_event_kind, repo, description, data, created_at
		) VALUES ($1::uuid, $2, $3, $4, $5, $6, $7, $8::jsonb, $9)
		ON CONFLICT (event_id) DO NOTHING
	`
	tag, err := r.q.Exec(ctx, sql,
		a.ID, a.UserID, string(a.Type), a.EventID, a.ProviderEventKind, a.Repo, a.Description, []byte(data), a.CreatedAt)
	if err != nil {
		return false, perr.FromPostgres(err, "insert activity")
	}
	return tag.RowsAffected() == 1, nil
}

// AttachResult stores the processing result, the only post creation mutation of an activity
func (r *queries) AttachResult(ctx context.Context, activityID string, pr activity.ProcessingResult) error {
	b, err := json.Marshal(pr)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode processing result")
	}
	const sql = `UPDATE activities SET processing_result = $2::jsonb WHERE id = $1::uuid`
	if err := store.ExecOne(ctx, r.q, sql, activityID, b); err != nil {
		return perr.FromPostgres(err, "attach processing result")
	}
	return nil
}

// AppendHistory appends one ledger row
func (r *queries) AppendHistory(ctx context.Context, e domain.HistoryEntry) error {
	b, err := json.Marshal(e.Breakdown)
	if err != nil {
		return perr.Wrap(err, perr.ErrorCodeJSON, "encode breakdown")
	}
	const sql = `
		INSERT INTO xp_history (
			id, user_id, activity_id, event_id, activity_type,
			xp_change, new_xp, new_level, current_level_xp, breakdown, created_at
		) VALUES ($1, $2, $3::uuid, $4, $5, $6, $7, $8, $9, $10::jsonb, $11)
	`
	_, err = r.q.Exec(ctx, sql,
		e.ID, e.UserID, e.ActivityID, e.EventID, string(e.ActivityType),
		e.XPChange, e.NewXP, e.NewLevel, e.CurrentLevelXP, b, e.CreatedAt)
	return perr.FromPostgres(err, "append xp history")
}

func scanEntry(r store.Row) (domain.HistoryEntry, error) {
	var (
		e   domain.HistoryEntry
		typ string
		raw []byte
	)
	if err := r.Scan(&e.ID, &e.UserID, &e.ActivityID, &e.EventID, &typ,
		&e.XPChange, &e.NewXP, &e.NewLevel, &e.CurrentLevelXP, &raw, &e.CreatedAt); err != nil {
		return e, err
	}
	e.ActivityType = activity.Type(typ)
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &e.Breakdown); err != nil {
			return e, perr.Wrap(err, perr.ErrorCodeJSON, "decode breakdown")
		}
	}
	return e, nil
}

// History returns the newest limit rows oldest first, limit <= 0 returns everything
func (r *queries) History(ctx context.Context, userID string, limit int) ([]domain.HistoryEntry, error) {
	const sql = `
		SELECT id, user_id, activity_id::text, event_id, activity_type,
		       xp_change, new_xp, new_level, current_level_xp, breakdown, created_at
		FROM (
			SELECT *
			FROM xp_history
			WHERE user_id = $1
			ORDER BY id DESC
			LIMIT NULLIF($2, 0)
		) newest
		ORDER BY id ASC
	`
	if limit < 0 {
		limit = 0
	}
	out, err := store.Many(ctx, r.q, scanEntry, sql, userID, limit)
	if err != nil {
		return nil, perr.FromPostgres(err, "list xp history")
	}
	return out, nil
}

// BumpCounter adds by to a named counter and returns the new value
func (r *queries) BumpCounter(ctx context.Context, userID, name string, by int64) (int64, error) {
	const sql = `
		INSERT INTO user_counters (user_id, name, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, name) DO UPDATE
		SET value      = user_counters.value + EXCLUDED.value,
		    updated_at = EXCLUDED.updated_at
		RETURNING value
	`
	v, err := store.Scalar[int64](ctx, r.q, sql, userID, name, by)
	if err != nil {
		return 0, perr.FromPostgres(err, "bump counter")
	}
	return v, nil
}

type counterRow struct {
	name  string
	value int64
}

// Counters returns every counter of a user
func (r *queries) Counters(ctx context.Context, userID string) (map[string]int64, error) {
	const sql = `SELECT name, value FROM user_counters WHERE user_id = $1 ORDER BY name`
	rows, err := store.Many(ctx, r.q, func(row store.Row) (counterRow, error) {
		var c counterRow
		err := row.Scan(&c.name, &c.value)
		return c, err
	}, sql, userID)
	if err != nil {
		return nil, perr.FromPostgres(err, "list counters")
	}
	out := make(map[string]int64, len(rows))
	for _, c := range rows {
		out[c.name] = c.value
	}
	return out, nil
}

// Award records an achievement once and reports whether this call unlocked it
func (r *queries) Award(ctx context.Context, userID string, a domain.Achievement) (bool, error) {
	const sql = `
		INSERT INTO user_achievements (user_id, code, title, activity_id, unlocked_at)
		VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5)
		ON CONFLICT (user_id, code) DO NOTHING
	`
	at := a.UnlockedAt
	if at.IsZero() {
		at = time.Now().UTC()
	}
	tag, err := r.q.Exec(ctx, sql, userID, a.Code, a.Title, a.ActivityID, at)
	if err != nil {
		return false, perr.FromPostgres(err, "award achievement")
	}
	return tag.RowsAffected() == 1, nil
}

// Achievements lists unlocked achievements oldest first
func (r *queries) Achievements(ctx context.Context, userID string) ([]domain.Achievement, error) {
	const sql = `
		SELECT code, title, COALESCE(activity_id::text, ''), unlocked_at
		FROM user_achievements
		WHERE user_id = $1
		ORDER BY unlocked_at, code
	`
	out, err := store.Many(ctx, r.q, func(row store.Row) (domain.Achievement, error) {
		var a domain.Achievement
		err := row.Scan(&a.Code, &a.Title, &a.ActivityID, &a.UnlockedAt)
		return a, err
	}, sql, userID)
	if err != nil {
		return nil, perr.FromPostgres(err, "list achievements")
	}
	return out, nil
}
