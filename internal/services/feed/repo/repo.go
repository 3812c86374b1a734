// Package repo provides the feed reads
package repo

import (
	"context"
	"encoding/json"

	"devquest/internal/core/activity"
	"devquest/internal/modkit/repokit"
	perr "devquest/internal/platform/errors"
	"devquest/internal/platform/store"
)

// Repo reads committed activities
type Repo interface {
	Recent(ctx context.Context, userID string, limit int) ([]activity.Activity, error)
}

type (
	// PG is a Postgres implementation of the feed repo
	PG      struct{}
	queries struct{ q repokit.Queryer }
)

// NewPG returns a binder for the Postgres implementation
func NewPG() repokit.Binder[Repo] { return PG{} }

// Bind attaches a Queryer to the Postgres implementation
func (PG) Bind(q repokit.Queryer) Repo { return &queries{q: q} }

func scanActivity(r store.Row) (activity.Activity, error) {
	var (
		a        activity.Activity
		typ      string
		data     []byte
		resultJS []byte
	)
	if err := r.Scan(&a.ID, &a.UserID, &typ, &a.EventID, &a.ProviderEventKind, &a.Repo,
		&a.Description, &data, &resultJS, &a.CreatedAt); err != nil {
		return a, err
	}
	a.Type = activity.Type(typ)

	d, err := activity.DecodeData(data)
	if err != nil {
		return a, perr.Wrapf(err, perr.ErrorCodeJSON, "decode activity %s data", a.ID)
	}
	a.Data = d

	if len(resultJS) > 0 {
		var pr activity.ProcessingResult
		if err := json.Unmarshal(resultJS, &pr); err != nil {
			return a, perr.Wrapf(err, perr.ErrorCodeJSON, "decode activity %s result", a.ID)
		}
		a.ProcessingResult = &pr
	}
	return a, nil
}

// Recent returns the latest limit activities of a user, newest first
func (r *queries) Recent(ctx context.Context, userID string, limit int) ([]activity.Activity, error) {
	const sql = `
		SELECT id::text, user_id, activity_type, event_id, provider_event_kind, repo,
		       description, data, processing_result, created_at
		FROM activities
		WHERE user_id = $1
		ORDER BY created_at DESC, id
		LIMIT $2
	`
	out, err := store.Many(ctx, r.q, scanActivity, sql, userID, limit)
	if err != nil {
		if perr.IsCode(err, perr.ErrorCodeJSON) {
			return nil, err
		}
		return nil, perr.FromPostgres(err, "list recent activities")
	}
	return out, nil
}
