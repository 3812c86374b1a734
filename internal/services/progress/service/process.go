package service

import (
	"context"
	"errors"

	"devquest/internal/core/activity"
	perr "devquest/internal/platform/errors"
	"devquest/internal/platform/store"
	"devquest/internal/services/progress/domain"
	"devquest/internal/services/progress/repo"

	"github.com/google/uuid"
)

// errDuplicate rolls back the transaction when the event id is already stored
var errDuplicate = errors.New("progress: duplicate event")

// Process commits one scored activity in a serializable transaction
// the state update, activity insert, processing result, history row and effects land together or not at all
func (s *Svc) Process(ctx context.Context, a activity.Activity, xp activity.XPResult) (domain.Outcome, error) {
	if a.UserID == "" {
		return domain.Outcome{}, perr.InvalidArgf("progress: user id is required")
	}
	if err := activity.Validate(a); err != nil {
		return domain.Outcome{}, err
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	data, err := activity.EncodeData(a.Data)
	if err != nil {
		return domain.Outcome{}, err
	}

	var out domain.Outcome
	onRetry := func(attempt int, err error) {
		s.metrics.TxRetry()
		log.Debug().Err(err).Int("attempt", attempt).Str("event_id", a.EventID).Msg("retrying progress tx")
	}
	err = s.retry.run(ctx, onRetry, func(attempt int) error {
		out = domain.Outcome{Attempts: attempt}
		return store.RunSerializable(ctx, s.db, func(ctx context.Context, q store.RowQuerier) error {
			return s.apply(ctx, s.binder.Bind(q), a, data, xp, &out)
		})
	})

	switch {
	case errors.Is(err, errDuplicate):
		return domain.Outcome{Duplicate: true, Attempts: out.Attempts}, nil
	case err != nil:
		return domain.Outcome{}, err
	}

	s.metrics.XP(string(a.Type), out.Entry.XPChange)
	if out.LevelUp() {
		s.metrics.LevelUp()
	}
	for _, u := range out.Unlocked {
		s.metrics.Achievement(u.Code)
	}
	return out, nil
}

// apply is one attempt: read snapshot, compute the pure delta, write conditionally
func (s *Svc) apply(ctx context.Context, r repo.Repo, a activity.Activity, data []byte, xp activity.XPResult, out *domain.Outcome) error {
	before, err := r.LoadState(ctx, a.UserID)
	if err != nil {
		return err
	}

	inserted, err := r.InsertActivity(ctx, a, data)
	if err != nil {
		return err
	}
	if !inserted {
		return errDuplicate
	}

	now := s.now()
	gain := max(xp.TotalXP, 0)
	after := before.Derive(s.levels.Of(before.XP + gain))
	after.Version = before.Version + 1
	after.UpdatedAt = now
	if err := r.UpdateState(ctx, after, before.Version); err != nil {
		return err
	}

	pr := activity.ProcessingResult{Processed: true, ProcessedAt: now, XP: xp}
	if err := r.AttachResult(ctx, a.ID, pr); err != nil {
		return err
	}
	a.ProcessingResult = &pr

	entry := domain.HistoryEntry{
		ID:             s.newID(),
		UserID:         a.UserID,
		ActivityID:     a.ID,
		EventID:        a.EventID,
		ActivityType:   a.Type,
		XPChange:       gain,
		NewXP:          after.XP,
		NewLevel:       after.Level,
		CurrentLevelXP: after.CurrentLevelXP,
		Breakdown:      xp.Breakdown,
		CreatedAt:      now,
	}
	if err := r.AppendHistory(ctx, entry); err != nil {
		return err
	}

	out.Activity = a
	out.Before = before
	out.After = after
	out.Entry = &entry

	t := Transition{Activity: a, Before: before, After: after, At: now}
	for _, fx := range s.effects {
		if err := fx(ctx, r, t, out); err != nil {
			return err
		}
	}
	return nil
}
