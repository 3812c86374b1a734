package service

import (
	"context"
	"strings"
	"time"

	perr "devquest/internal/platform/errors"
	"devquest/internal/services/progress/domain"
)

const defaultHistoryLimit = 50

// Enroll creates the progression document for a user, a second call returns the stored one
func (s *Svc) Enroll(ctx context.Context, in domain.EnrollInput) (domain.EnrollOutput, error) {
	userID := strings.TrimSpace(in.UserID)
	if userID == "" {
		return domain.EnrollOutput{}, perr.InvalidArgf("progress: user id is required")
	}

	now := s.now()
	st := domain.UserState{
		UserID:    userID,
		Login:     strings.TrimSpace(in.Login),
		CreatedAt: now,
		UpdatedAt: now,
	}.Derive(s.levels.Of(0))

	created, err := s.Repo.CreateState(ctx, st)
	if err != nil {
		return domain.EnrollOutput{}, err
	}
	stored, err := s.Repo.LoadState(ctx, userID)
	if err != nil {
		return domain.EnrollOutput{}, err
	}
	if created {
		log.Info().Str("user_id", userID).Msg("user enrolled")
	}
	return domain.EnrollOutput{Created: created, State: stored}, nil
}

// Status returns the derived progress plus counters and achievements
func (s *Svc) Status(ctx context.Context, in domain.StatusQuery) (domain.StatusView, error) {
	st, err := s.Repo.LoadState(ctx, in.UserID)
	if err != nil {
		return domain.StatusView{}, err
	}
	counters, err := s.Repo.Counters(ctx, in.UserID)
	if err != nil {
		return domain.StatusView{}, err
	}
	achievements, err := s.Repo.Achievements(ctx, in.UserID)
	if err != nil {
		return domain.StatusView{}, err
	}
	if achievements == nil {
		achievements = []domain.Achievement{}
	}
	return domain.StatusView{
		UserID:       st.UserID,
		Login:        st.Login,
		Progress:     s.levels.Of(st.XP),
		Counters:     counters,
		Achievements: achievements,
		UpdatedAt:    st.UpdatedAt.UTC().Format(time.RFC3339),
	}, nil
}

// History lists the newest ledger rows oldest first and optionally verifies the full ledger
func (s *Svc) History(ctx context.Context, in domain.HistoryQuery) (domain.HistoryPage, error) {
	limit := in.Limit
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if _, err := s.Repo.LoadState(ctx, in.UserID); err != nil {
		return domain.HistoryPage{}, err
	}
	entries, err := s.Repo.History(ctx, in.UserID, limit)
	if err != nil {
		return domain.HistoryPage{}, err
	}
	if entries == nil {
		entries = []domain.HistoryEntry{}
	}
	page := domain.HistoryPage{UserID: in.UserID, Entries: entries}
	if in.Verify {
		l, err := s.VerifyLedger(ctx, in.UserID)
		if err != nil {
			return domain.HistoryPage{}, err
		}
		page.Ledger = &l
	}
	return page, nil
}

// VerifyLedger replays the whole history of a user against the stored state
func (s *Svc) VerifyLedger(ctx context.Context, userID string) (domain.Ledger, error) {
	st, err := s.Repo.LoadState(ctx, userID)
	if err != nil {
		return domain.Ledger{}, err
	}
	entries, err := s.Repo.History(ctx, userID, 0)
	if err != nil {
		return domain.Ledger{}, err
	}
	return Replay(entries, st.XP), nil
}

// Replay checks conservation and step by step replayability of entries in ledger order
func Replay(entries []domain.HistoryEntry, stateXP int64) domain.Ledger {
	l := domain.Ledger{Entries: len(entries), StateXP: stateXP, Replayable: true}
	var running int64
	for _, e := range entries {
		running += e.XPChange
		if l.Replayable && e.NewXP != running {
			l.Replayable = false
			l.BrokenAt = e.ID
		}
	}
	l.SumChange = running
	l.Conserved = running == stateXP
	return l
}
