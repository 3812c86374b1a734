package service

import (
	"context"
	"time"

	"devquest/internal/core/activity"
	"devquest/internal/core/xprules"
	"devquest/internal/services/progress/domain"
	"devquest/internal/services/progress/repo"
)

// Transition is what an effect sees of one commit
type Transition struct {
	Activity activity.Activity
	Before   domain.UserState
	After    domain.UserState
	At       time.Time
}

// Effect applies an additive side effect inside the processing transaction
// an error aborts the whole commit
type Effect func(ctx context.Context, r repo.Repo, t Transition, out *domain.Outcome) error

// CountActivity bumps the counter configured for the activity type
func CountActivity(rules *xprules.Rules) Effect {
	return func(ctx context.Context, r repo.Repo, t Transition, out *domain.Outcome) error {
		rule, ok := rules.Rule(t.Activity.Type)
		if !ok || rule.Counter == "" {
			return nil
		}
		v, err := r.BumpCounter(ctx, t.Activity.UserID, rule.Counter, 1)
		if err != nil {
			return err
		}
		out.Counter, out.Count = rule.Counter, v
		return nil
	}
}

// AwardAchievements unlocks counter and level achievements reached by this commit
// it reads the counter CountActivity left on out, so it must run after it
func AwardAchievements(rules *xprules.Rules) Effect {
	return func(ctx context.Context, r repo.Repo, t Transition, out *domain.Outcome) error {
		for _, a := range rules.Achievements {
			if !reached(a, t, out) {
				continue
			}
			got := domain.Achievement{Code: a.Code, Title: a.Title, ActivityID: t.Activity.ID, UnlockedAt: t.At}
			fresh, err := r.Award(ctx, t.Activity.UserID, got)
			if err != nil {
				return err
			}
			if fresh {
				out.Unlocked = append(out.Unlocked, got)
			}
		}
		return nil
	}
}

func reached(a xprules.Achievement, t Transition, out *domain.Outcome) bool {
	switch {
	case a.Counter != "":
		return a.Counter == out.Counter && out.Count >= a.Threshold
	case a.Level > 0:
		return t.Before.Level < a.Level && t.After.Level >= a.Level
	}
	return false
}
