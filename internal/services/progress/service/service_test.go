package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"devquest/internal/core/activity"
	"devquest/internal/core/level"
	"devquest/internal/core/xprules"
	perr "devquest/internal/platform/errors"
	"devquest/internal/platform/metrics"
	"devquest/internal/services/progress/domain"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

func newSvc(t *testing.T, tx *fakeTx, retry Retry) *Svc {
	t.Helper()
	rules, err := xprules.Default()
	require.NoError(t, err)
	levels, err := level.FromRules(rules)
	require.NoError(t, err)

	var seq atomic.Int64
	return New(tx, memBinder(), Options{
		Levels:  levels,
		Rules:   rules,
		Retry:   retry,
		Metrics: metrics.New(),
		Now:     func() time.Time { return t0 },
		NewID:   func() int64 { return seq.Add(1) },
	})
}

func enroll(t *testing.T, s *Svc, userID string) {
	t.Helper()
	_, err := s.Enroll(context.Background(), domain.EnrollInput{UserID: userID, Login: "octocat"})
	require.NoError(t, err)
}

func pushActivity(userID, eventID string, commits int) activity.Activity {
	return activity.Activity{
		UserID:            userID,
		Type:              activity.TypeCodePush,
		EventID:           eventID,
		ProviderEventKind: "push",
		Repo:              "octo/app",
		Data:              activity.Push{Ref: "refs/heads/main", Branch: "main", Commits: commits},
		CreatedAt:         t0,
	}
}

func award(xp int64) activity.XPResult {
	return activity.Sum(activity.XPBreakdownItem{Description: "test", XP: xp})
}

func TestProcess_CommitsEveryWrite(t *testing.T) {
	tx := newFakeTx()
	s := newSvc(t, tx, Retry{})
	enroll(t, s, "u1")

	out, err := s.Process(context.Background(), pushActivity("u1", "ev-1", 3), award(15))
	require.NoError(t, err)

	assert.False(t, out.Duplicate)
	assert.Equal(t, 1, out.Attempts)
	assert.Equal(t, int64(0), out.Before.XP)
	assert.Equal(t, int64(15), out.After.XP)
	assert.Equal(t, int64(1), out.After.Version)
	require.NotNil(t, out.Entry)
	assert.Equal(t, int64(15), out.Entry.XPChange)
	assert.Equal(t, int64(15), out.Entry.NewXP)
	assert.Equal(t, "pushes", out.Counter)
	assert.Equal(t, int64(1), out.Count)
	require.Len(t, out.Unlocked, 1)
	assert.Equal(t, "first_push", out.Unlocked[0].Code)

	db := tx.db
	st := db.users["u1"]
	assert.Equal(t, int64(15), st.XP)
	assert.Equal(t, 1, st.Level)
	assert.Equal(t, int64(15), st.CurrentLevelXP)
	assert.Equal(t, int64(85), st.XPToNextLevel)

	require.Len(t, db.history, 1)
	stored := db.acts[db.events["ev-1"]]
	require.NotNil(t, stored.ProcessingResult)
	assert.True(t, stored.ProcessingResult.Processed)
	assert.Equal(t, int64(15), stored.ProcessingResult.XP.TotalXP)
	assert.Contains(t, string(db.data[stored.ID]), `"type":"push"`)

	assert.Equal(t, pgx.Serializable, tx.isolation[len(tx.isolation)-1])
}

func TestProcess_DuplicateIsNoOp(t *testing.T) {
	tx := newFakeTx()
	s := newSvc(t, tx, Retry{})
	enroll(t, s, "u1")
	ctx := context.Background()

	_, err := s.Process(ctx, pushActivity("u1", "ev-1", 1), award(10))
	require.NoError(t, err)

	out, err := s.Process(ctx, pushActivity("u1", "ev-1", 1), award(10))
	require.NoError(t, err)
	assert.True(t, out.Duplicate)
	assert.Nil(t, out.Entry)

	assert.Len(t, tx.db.history, 1)
	assert.Len(t, tx.db.acts, 1)
	assert.Equal(t, int64(10), tx.db.users["u1"].XP)
	assert.Equal(t, int64(1), tx.db.counters["u1"]["pushes"])
}

func TestProcess_MissingUserState(t *testing.T) {
	tx := newFakeTx()
	s := newSvc(t, tx, Retry{})

	_, err := s.Process(context.Background(), pushActivity("ghost", "ev-1", 1), award(10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrMissingUserState))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeNotFound))
	assert.Empty(t, tx.db.acts)
	assert.Equal(t, 1, tx.txs, "missing state is not retried")
}

func TestProcess_RetriesSerializationFailures(t *testing.T) {
	tx := newFakeTx()
	s := newSvc(t, tx, Retry{Attempts: 5, Base: time.Millisecond, Max: 2 * time.Millisecond})
	enroll(t, s, "u1")
	tx.commitErrs = []error{serializationFailure(), serializationFailure()}

	out, err := s.Process(context.Background(), pushActivity("u1", "ev-1", 1), award(10))
	require.NoError(t, err)
	assert.Equal(t, 3, out.Attempts)
	assert.Len(t, tx.db.history, 1)
	assert.Equal(t, int64(10), tx.db.users["u1"].XP)
}

func TestProcess_RetriesStaleVersion(t *testing.T) {
	tx := newFakeTx()
	s := newSvc(t, tx, Retry{Attempts: 3, Base: time.Millisecond})
	enroll(t, s, "u1")
	tx.stale = 2

	out, err := s.Process(context.Background(), pushActivity("u1", "ev-1", 1), award(10))
	require.NoError(t, err)
	assert.Equal(t, 3, out.Attempts)
}

func TestProcess_ExhaustedRetriesSurfaceConflict(t *testing.T) {
	tx := newFakeTx()
	s := newSvc(t, tx, Retry{Attempts: 3, Base: time.Millisecond})
	enroll(t, s, "u1")
	tx.commitErrs = []error{serializationFailure(), serializationFailure(), serializationFailure()}

	_, err := s.Process(context.Background(), pushActivity("u1", "ev-1", 1), award(10))
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrTxConflict))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeConflict))
	assert.Empty(t, tx.db.history)
	assert.Equal(t, int64(0), tx.db.users["u1"].XP)
}

func TestProcess_StopsOnCanceledContext(t *testing.T) {
	tx := newFakeTx()
	s := newSvc(t, tx, Retry{Attempts: 5, Base: time.Hour})
	enroll(t, s, "u1")
	tx.commitErrs = []error{serializationFailure()}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := s.Process(ctx, pushActivity("u1", "ev-1", 1), award(10))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestProcess_RejectsInvalidActivity(t *testing.T) {
	s := newSvc(t, newFakeTx(), Retry{})
	ctx := context.Background()

	_, err := s.Process(ctx, pushActivity("", "ev-1", 1), award(1))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	bad := pushActivity("u1", "ev-2", 1)
	bad.Data = activity.Tag{Name: "v1", Action: "created"}
	_, err = s.Process(ctx, bad, award(1))
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
}

func TestProcess_LevelUpUnlocksLevelAchievement(t *testing.T) {
	tx := newFakeTx()
	s := newSvc(t, tx, Retry{})
	enroll(t, s, "u1")

	out, err := s.Process(context.Background(), pushActivity("u1", "ev-1", 1), award(1000))
	require.NoError(t, err)
	assert.True(t, out.LevelUp())
	assert.Equal(t, 5, out.After.Level)
	assert.Equal(t, int64(0), out.After.CurrentLevelXP)

	var codes []string
	for _, a := range out.Unlocked {
		codes = append(codes, a.Code)
	}
	assert.Contains(t, codes, "level_5")
	assert.NotContains(t, codes, "level_10")
}

func TestProcess_NegativeTotalIsClamped(t *testing.T) {
	tx := newFakeTx()
	s := newSvc(t, tx, Retry{})
	enroll(t, s, "u1")

	out, err := s.Process(context.Background(), pushActivity("u1", "ev-1", 1), award(-40))
	require.NoError(t, err)
	assert.Equal(t, int64(0), out.Entry.XPChange)
	assert.Equal(t, int64(0), tx.db.users["u1"].XP)
}

func TestProcess_ConcurrentEventsConserveXP(t *testing.T) {
	tx := newFakeTx()
	s := newSvc(t, tx, Retry{Attempts: 1000, Base: 100 * time.Microsecond, Max: 2 * time.Millisecond})
	enroll(t, s, "u1")

	const workers, perWorker = 8, 5
	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				ev := fmt.Sprintf("ev-%d-%d", w, i)
				_, err := s.Process(context.Background(), pushActivity("u1", ev, 1), award(int64(w+1)))
				errs <- err
			}
		}(w)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	var want int64
	for w := 0; w < workers; w++ {
		want += int64(w+1) * perWorker
	}
	assert.Equal(t, want, tx.db.users["u1"].XP)
	assert.Len(t, tx.db.history, workers*perWorker)

	l, err := s.VerifyLedger(context.Background(), "u1")
	require.NoError(t, err)
	assert.True(t, l.Conserved)
	assert.True(t, l.Replayable)
	assert.Equal(t, want, l.SumChange)
}

func TestEnroll_Idempotent(t *testing.T) {
	s := newSvc(t, newFakeTx(), Retry{})
	ctx := context.Background()

	first, err := s.Enroll(ctx, domain.EnrollInput{UserID: " u1 ", Login: "octocat"})
	require.NoError(t, err)
	assert.True(t, first.Created)
	assert.Equal(t, 1, first.State.Level)
	assert.Equal(t, int64(100), first.State.XPToNextLevel)

	again, err := s.Enroll(ctx, domain.EnrollInput{UserID: "u1"})
	require.NoError(t, err)
	assert.False(t, again.Created)
	assert.Equal(t, "octocat", again.State.Login)

	_, err = s.Enroll(ctx, domain.EnrollInput{UserID: "  "})
	assert.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
}

func TestStatusAndHistory(t *testing.T) {
	tx := newFakeTx()
	s := newSvc(t, tx, Retry{})
	enroll(t, s, "u1")
	ctx := context.Background()

	for i := 0; i < 4; i++ {
		_, err := s.Process(ctx, pushActivity("u1", fmt.Sprintf("ev-%d", i), 1), award(40))
		require.NoError(t, err)
	}

	view, err := s.Status(ctx, domain.StatusQuery{UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, int64(160), view.Progress.XP)
	assert.Equal(t, 2, view.Progress.Level)
	assert.Equal(t, int64(4), view.Counters["pushes"])
	require.NotEmpty(t, view.Achievements)

	page, err := s.History(ctx, domain.HistoryQuery{UserID: "u1", Limit: 2, Verify: true})
	require.NoError(t, err)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, int64(120), page.Entries[0].NewXP)
	assert.Equal(t, int64(160), page.Entries[1].NewXP)
	require.NotNil(t, page.Ledger)
	assert.True(t, page.Ledger.Conserved)
	assert.Equal(t, 4, page.Ledger.Entries)

	_, err = s.Status(ctx, domain.StatusQuery{UserID: "nobody"})
	assert.ErrorIs(t, err, domain.ErrMissingUserState)
}

func TestReplay(t *testing.T) {
	ok := []domain.HistoryEntry{
		{ID: 1, XPChange: 10, NewXP: 10},
		{ID: 2, XPChange: 5, NewXP: 15},
	}
	l := Replay(ok, 15)
	assert.True(t, l.Conserved)
	assert.True(t, l.Replayable)

	broken := []domain.HistoryEntry{
		{ID: 1, XPChange: 10, NewXP: 10},
		{ID: 2, XPChange: 5, NewXP: 20},
		{ID: 3, XPChange: 1, NewXP: 16},
	}
	l = Replay(broken, 99)
	assert.False(t, l.Conserved)
	assert.False(t, l.Replayable)
	assert.Equal(t, int64(2), l.BrokenAt)
	assert.Equal(t, int64(16), l.SumChange)

	empty := Replay(nil, 0)
	assert.True(t, empty.Conserved)
	assert.True(t, empty.Replayable)
}

func TestRetryDelay(t *testing.T) {
	r := Retry{Attempts: 10, Base: 10 * time.Millisecond, Max: 50 * time.Millisecond}.withDefaults()
	assert.Equal(t, 10*time.Millisecond, r.delay(1))
	assert.Equal(t, 20*time.Millisecond, r.delay(2))
	assert.Equal(t, 40*time.Millisecond, r.delay(3))
	assert.Equal(t, 50*time.Millisecond, r.delay(4))
	assert.Equal(t, 50*time.Millisecond, r.delay(9))

	d := Retry{}.withDefaults()
	assert.Equal(t, 5, d.Attempts)
}

func TestNew_PanicsOnMissingDeps(t *testing.T) {
	assert.Panics(t, func() { New(nil, memBinder(), Options{}) })
	assert.Panics(t, func() { New(newFakeTx(), nil, Options{}) })
	assert.Panics(t, func() { New(newFakeTx(), memBinder(), Options{}) })
}
