package service

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"devquest/internal/core/activity"
	"devquest/internal/modkit/repokit"
	"devquest/internal/platform/store"
	"devquest/internal/services/progress/domain"
	"devquest/internal/services/progress/repo"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// memDB is an in memory copy of the progression tables
type memDB struct {
	users    map[string]domain.UserState
	acts     map[string]activity.Activity
	data     map[string]json.RawMessage
	events   map[string]string
	history  []domain.HistoryEntry
	counters map[string]map[string]int64
	awards   map[string]map[string]domain.Achievement
}

func newMemDB() *memDB {
	return &memDB{
		users:    map[string]domain.UserState{},
		acts:     map[string]activity.Activity{},
		data:     map[string]json.RawMessage{},
		events:   map[string]string{},
		counters: map[string]map[string]int64{},
		awards:   map[string]map[string]domain.Achievement{},
	}
}

func (m *memDB) clone() *memDB {
	c := newMemDB()
	for k, v := range m.users {
		c.users[k] = v
	}
	for k, v := range m.acts {
		c.acts[k] = v
	}
	for k, v := range m.data {
		c.data[k] = v
	}
	for k, v := range m.events {
		c.events[k] = v
	}
	c.history = append([]domain.HistoryEntry(nil), m.history...)
	for u, cs := range m.counters {
		c.counters[u] = map[string]int64{}
		for k, v := range cs {
			c.counters[u][k] = v
		}
	}
	for u, as := range m.awards {
		c.awards[u] = map[string]domain.Achievement{}
		for k, v := range as {
			c.awards[u][k] = v
		}
	}
	return c
}

// fakeTx runs each Tx on a snapshot and commits only if nothing else committed meanwhile
type fakeTx struct {
	mu  sync.Mutex
	db  *memDB
	rev int

	commitErrs []error
	stale      int
	isolation  []pgx.TxIsoLevel
	txs        int
}

func newFakeTx() *fakeTx { return &fakeTx{db: newMemDB()} }

func serializationFailure() error {
	return &pgconn.PgError{Code: "40001", Message: "could not serialize access"}
}

func (f *fakeTx) Tx(ctx context.Context, fn func(q store.RowQuerier) error) error {
	f.mu.Lock()
	f.txs++
	f.isolation = append(f.isolation, store.Isolation(ctx))
	work, startRev := f.db.clone(), f.rev
	f.mu.Unlock()

	if err := fn(&memQ{tx: f, db: work}); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.commitErrs) > 0 {
		err := f.commitErrs[0]
		f.commitErrs = f.commitErrs[1:]
		return err
	}
	if f.rev != startRev {
		return serializationFailure()
	}
	f.db = work
	f.rev++
	return nil
}

func (f *fakeTx) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (f *fakeTx) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (f *fakeTx) QueryRow(context.Context, string, ...any) store.Row             { return nil }

// memQ is the tx bound queryer handed to the binder
type memQ struct {
	tx *fakeTx
	db *memDB
}

func (q *memQ) Exec(context.Context, string, ...any) (store.CommandTag, error) { return nil, nil }
func (q *memQ) Query(context.Context, string, ...any) (store.Rows, error)      { return nil, nil }
func (q *memQ) QueryRow(context.Context, string, ...any) store.Row             { return nil }

// memBinder binds outside a tx to a read only snapshot and inside a tx to the working copy
func memBinder() repokit.Binder[repo.Repo] {
	return repokit.BindFunc[repo.Repo](func(q repokit.Queryer) repo.Repo {
		switch x := q.(type) {
		case *memQ:
			return &memRepo{tx: x.tx, db: x.db}
		case *fakeTx:
			return &memRepo{tx: x}
		}
		panic("memBinder: unexpected queryer")
	})
}

type memRepo struct {
	tx *fakeTx
	db *memDB
}

// view resolves the db to operate on, direct calls go to the committed copy
func (r *memRepo) view() *memDB {
	if r.db != nil {
		return r.db
	}
	return r.tx.db
}

func (r *memRepo) lock() func() {
	if r.db != nil {
		return func() {}
	}
	r.tx.mu.Lock()
	return r.tx.mu.Unlock
}

func (r *memRepo) LoadState(_ context.Context, userID string) (domain.UserState, error) {
	defer r.lock()()
	st, ok := r.view().users[userID]
	if !ok {
		return domain.UserState{}, domain.ErrMissingUserState
	}
	return st, nil
}

func (r *memRepo) CreateState(_ context.Context, st domain.UserState) (bool, error) {
	defer r.lock()()
	db := r.view()
	if _, ok := db.users[st.UserID]; ok {
		return false, nil
	}
	db.users[st.UserID] = st
	if r.db == nil {
		r.tx.rev++
	}
	return true, nil
}

func (r *memRepo) UpdateState(_ context.Context, st domain.UserState, prev int64) error {
	if r.tx.stale > 0 {
		r.tx.stale--
		return domain.ErrStaleVersion
	}
	db := r.view()
	if db.users[st.UserID].Version != prev {
		return domain.ErrStaleVersion
	}
	db.users[st.UserID] = st
	return nil
}

func (r *memRepo) InsertActivity(_ context.Context, a activity.Activity, data json.RawMessage) (bool, error) {
	db := r.view()
	if _, ok := db.events[a.EventID]; ok {
		return false, nil
	}
	db.events[a.EventID] = a.ID
	db.acts[a.ID] = a
	db.data[a.ID] = data
	return true, nil
}

func (r *memRepo) AttachResult(_ context.Context, id string, pr activity.ProcessingResult) error {
	db := r.view()
	a := db.acts[id]
	a.ProcessingResult = &pr
	db.acts[id] = a
	return nil
}

func (r *memRepo) AppendHistory(_ context.Context, e domain.HistoryEntry) error {
	db := r.view()
	db.history = append(db.history, e)
	return nil
}

func (r *memRepo) History(_ context.Context, userID string, limit int) ([]domain.HistoryEntry, error) {
	defer r.lock()()
	var out []domain.HistoryEntry
	for _, e := range r.view().history {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out, nil
}

func (r *memRepo) BumpCounter(_ context.Context, userID, name string, by int64) (int64, error) {
	db := r.view()
	if db.counters[userID] == nil {
		db.counters[userID] = map[string]int64{}
	}
	db.counters[userID][name] += by
	return db.counters[userID][name], nil
}

func (r *memRepo) Counters(_ context.Context, userID string) (map[string]int64, error) {
	defer r.lock()()
	out := map[string]int64{}
	for k, v := range r.view().counters[userID] {
		out[k] = v
	}
	return out, nil
}

func (r *memRepo) Award(_ context.Context, userID string, a domain.Achievement) (bool, error) {
	db := r.view()
	if db.awards[userID] == nil {
		db.awards[userID] = map[string]domain.Achievement{}
	}
	if _, ok := db.awards[userID][a.Code]; ok {
		return false, nil
	}
	db.awards[userID][a.Code] = a
	return true, nil
}

func (r *memRepo) Achievements(_ context.Context, userID string) ([]domain.Achievement, error) {
	defer r.lock()()
	var out []domain.Achievement
	for _, a := range r.view().awards[userID] {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}
