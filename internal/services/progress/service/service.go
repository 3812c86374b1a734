// Package service contains the progression workflows
package service

import (
	"time"

	"devquest/internal/core/level"
	"devquest/internal/core/xprules"
	"devquest/internal/modkit/repokit"
	"devquest/internal/platform/idgen"
	"devquest/internal/platform/logger"
	"devquest/internal/platform/metrics"
	"devquest/internal/services/progress/domain"
	"devquest/internal/services/progress/repo"
)

// Service is the public service port
type Service interface {
	domain.ProcessorPort
	domain.ServicePort
}

// Svc implements the service port
type Svc struct {
	Repo    repo.Repo
	binder  repokit.Binder[repo.Repo]
	db      repokit.TxRunner
	levels  level.Table
	rules   *xprules.Rules
	effects []Effect
	retry   Retry
	metrics *metrics.Registry
	now     func() time.Time
	newID   func() int64
}

// Options control service behavior
type Options struct {
	// Levels is required
	Levels level.Table

	// Rules drives counters and achievements, nil disables both
	Rules *xprules.Rules

	// Effects run after the core writes inside the same transaction
	// nil installs counter and achievement effects derived from Rules
	Effects []Effect

	Retry   Retry
	Metrics *metrics.Registry

	// Now and NewID are seams for tests
	Now   func() time.Time
	NewID func() int64
}

// New constructs the service
func New(db repokit.TxRunner, binder repokit.Binder[repo.Repo], opt Options) *Svc {
	if db == nil {
		panic("progress.Service requires a non nil TxRunner")
	}
	if binder == nil {
		panic("progress.Service requires a non nil Repo binder")
	}
	if len(opt.Levels.Steps()) == 0 {
		panic("progress.Service requires a level table")
	}

	s := &Svc{
		Repo:    binder.Bind(db),
		binder:  binder,
		db:      db,
		levels:  opt.Levels,
		rules:   opt.Rules,
		effects: opt.Effects,
		retry:   opt.Retry.withDefaults(),
		metrics: opt.Metrics,
		now:     opt.Now,
		newID:   opt.NewID,
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newID == nil {
		s.newID = idgen.New
	}
	if s.effects == nil && s.rules != nil {
		s.effects = []Effect{CountActivity(s.rules), AwardAchievements(s.rules)}
	}
	return s
}

var log = logger.Named("progress")
