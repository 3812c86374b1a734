// Package service runs raw provider events through the intake pipeline
package service

import (
	"context"
	"errors"
	"time"

	"devquest/internal/core/activity"
	"devquest/internal/core/classify"
	"devquest/internal/core/xp"
	"devquest/internal/modkit/repokit"
	perr "devquest/internal/platform/errors"
	"devquest/internal/platform/logger"
	"devquest/internal/platform/metrics"
	"devquest/internal/services/intake/domain"
	"devquest/internal/services/intake/repo"
	"devquest/internal/services/ledger"
	pdom "devquest/internal/services/progress/domain"
)

var log = logger.Named("intake")

// Service is the public surface of the intake pipeline
type Service interface {
	domain.IngestPort
}

// Options tune the pipeline collaborators
// zero values fall back to a built-in classifier, a noop sink and no cache
type Options struct {
	Classifier *classify.Classifier
	Cache      domain.SeenCache
	Ledger     ledger.Sink
	Metrics    *metrics.Registry
	Now        func() time.Time
}

// Svc implements Service
type Svc struct {
	db       repokit.Queryer
	binder   repokit.Binder[repo.Repo]
	classify *classify.Classifier
	registry *xp.Registry
	proc     pdom.ProcessorPort
	cache    domain.SeenCache
	ledger   ledger.Sink
	metrics  *metrics.Registry
	now      func() time.Time
}

// New constructs the pipeline
// db may be nil, in which case the gate relies on the processor alone
func New(db repokit.Queryer, binder repokit.Binder[repo.Repo], registry *xp.Registry, proc pdom.ProcessorPort, opts Options) *Svc {
	if binder == nil {
		panic("intake.New: nil binder")
	}
	if registry == nil {
		panic("intake.New: nil xp registry")
	}
	if proc == nil {
		panic("intake.New: nil processor")
	}
	s := &Svc{
		db:       db,
		binder:   binder,
		classify: opts.Classifier,
		registry: registry,
		proc:     proc,
		cache:    opts.Cache,
		ledger:   opts.Ledger,
		metrics:  opts.Metrics,
		now:      opts.Now,
	}
	if s.classify == nil {
		c, err := classify.New()
		if err != nil {
			panic(err)
		}
		s.classify = c
	}
	if s.ledger == nil {
		s.ledger = ledger.Noop{}
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	return s
}

// Ingest gates, classifies, scores and commits one event
// a duplicate is a successful result, never an error
func (s *Svc) Ingest(ctx context.Context, in domain.RawEventInput) (domain.IngestResult, error) {
	if in.ExternalID == "" {
		return domain.IngestResult{}, perr.InvalidArgf("intake: external id is required")
	}
	if in.UserID == "" {
		return domain.IngestResult{}, perr.InvalidArgf("intake: user id is required")
	}
	l := logger.C(ctx).With().Str("event_id", in.ExternalID).Str("user_id", in.UserID).Logger()

	dup, err := s.seen(ctx, in.ExternalID)
	if err != nil {
		return domain.IngestResult{}, err
	}
	if dup {
		l.Debug().Str("stage", domain.StageGate).Msg("duplicate event")
		s.metrics.Event(metrics.OutcomeDuplicate, "")
		return domain.IngestResult{EventID: in.ExternalID, Duplicate: true, Stage: domain.StageGate}, nil
	}

	ev := in.Event(s.now())
	res, err := s.classify.Classify(ev)
	if err != nil {
		l.Warn().Err(err).Str("kind", ev.ProviderEventKind).Str("action", ev.Action).Msg("event rejected")
		s.metrics.Event(metrics.OutcomeRejected, "")
		return domain.IngestResult{}, err
	}
	l.Debug().Str("handler", res.Handler).Str("type", string(res.Type)).Msg("event classified")

	a := activity.Activity{
		UserID:            in.UserID,
		Type:              res.Type,
		EventID:           in.ExternalID,
		ProviderEventKind: ev.ProviderEventKind,
		Repo:              res.Repo,
		Description:       res.Description,
		Data:              res.Data,
		CreatedAt:         ev.ReceivedAt,
	}

	score, ok := s.registry.Calculate(a)
	if !ok {
		l.Warn().Str("type", string(a.Type)).Msg("no xp calculator, scoring zero")
		s.metrics.Miss(string(a.Type))
	}

	out, err := s.proc.Process(ctx, a, score)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			l.Error().Err(err).Msg("processing failed")
		}
		s.metrics.Event(metrics.OutcomeFailed, string(a.Type))
		return domain.IngestResult{}, err
	}

	s.remember(ctx, in.ExternalID)

	if out.Duplicate {
		l.Debug().Str("stage", domain.StageProcessor).Msg("duplicate event")
		s.metrics.Event(metrics.OutcomeDuplicate, string(a.Type))
		return domain.IngestResult{EventID: in.ExternalID, Duplicate: true, Stage: domain.StageProcessor}, nil
	}

	if out.Entry != nil {
		if err := s.ledger.Record(ctx, *out.Entry); err != nil {
			l.Warn().Err(err).Msg("ledger mirror failed")
		}
	}
	s.metrics.Event(metrics.OutcomeProcessed, string(a.Type))

	l.Debug().
		Int64("xp", score.TotalXP).
		Int("level", out.After.Level).
		Int("attempts", out.Attempts).
		Msg("event processed")

	committed := out.Activity
	return domain.IngestResult{
		EventID:      in.ExternalID,
		ActivityType: committed.Type,
		Description:  committed.Description,
		Scored:       ok,
		XP:           score,
		Level:        out.After.Level,
		TotalXP:      out.After.XP,
		LevelUp:      out.LevelUp(),
		Unlocked:     out.Unlocked,
		Activity:     &committed,
	}, nil
}

// seen consults the cache then postgres
// cache errors only cost a lookup, the processor stays authoritative
func (s *Svc) seen(ctx context.Context, eventID string) (bool, error) {
	if s.cache != nil {
		hit, err := s.cache.Seen(ctx, eventID)
		if err != nil {
			log.Warn().Err(err).Msg("seen cache unavailable")
		} else if hit {
			return true, nil
		}
	}
	if s.db == nil {
		return false, nil
	}
	return s.binder.Bind(s.db).EventSeen(ctx, eventID)
}

func (s *Svc) remember(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Remember(ctx, eventID); err != nil {
		log.Warn().Err(err).Msg("seen cache remember failed")
	}
}
