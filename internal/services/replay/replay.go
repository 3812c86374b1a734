// Package replay feeds GH Archive hours for selected actors through the intake pipeline
// replays are safe to repeat since every event id is deduplicated
package replay

import (
	"context"
	"errors"
	"io"
	"strconv"
	"strings"

	"devquest/internal/adapters/ingest/gharchive"
	perr "devquest/internal/platform/errors"
	"devquest/internal/platform/logger"
	idom "devquest/internal/services/intake/domain"
	pdom "devquest/internal/services/progress/domain"

	"github.com/montanaflynn/stats"
	"golang.org/x/sync/errgroup"
)

var log = logger.Named("replay")

// Enroller creates a progression document when missing
type Enroller interface {
	Enroll(ctx context.Context, in pdom.EnrollInput) (pdom.EnrollOutput, error)
}

// ActorResolver looks up the GitHub id of a login
// archive lines without actor.id fall back to a synthetic id when absent or failing
type ActorResolver interface {
	ActorID(ctx context.Context, login string) (int64, error)
}

// Options select what to replay
type Options struct {
	From, To gharchive.HourRef
	// Logins filters actors, case insensitive; empty replays nobody
	Logins []string
	// Workers bounds concurrent hour downloads
	Workers int
	// Enroll creates missing users before their first event
	Enroll bool
	// Resolver fills in missing actor ids, optional
	Resolver ActorResolver
}

// Report summarizes one run
type Report struct {
	Hours      int   `json:"hours"`
	Scanned    int   `json:"scanned"`
	Matched    int   `json:"matched"`
	Processed  int   `json:"processed"`
	Duplicates int   `json:"duplicates"`
	Rejected   int   `json:"rejected"`
	Failed     int   `json:"failed"`
	XP         int64 `json:"xp"`
	// PerEvent describes the xp of processed events, zero when none were processed
	PerEvent Spread `json:"per_event"`
}

// Spread is a small xp distribution summary
type Spread struct {
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	P90    float64 `json:"p90"`
	Max    float64 `json:"max"`
}

func spreadOf(xs stats.Float64Data) Spread {
	if xs.Len() == 0 {
		return Spread{}
	}
	var sp Spread
	sp.Mean, _ = xs.Mean()
	sp.Median, _ = xs.Median()
	sp.P90, _ = xs.Percentile(90)
	sp.Max, _ = xs.Max()
	return sp
}

// Replayer wires a fetcher to the pipeline
type Replayer struct {
	fetch  gharchive.Fetcher
	ingest idom.IngestPort
	enroll Enroller
}

// New builds a replayer, enroll may be nil when Options.Enroll is never set
func New(fetch gharchive.Fetcher, ingest idom.IngestPort, enroll Enroller) *Replayer {
	if fetch == nil || ingest == nil {
		panic("replay.New: fetcher and ingest are required")
	}
	return &Replayer{fetch: fetch, ingest: ingest, enroll: enroll}
}

type hourScan struct {
	scanned int
	events  []gharchive.EventEnvelope
}

// Run downloads the window concurrently, then ingests matches hour by hour in order
// only rejections and per event failures are tolerated, fetch errors abort the run
func (r *Replayer) Run(ctx context.Context, opt Options) (Report, error) {
	want := map[string]struct{}{}
	for _, l := range opt.Logins {
		if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
			want[l] = struct{}{}
		}
	}
	if len(want) == 0 {
		return Report{}, perr.InvalidArgf("replay: at least one login is required")
	}
	if opt.Enroll && r.enroll == nil {
		return Report{}, perr.InvalidArgf("replay: enroll requested without an enroller")
	}
	hours := gharchive.Hours(opt.From, opt.To)
	if len(hours) == 0 {
		return Report{}, perr.InvalidArgf("replay: empty window %s..%s", opt.From, opt.To)
	}

	scans := make([]hourScan, len(hours))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(opt.Workers, 1))
	for i, h := range hours {
		g.Go(func() error {
			s, err := r.scan(gctx, h, want)
			if err != nil {
				return err
			}
			scans[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	ru := &run{Replayer: r, opt: opt, enrolled: map[string]bool{}, ids: map[string]string{}}
	ru.rep.Hours = len(hours)
	for i, s := range scans {
		ru.rep.Scanned += s.scanned
		for _, ev := range s.events {
			ru.rep.Matched++
			if err := ru.one(ctx, ev); err != nil {
				return ru.rep, err
			}
		}
		log.Debug().Str("hour", hours[i].String()).Int("matched", len(s.events)).Msg("hour replayed")
	}
	rep := ru.rep
	rep.PerEvent = spreadOf(ru.xp)
	log.Info().
		Int("hours", rep.Hours).
		Int("matched", rep.Matched).
		Int("processed", rep.Processed).
		Int("duplicates", rep.Duplicates).
		Int64("xp", rep.XP).
		Float64("xp_median", rep.PerEvent.Median).
		Msg("replay done")
	return rep, nil
}

func (r *Replayer) scan(ctx context.Context, h gharchive.HourRef, want map[string]struct{}) (hourScan, error) {
	body, err := r.fetch.Fetch(ctx, h)
	if err != nil {
		return hourScan{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "replay: fetch %s", h)
	}
	rd, err := gharchive.NewReader(body)
	if err != nil {
		return hourScan{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "replay: open %s", h)
	}
	defer rd.Close()

	var out hourScan
	for {
		if err := ctx.Err(); err != nil {
			return hourScan{}, err
		}
		ev, err := rd.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return hourScan{}, perr.Wrapf(err, perr.ErrorCodeUnavailable, "replay: read %s", h)
		}
		out.scanned++
		if _, ok := want[strings.ToLower(ev.Actor.Login)]; ok {
			out.events = append(out.events, ev)
		}
	}
}

// run is the sequential ingest state of one Run
type run struct {
	*Replayer
	opt      Options
	enrolled map[string]bool
	ids      map[string]string
	rep      Report
	xp       stats.Float64Data
}

// userID prefers the archive id, then the resolver, then a synthetic id
func (ru *run) userID(ctx context.Context, ev gharchive.EventEnvelope) string {
	if ev.Actor.ID != 0 || ru.opt.Resolver == nil {
		return ev.UserID()
	}
	key := strings.ToLower(ev.Actor.Login)
	if id, ok := ru.ids[key]; ok {
		return id
	}
	id := ev.UserID()
	if n, err := ru.opt.Resolver.ActorID(ctx, ev.Actor.Login); err != nil {
		log.Warn().Err(err).Str("login", ev.Actor.Login).Msg("actor lookup failed, using synthetic id")
	} else {
		id = strconv.FormatInt(n, 10)
	}
	ru.ids[key] = id
	return id
}

// one ingests a single event, only context and enroll errors stop the run
func (ru *run) one(ctx context.Context, ev gharchive.EventEnvelope) error {
	userID := ru.userID(ctx, ev)
	if ru.opt.Enroll && !ru.enrolled[userID] {
		if _, err := ru.enroll.Enroll(ctx, pdom.EnrollInput{UserID: userID, Login: ev.Actor.Login}); err != nil {
			return err
		}
		ru.enrolled[userID] = true
	}

	raw := ev.RawEvent()
	at := raw.ReceivedAt
	res, err := ru.ingest.Ingest(ctx, idom.RawEventInput{
		ExternalID:        raw.ExternalID,
		ProviderEventKind: raw.ProviderEventKind,
		UserID:            userID,
		Payload:           raw.Payload,
		ReceivedAt:        &at,
	})
	switch {
	case err == nil && res.Duplicate:
		ru.rep.Duplicates++
	case err == nil:
		ru.rep.Processed++
		ru.rep.XP += res.XP.TotalXP
		ru.xp = append(ru.xp, float64(res.XP.TotalXP))
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return err
	case errors.Is(err, idom.ErrUnclassifiable):
		ru.rep.Rejected++
	default:
		ru.rep.Failed++
		log.Warn().Err(err).Str("event_id", raw.ExternalID).Msg("replay event failed")
	}
	return nil
}
