// Package http serves liveness, readiness, build and rule summary endpoints
package http

import (
	"context"
	"net/http"
	"time"

	"devquest/internal/core/version"
	"devquest/internal/modkit/httpkit"

	"golang.org/x/sync/errgroup"
)

// Pinger is satisfied by the store adapters
type Pinger interface {
	Ping(context.Context) error
}

// Deps are the handler dependencies, a nil Pinger is reported as skipped
type Deps struct {
	StartedAt time.Time
	PG        Pinger
	CH        Pinger
	Redis     Pinger

	// Rules reports the loaded scoring tables, nil hides /rules
	Rules func() RulesResponse

	// PingTimeout bounds each readiness ping, zero means 2s
	PingTimeout time.Duration
}

// Register mounts the meta routes
func Register(r httpkit.Router, d Deps) {
	if d.PingTimeout <= 0 {
		d.PingTimeout = 2 * time.Second
	}
	h := handlers{deps: d}
	httpkit.Get(r, "/health", h.health)
	httpkit.Get(r, "/ready", h.ready)
	httpkit.Get(r, "/version", h.version)
	if d.Rules != nil {
		httpkit.Get(r, "/rules", h.rules)
	}
}

type handlers struct{ deps Deps }

// HealthResponse is the liveness payload
type HealthResponse struct {
	Service string `json:"service" example:"devquest"`
	Version string `json:"version" example:"v0.3.0"`
	Started string `json:"started" example:"2026-03-01T10:00:00Z"`
	Uptime  int64  `json:"uptime_s" example:"300"`
}

// ReadyCheck is one dependency check, status is ok, fail or skipped
type ReadyCheck struct {
	Name   string `json:"name"            example:"pg"`
	Status string `json:"status"          example:"ok"`
	Error  string `json:"error,omitempty" example:"dial tcp 127.0.0.1:5432: connect: connection refused"`
}

// ReadyResponse is ok, degraded when an optional backend is missing or down, fail without postgres
type ReadyResponse struct {
	Status string       `json:"status" example:"ok"`
	Checks []ReadyCheck `json:"checks"`
}

// RulesResponse summarizes the scoring tables the service runs with
type RulesResponse struct {
	Source       string            `json:"source"       example:"embedded"`
	MaxLevel     int               `json:"max_level"    example:"50"`
	Calculators  []string          `json:"calculators"`
	Handlers     int               `json:"handlers"     example:"24"`
	Achievements int               `json:"achievements" example:"8"`
	Build        version.BuildInfo `json:"build"`
}

// health godoc
// @Summary Liveness and uptime
// @Tags Meta
// @Produce json
// @Success 200 {object} httpkit.Envelope{data=HealthResponse}
// @Router /meta/health [get]
func (h handlers) health(_ *http.Request) (any, error) {
	b := version.Info()
	return HealthResponse{
		Service: b.Service,
		Version: b.Version,
		Started: h.deps.StartedAt.UTC().Format(time.RFC3339),
		Uptime:  int64(time.Since(h.deps.StartedAt) / time.Second),
	}, nil
}

// ready godoc
// @Summary Readiness with dependency pings
// @Tags Meta
// @Produce json
// @Success 200 {object} httpkit.Envelope{data=ReadyResponse}
// @Failure 503 {object} httpkit.Envelope{data=ReadyResponse} "postgres unreachable"
// @Router /meta/ready [get]
func (h handlers) ready(r *http.Request) (any, error) {
	targets := []struct {
		name string
		p    Pinger
	}{
		{"pg", h.deps.PG},
		{"ch", h.deps.CH},
		{"redis", h.deps.Redis},
	}
	checks := make([]ReadyCheck, len(targets))

	// pings run side by side, a failure is recorded rather than returned
	var g errgroup.Group
	for i, t := range targets {
		checks[i] = ReadyCheck{Name: t.name, Status: "skipped"}
		if t.p == nil {
			continue
		}
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(r.Context(), h.deps.PingTimeout)
			defer cancel()
			if err := t.p.Ping(ctx); err != nil {
				checks[i] = ReadyCheck{Name: t.name, Status: "fail", Error: err.Error()}
				return nil
			}
			checks[i].Status = "ok"
			return nil
		})
	}
	_ = g.Wait()

	out := ReadyResponse{Status: "ok", Checks: checks}
	for _, c := range checks {
		if c.Name == "pg" && c.Status != "ok" {
			out.Status = "fail"
			break
		}
		if c.Status != "ok" {
			out.Status = "degraded"
		}
	}
	if out.Status == "fail" {
		return httpkit.Response{Status: http.StatusServiceUnavailable, Body: out}, nil
	}
	return out, nil
}

// version godoc
// @Summary Build info
// @Tags Meta
// @Produce json
// @Success 200 {object} httpkit.Envelope{data=version.BuildInfo}
// @Router /meta/version [get]
func (h handlers) version(_ *http.Request) (any, error) {
	return version.Info(), nil
}

// rules godoc
// @Summary Loaded xp rules, level table and classifier size
// @Tags Meta
// @Produce json
// @Success 200 {object} httpkit.Envelope{data=RulesResponse}
// @Router /meta/rules [get]
func (h handlers) rules(_ *http.Request) (any, error) {
	out := h.deps.Rules()
	out.Build = version.Info()
	return out, nil
}
