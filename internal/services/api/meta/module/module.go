// Package module wires meta endpoints into the API using a tiny module
package module

import (
	"context"
	"time"

	"devquest/internal/modkit"
	"devquest/internal/modkit/httpkit"

	metahttp "devquest/internal/services/api/meta/http"

	"github.com/redis/go-redis/v9"
)

// Module serves version, health and rule summary endpoints
type Module struct {
	modkit.Base

	deps      modkit.Deps
	startedAt time.Time
	rules     func() metahttp.RulesResponse
}

// WithRules exposes a scoring table summary under /meta/rules
func WithRules(fn func() metahttp.RulesResponse) modkit.Option {
	return modkit.WithPorts(fn)
}

type redisPinger struct{ c *redis.Client }

func (p redisPinger) Ping(ctx context.Context) error { return p.c.Ping(ctx).Err() }

// New constructs a meta module with the provided dependencies and options
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	b := modkit.Build("meta", "/meta", opts...)
	rules, _ := b.Injected().(func() metahttp.RulesResponse)
	return &Module{Base: b, deps: deps, startedAt: time.Now(), rules: rules}
}

// MountRoutes mounts /meta endpoints
func (m *Module) MountRoutes(r httpkit.Router) {
	d := metahttp.Deps{
		StartedAt:   m.startedAt,
		Rules:       m.rules,
		PingTimeout: m.deps.Cfg.Prefix("CORE_META_").MayDuration("PING_TIMEOUT", 2*time.Second),
	}
	// the store adapters ping, the interfaces stay nil when a backend is off
	if p, ok := m.deps.PG.(metahttp.Pinger); ok {
		d.PG = p
	}
	if p, ok := m.deps.CH.(metahttp.Pinger); ok {
		d.CH = p
	}
	if m.deps.Redis != nil {
		d.Redis = redisPinger{c: m.deps.Redis}
	}
	m.Mount(r, func(rr httpkit.Router) { metahttp.Register(rr, d) })
}

// Ports returns nil, meta exposes nothing to other modules
func (m *Module) Ports() any { return nil }
