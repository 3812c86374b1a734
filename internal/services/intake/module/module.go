// Package module wires intake into the API using modkit
package module

import (
	"devquest/internal/core/xp"
	"devquest/internal/modkit"
	"devquest/internal/modkit/httpkit"
	"devquest/internal/services/intake/domain"
	"devquest/internal/services/ledger"

	inhttp "devquest/internal/services/intake/http"
	inrepo "devquest/internal/services/intake/repo"
	insvc "devquest/internal/services/intake/service"
)

// Module implements the intake API module
type Module struct {
	modkit.Base

	svc   *insvc.Svc
	ports Ports
}

// New constructs the intake module
// the progress processor arrives through modkit.WithPorts(Ports{Processor: ...})
func New(deps modkit.Deps, registry *xp.Registry, opts ...modkit.Option) *Module {
	if registry == nil {
		panic("intake module requires an xp registry")
	}
	b := modkit.Build("intake", "/events", opts...)

	in, _ := b.Injected().(Ports)
	if in.Processor == nil {
		panic("intake module requires Ports.Processor")
	}

	cfg := FromConfig(deps.Cfg)

	var cache domain.SeenCache
	if cfg.UseCache && deps.Redis != nil {
		cache = inrepo.NewCache(deps.Redis, cfg.CachePrefix, cfg.CacheTTL)
	}

	svc := insvc.New(deps.PG, inrepo.NewPG(), registry, in.Processor, insvc.Options{
		Cache:   cache,
		Ledger:  ledger.New(deps.CH),
		Metrics: deps.Metrics,
	})

	return &Module{
		Base:  b,
		svc:   svc,
		ports: Ports{Processor: in.Processor, Ingest: svc},
	}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.Mount(r, func(rr httpkit.Router) { inhttp.Register(rr, m.svc) })
}
