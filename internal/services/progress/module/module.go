// Package module wires progress into the API using modkit
package module

import (
	"devquest/internal/core/level"
	"devquest/internal/core/xprules"
	"devquest/internal/modkit"
	"devquest/internal/modkit/httpkit"

	prhttp "devquest/internal/services/progress/http"
	prepo "devquest/internal/services/progress/repo"
	psvc "devquest/internal/services/progress/service"
)

// Module implements the progress API module
type Module struct {
	modkit.Base

	svc   *psvc.Svc
	ports Ports
}

// New constructs the progress module from the shared rule set
func New(deps modkit.Deps, rules *xprules.Rules, opts ...modkit.Option) *Module {
	if rules == nil {
		panic("progress module requires rules")
	}
	levels, err := level.FromRules(rules)
	if err != nil {
		panic(err)
	}
	cfg := FromConfig(deps.Cfg)

	svc := psvc.New(deps.PG, prepo.NewPG(), psvc.Options{
		Levels: levels,
		Rules:  rules,
		Retry: psvc.Retry{
			Attempts: cfg.TxAttempts,
			Base:     cfg.TxBackoff,
			Max:      cfg.TxBackoffMax,
		},
		Metrics: deps.Metrics,
	})

	return &Module{
		Base:  modkit.Build("progress", "/progress", opts...),
		svc:   svc,
		ports: Ports{Processor: svc, Reader: svc},
	}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.Mount(r, func(rr httpkit.Router) { prhttp.Register(rr, m.svc) })
}
