// Package module wires the feed into the API using modkit
package module

import (
	"devquest/internal/modkit"
	"devquest/internal/modkit/httpkit"
	"devquest/internal/services/feed/domain"

	fdhttp "devquest/internal/services/feed/http"
	fdrepo "devquest/internal/services/feed/repo"
	fdsvc "devquest/internal/services/feed/service"
)

// Ports exposes the feed read surface
type Ports struct {
	Feed domain.ServicePort
}

// Module implements the feed API module
type Module struct {
	modkit.Base
	svc *fdsvc.Svc
}

// New constructs the feed module
func New(deps modkit.Deps, opts ...modkit.Option) *Module {
	cfg := FromConfig(deps.Cfg)
	return &Module{
		Base: modkit.Build("feed", "/feed", opts...),
		svc:  fdsvc.New(deps.PG, fdrepo.NewPG(), cfg.DefaultLimit),
	}
}

// MountRoutes mounts the module routes on the given router
func (m *Module) MountRoutes(r httpkit.Router) {
	m.Mount(r, func(rr httpkit.Router) { fdhttp.Register(rr, m.svc) })
}

// Ports returns the module ports
func (m *Module) Ports() any { return Ports{Feed: m.svc} }
