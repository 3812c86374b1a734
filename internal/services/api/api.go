// Package api provides the HTTP API for the application
package api

import (
	"devquest/internal/core/classify"
	"devquest/internal/core/level"
	"devquest/internal/core/xp"
	"devquest/internal/core/xprules"
	"devquest/internal/platform/config"
	"devquest/internal/platform/logger"
	"devquest/internal/platform/metrics"
	phttp "devquest/internal/platform/net/http"
	"devquest/internal/platform/store"

	"devquest/internal/modkit"
	"devquest/internal/modkit/httpkit"
	"devquest/internal/modkit/swaggerkit"

	metahttp "devquest/internal/services/api/meta/http"
	metamod "devquest/internal/services/api/meta/module"
	feedmod "devquest/internal/services/feed/module"
	intakemod "devquest/internal/services/intake/module"
	progressmod "devquest/internal/services/progress/module"
)

// Options are the API options
type Options struct {
	Config  config.Conf
	Store   *store.Store
	Logger  *logger.Logger
	Metrics *metrics.Registry

	// Rules is the loaded rule set, RulesSource names where it came from
	Rules       *xprules.Rules
	RulesSource string

	EnableSwagger  bool
	EnableProfiler bool
	EnableMetrics  bool
}

// Mount mounts the API service onto the given router
// it panics when the rule set cannot build a scoring registry
func Mount(r phttp.Router, opt Options) {
	log := logger.Get()
	if opt.Logger != nil {
		log = opt.Logger
	}
	deps := modkit.FromStore(opt.Config, *log, opt.Store, opt.Metrics)

	rules := opt.Rules
	if rules == nil {
		var err error
		if rules, err = xprules.Default(); err != nil {
			panic(err)
		}
	}
	registry, err := xp.FromRules(rules)
	if err != nil {
		panic(err)
	}

	// progress owns the processor, intake borrows it through ports
	progress := progressmod.New(deps, rules)
	proc := modkit.MustPortsOf[progressmod.Ports](progress).Processor

	intake := intakemod.New(deps, registry, modkit.WithPorts(intakemod.Ports{Processor: proc}))

	mods := []modkit.Module{
		metamod.New(deps, metamod.WithRules(rulesSummary(rules, registry, opt.RulesSource))),
		progress,
		intake,
		feedmod.New(deps),
	}

	stack := httpkit.CommonStack()
	if opt.Metrics != nil {
		stack = append(stack, opt.Metrics.Middleware)
	}

	httpkit.MountAPI(r, "v1", stack, func(api httpkit.Router) {
		// Swagger + profiler + metrics
		swaggerkit.Mount(r, opt.EnableSwagger)
		phttp.MountProfiler(r, "/debug", opt.EnableProfiler)
		if opt.EnableMetrics && opt.Metrics != nil {
			r.Handle("/metrics", opt.Metrics.Handler())
		}

		for _, m := range mods {
			m.MountRoutes(api)
			log.Debug().Str("module", m.Name()).Str("prefix", m.Prefix()).Msg("module mounted")
		}
	})

	log.Info().
		Int("modules", len(mods)).
		Int("calculators", len(registry.Types())).
		Str("rules", opt.RulesSource).
		Msg("api mounted")
}

func rulesSummary(rules *xprules.Rules, registry *xp.Registry, source string) func() metahttp.RulesResponse {
	if source == "" {
		source = "embedded"
	}
	handlers := 0
	if c, err := classify.New(); err == nil {
		handlers = len(c.Handlers())
	}
	maxLevel := 0
	if t, err := level.FromRules(rules); err == nil {
		maxLevel = t.Max()
	}
	calcs := make([]string, 0, len(registry.Types()))
	for _, t := range registry.Types() {
		calcs = append(calcs, string(t))
	}
	out := metahttp.RulesResponse{
		Source:       source,
		MaxLevel:     maxLevel,
		Calculators:  calcs,
		Handlers:     handlers,
		Achievements: len(rules.Achievements),
	}
	return func() metahttp.RulesResponse { return out }
}
