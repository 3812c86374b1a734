// @title         devquest API
// @version       0.1.0
// @description   Event intake, xp progression and the stacked activity feed

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"devquest/internal/core/xprules"
	"devquest/internal/platform/config"
	"devquest/internal/platform/idgen"
	"devquest/internal/platform/logger"
	"devquest/internal/platform/metrics"
	phttp "devquest/internal/platform/net/http"
	"devquest/internal/platform/store"
	"devquest/internal/platform/store/schema"
	"devquest/internal/services/ledger"

	"devquest/internal/services/api"
)

func main() {
	envFile, envErr := config.LoadDotenv()

	// service-scoped config for HTTP etc (CORE_API_*)
	root := config.New()
	apiCfg := root.Prefix("CORE_API_")
	xpCfg := root.Prefix("CORE_XP_")

	// bring up logging early
	l := logger.Get()
	if envErr != nil {
		l.Panic().Err(envErr).Msg("dotenv failed to load")
	}
	if envFile != "" {
		l.Info().Str("file", envFile).Msg("dotenv loaded")
	}

	if err := idgen.Init(int64(apiCfg.MayInt("NODE_ID", 1))); err != nil {
		l.Panic().Err(err).Msg("idgen.Init failed")
	}

	rulesFile := xpCfg.MayString("RULES_FILE", "")
	rules, err := xprules.Load(rulesFile)
	if err != nil {
		l.Panic().Err(err).Msg("xp rules failed to load")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// open the platform store (postgres + optional CH mirror + optional redis)
	st, err := store.Open(ctx, store.FromEnv(root, "api"), store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	if apiCfg.MayBool("APPLY_SCHEMA", true) {
		if err := schema.Apply(ctx, st.PG); err != nil {
			l.Panic().Err(err).Msg("schema apply failed")
		}
	}
	if st.CH != nil {
		if err := ledger.EnsureTable(ctx, st.CH); err != nil {
			l.Warn().Err(err).Msg("ledger table unavailable, mirror writes will fail")
		}
	}

	// CORE_API_PORT, timeouts and drain window
	srv := phttp.NewServer(apiCfg)

	// mount our API
	api.Mount(
		srv.Router(),
		api.Options{
			Config:         root,
			Store:          st,
			Logger:         l,
			Metrics:        metrics.New(),
			Rules:          rules,
			RulesSource:    rulesFile,
			EnableSwagger:  apiCfg.MayBool("SWAGGER", true),
			EnableProfiler: apiCfg.MayBool("PROFILER", false),
			EnableMetrics:  apiCfg.MayBool("METRICS", true),
		},
	)

	if err := st.Guard(ctx); err != nil {
		l.Warn().Err(err).Msg("backend check failed, /meta/ready will report it")
	}

	// serve until SIGINT or SIGTERM, then drain
	if err := srv.Run(ctx); err != nil {
		l.Error().Err(err).Msg("http server stopped")
	}
	l.Info().Msg("bye")
}
