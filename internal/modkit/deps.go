// Package modkit builds api modules from shared deps and mount options
package modkit

import (
	"devquest/internal/modkit/repokit"
	"devquest/internal/platform/config"
	"devquest/internal/platform/logger"
	"devquest/internal/platform/metrics"
	"devquest/internal/platform/store"

	"github.com/redis/go-redis/v9"
)

// Deps holds the backends every module may draw from
type Deps struct {
	Log logger.Logger
	Cfg config.Conf
	PG  repokit.TxRunner
	CH  store.Clickhouse

	// Redis is the advisory cache, nil when disabled
	Redis *redis.Client

	// Metrics is nil safe, modules call it unconditionally
	Metrics *metrics.Registry
}

// FromStore copies the opened backends from s into a Deps value
func FromStore(cfg config.Conf, log logger.Logger, s *store.Store, m *metrics.Registry) Deps {
	d := Deps{Log: log, Cfg: cfg, Metrics: m}
	if s != nil {
		d.PG = s.PG
		d.CH = s.CH
		d.Redis = s.Redis
	}
	return d
}
