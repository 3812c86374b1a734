package module

import (
	"time"

	"devquest/internal/platform/config"
)

// Options controls the advisory gate
type Options struct {
	CachePrefix string
	CacheTTL    time.Duration
	// UseCache turns the redis marker off even when a client is configured
	UseCache bool
}

// FromConfig reads CORE_INTAKE_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_INTAKE_")
	return Options{
		CachePrefix: c.MayString("CACHE_PREFIX", "devquest:seen:"),
		CacheTTL:    c.MayDuration("CACHE_TTL", 72*time.Hour),
		UseCache:    c.MayBool("CACHE_ENABLED", true),
	}
}
