package module

import "devquest/internal/platform/config"

// Options controls feed reads
type Options struct {
	DefaultLimit int
}

// FromConfig reads CORE_FEED_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	return Options{DefaultLimit: cfg.Prefix("CORE_FEED_").MayInt("DEFAULT_LIMIT", 100)}
}
