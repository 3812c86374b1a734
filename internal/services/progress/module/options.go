package module

import (
	"time"

	"devquest/internal/platform/config"
)

// Options controls the processor transaction retry loop
type Options struct {
	TxAttempts   int
	TxBackoff    time.Duration
	TxBackoffMax time.Duration
}

// FromConfig reads CORE_PROGRESS_* values from process config/env
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_PROGRESS_")
	return Options{
		TxAttempts:   c.MayInt("TX_ATTEMPTS", 5),
		TxBackoff:    c.MayDuration("TX_BACKOFF", 20*time.Millisecond),
		TxBackoffMax: c.MayDuration("TX_BACKOFF_MAX", 500*time.Millisecond),
	}
}
