package store

import "time"

// Config aggregates per backend configuration
type Config struct {
	AppName string

	PG  PGConfig
	CH  CHConfig
	RDS RedisConfig
}

// PGConfig configures postgres connectivity and tracing
type PGConfig struct {
	Enabled  bool
	URL      string
	MaxConns int32
	LogSQL   bool

	// SlowQuery marks traced statements as slow, zero disables
	SlowQuery time.Duration

	// boot knobs, zero means the opener defaults
	ConnectRetries int
	PingTimeout    time.Duration
}

// CHConfig configures clickhouse connectivity for the ledger mirror
type CHConfig struct {
	Enabled    bool
	URL        string
	ClientName string
	ClientTag  string
}

// RedisConfig configures the redis advisory cache
type RedisConfig struct {
	Enabled bool
	URL     string
}
