package store

import (
	"time"

	"devquest/internal/platform/config"
)

// FromEnv reads the SERVICE_* backend settings
// postgres is always on, clickhouse and redis are enabled by setting their DBURL
func FromEnv(root config.Conf, tag string) Config {
	pg := root.Prefix("SERVICE_PGSQL_")
	ch := root.Prefix("SERVICE_CLICKHOUSE_")
	rd := root.Prefix("SERVICE_REDIS_")

	chURL := ch.MayString("DBURL", "")
	rdURL := rd.MayString("URL", "")

	return Config{
		AppName: "devquest-" + tag,
		PG: PGConfig{
			Enabled:   true,
			URL:       pg.MustString("DBURL"),
			MaxConns:  int32(pg.MayInt("MAX_CONNS", 4)),
			SlowQuery: pg.MayDuration("SLOW_QUERY", 500*time.Millisecond),
			LogSQL:    pg.MayBool("LOG_SQL", false),
		},
		CH: CHConfig{
			Enabled:    chURL != "" && ch.MayBool("ENABLED", true),
			URL:        chURL,
			ClientName: "devquest",
			ClientTag:  tag,
		},
		RDS: RedisConfig{
			Enabled: rdURL != "" && rd.MayBool("ENABLED", true),
			URL:     rdURL,
		},
	}
}
