package store

import (
	"testing"

	"devquest/internal/platform/config"
)

func TestFromEnv_Optional(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "postgres://dev@localhost/devquest")
	t.Setenv("SERVICE_PGSQL_MAX_CONNS", "9")
	t.Setenv("SERVICE_CLICKHOUSE_DBURL", "")
	t.Setenv("SERVICE_REDIS_URL", "redis://localhost:6379/0")

	c := FromEnv(config.New(), "api")
	if !c.PG.Enabled || c.PG.MaxConns != 9 || c.AppName != "devquest-api" {
		t.Fatalf("pg = %+v app=%q", c.PG, c.AppName)
	}
	if c.CH.Enabled {
		t.Fatal("clickhouse should stay off without a url")
	}
	if !c.RDS.Enabled || c.RDS.URL != "redis://localhost:6379/0" {
		t.Fatalf("redis = %+v", c.RDS)
	}

	t.Setenv("SERVICE_REDIS_ENABLED", "false")
	if FromEnv(config.New(), "api").RDS.Enabled {
		t.Fatal("SERVICE_REDIS_ENABLED=false should win")
	}
}

func TestFromEnv_RequiresPG(t *testing.T) {
	t.Setenv("SERVICE_PGSQL_DBURL", "")
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic without SERVICE_PGSQL_DBURL")
		}
	}()
	FromEnv(config.New(), "api")
}
