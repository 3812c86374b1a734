package ch

import (
	"os"

	"devquest/internal/core/version"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// clientInfo tags our queries in system.query_log with the build and role
func clientInfo(role, tag string) clickhouse.ClientInfo {
	b := version.Info()
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	type product = struct{ Name, Version string }
	return clickhouse.ClientInfo{Products: []product{
		{Name: b.Service, Version: b.Version},
		{Name: "role", Version: orUnknown(role)},
		{Name: "tag", Version: orUnknown(tag)},
		{Name: "commit", Version: b.Commit},
		{Name: "host", Version: host},
	}}
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
