// Package version reports what build is running
package version

import (
	"runtime"
	"runtime/debug"
	"sync"
)

// stamped with -ldflags "-X devquest/internal/core/version.version=v0.3.0", empty
// commit and date fall back to the vcs settings the go toolchain embeds
var (
	version = "dev"
	commit  = ""
	date    = ""
)

// BuildInfo describes the running binary
type BuildInfo struct {
	Service string `json:"service" example:"devquest"`
	Version string `json:"version" example:"v0.3.0"`
	Commit  string `json:"commit"  example:"4f1c2ab9e03d"`
	Date    string `json:"date"    example:"2026-03-01T10:00:00Z"`
	Go      string `json:"go"      example:"go1.25.0"`
	Dirty   bool   `json:"dirty,omitempty"`
}

var (
	once sync.Once
	info BuildInfo
)

// Info returns the build description, computed once
func Info() BuildInfo {
	once.Do(func() { info = read(debug.ReadBuildInfo()) })
	return info
}

func read(bi *debug.BuildInfo, ok bool) BuildInfo {
	b := BuildInfo{Service: "devquest", Version: version, Commit: commit, Date: date, Go: runtime.Version()}
	if ok && bi != nil {
		for _, s := range bi.Settings {
			switch s.Key {
			case "vcs.revision":
				if b.Commit == "" {
					b.Commit = s.Value
				}
			case "vcs.time":
				if b.Date == "" {
					b.Date = s.Value
				}
			case "vcs.modified":
				b.Dirty = s.Value == "true"
			}
		}
	}
	if len(b.Commit) > 12 {
		b.Commit = b.Commit[:12]
	}
	if b.Commit == "" {
		b.Commit = "unknown"
	}
	if b.Date == "" {
		b.Date = "unknown"
	}
	return b
}
