package xprules

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"devquest/internal/core/activity"
)

func TestDefault(t *testing.T) {
	r, err := Default()
	if err != nil {
		t.Fatalf("Default(): %v", err)
	}
	if len(r.Levels) < 2 {
		t.Fatalf("expected a multi level table, got %d", len(r.Levels))
	}
	for _, ty := range activity.Types() {
		if _, ok := r.Rule(ty); !ok {
			t.Fatalf("no rule for %s", ty)
		}
	}
	push, _ := r.Rule(activity.TypeCodePush)
	if len(push.Bonuses) == 0 || push.Bonuses[0].Name != "multipleCommits" {
		t.Fatalf("push bonuses = %+v", push.Bonuses)
	}
	if len(r.Counters()) == 0 {
		t.Fatalf("expected counters")
	}
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"version": "version: 2\nlevels: [{level: 1, xp: 0}]",
		"empty levels": "version: 1\nlevels: []",
		"first level not zero": "version: 1\nlevels: [{level: 1, xp: 5}]",
		"not increasing": "version: 1\nlevels: [{level: 1, xp: 0}, {level: 2, xp: 0}]",
		"unknown type": "version: 1\nlevels: [{level: 1, xp: 0}]\nactivities:\n  star_create: {base: {xp: 1}}",
		"negative base": "version: 1\nlevels: [{level: 1, xp: 0}]\nactivities:\n  code_push: {base: {xp: -1}}",
		"bad op": "version: 1\nlevels: [{level: 1, xp: 0}]\nactivities:\n  code_push:\n    bonuses: [{kind: threshold, fact: commits, op: '=>', xp: 1}]",
		"boolean without equals": "version: 1\nlevels: [{level: 1, xp: 0}]\nactivities:\n  code_push:\n    bonuses: [{kind: boolean, fact: forced, xp: 1}]",
		"window missing": "version: 1\nlevels: [{level: 1, xp: 0}]\nactivities:\n  pull_request_merge:\n    bonuses: [{kind: time_threshold, from: opened_at, to: merged_at, xp: 1}]",
		"achievement both": "version: 1\nlevels: [{level: 1, xp: 0}]\nachievements: [{code: a, counter: pushes, threshold: 1, level: 2}]",
		"achievement dup": "version: 1\nlevels: [{level: 1, xp: 0}]\nachievements: [{code: a, level: 1}, {code: a, level: 1}]",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatalf("expected error for %q", doc)
			}
		})
	}
}

func TestLoadFileOverride(t *testing.T) {
	doc := strings.Join([]string{
		"version: 1",
		"levels:",
		"  - {level: 1, xp: 0}",
		"  - {level: 2, xp: 10}",
		"activities:",
		"  code_push:",
		"    base: {description: push, xp: 1}",
		"    bonuses:",
		"      - {name: w, kind: time_threshold, from: a, to: b, within: 90m, xp: 2}",
	}, "\n")
	path := filepath.Join(t.TempDir(), "rules.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o600); err != nil {
		t.Fatal(err)
	}
	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	push, _ := r.Rule(activity.TypeCodePush)
	if got := push.Bonuses[0].Within.Minutes(); got != 90 {
		t.Fatalf("within = %v minutes, want 90", got)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
