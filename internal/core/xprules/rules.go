// Package xprules loads the XP rule tables, the level table, and achievements from YAML.
// The embedded rules.yaml is the default; an external file with the same shape replaces it
package xprules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"devquest/internal/core/activity"

	"go.yaml.in/yaml/v3"
)

//go:embed rules.yaml
var embedded []byte

// Bonus rule kinds
const (
	KindThreshold     = "threshold"
	KindTimeThreshold = "time_threshold"
	KindBoolean       = "boolean"
)

// Comparison operators accepted by threshold rules
var ops = map[string]struct{}{">": {}, ">=": {}, "<": {}, "<=": {}, "==": {}}

// Level is one row of the level table
type Level struct {
	Level int    `yaml:"level"`
	XP    int64  `yaml:"xp"`
	Title string `yaml:"title"`
}

// Line is a fixed XP line item
type Line struct {
	Description string `yaml:"description"`
	XP          int64  `yaml:"xp"`
}

// Bonus is a declarative conditional line item
// which fields apply depends on Kind
type Bonus struct {
	Name        string `yaml:"name"`
	Kind        string `yaml:"kind"`
	Description string `yaml:"description"`
	XP          int64  `yaml:"xp"`

	// threshold and boolean
	Fact string `yaml:"fact"`

	// threshold
	Op    string  `yaml:"op"`
	Value float64 `yaml:"value"`

	// time_threshold
	From   string        `yaml:"from"`
	To     string        `yaml:"to"`
	Within time.Duration `yaml:"within"`

	// boolean
	Equals *bool `yaml:"equals"`
}

// ActivityRule is the scoring config for one activity type
type ActivityRule struct {
	Base    Line    `yaml:"base"`
	Bonuses []Bonus `yaml:"bonuses"`
	// Counter names the denormalized per-user counter bumped by this type, optional
	Counter string `yaml:"counter"`
}

// Achievement is awarded once when a counter or the level reaches a threshold
type Achievement struct {
	Code      string `yaml:"code"`
	Title     string `yaml:"title"`
	Counter   string `yaml:"counter"`
	Threshold int64  `yaml:"threshold"`
	Level     int    `yaml:"level"`
}

// Rules is the full rule set
type Rules struct {
	Version      int                            `yaml:"version"`
	Levels       []Level                        `yaml:"levels"`
	Activities   map[activity.Type]ActivityRule `yaml:"activities"`
	Achievements []Achievement                  `yaml:"achievements"`
}

// Default parses the embedded rules.yaml
func Default() (*Rules, error) {
	r, err := Parse(embedded)
	if err != nil {
		return nil, fmt.Errorf("xprules: embedded rules.yaml: %w", err)
	}
	return r, nil
}

// Load reads rules from path, or the embedded defaults when path is empty
func Load(path string) (*Rules, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("xprules: read %s: %w", path, err)
	}
	r, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("xprules: %s: %w", path, err)
	}
	return r, nil
}

// Parse decodes and validates a rules document
func Parse(b []byte) (*Rules, error) {
	var r Rules
	if err := yaml.Unmarshal(b, &r); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return &r, nil
}

// Validate checks the rule set is usable
func (r *Rules) Validate() error {
	if r.Version != 1 {
		return fmt.Errorf("unsupported version %d (want 1)", r.Version)
	}
	if err := validateLevels(r.Levels); err != nil {
		return err
	}
	for t, ar := range r.Activities {
		if !t.Valid() {
			return fmt.Errorf("activities: unknown activity type %q", t)
		}
		if ar.Base.XP < 0 {
			return fmt.Errorf("activities.%s: base xp must not be negative", t)
		}
		for i, b := range ar.Bonuses {
			if err := validateBonus(b); err != nil {
				return fmt.Errorf("activities.%s.bonuses[%d]: %w", t, i, err)
			}
		}
	}

	seen := make(map[string]struct{}, len(r.Achievements))
	for i, a := range r.Achievements {
		if a.Code == "" {
			return fmt.Errorf("achievements[%d]: code is required", i)
		}
		if _, dup := seen[a.Code]; dup {
			return fmt.Errorf("achievements[%d]: duplicate code %q", i, a.Code)
		}
		seen[a.Code] = struct{}{}

		switch {
		case a.Counter != "" && a.Level != 0:
			return fmt.Errorf("achievements.%s: set counter or level, not both", a.Code)
		case a.Counter != "" && a.Threshold <= 0:
			return fmt.Errorf("achievements.%s: threshold must be positive", a.Code)
		case a.Counter == "" && a.Level <= 0:
			return fmt.Errorf("achievements.%s: needs a counter or a level", a.Code)
		}
	}
	return nil
}

func validateLevels(levels []Level) error {
	if len(levels) == 0 {
		return fmt.Errorf("levels: table is empty")
	}
	if levels[0].XP != 0 {
		return fmt.Errorf("levels: first level must start at 0 xp, got %d", levels[0].XP)
	}
	for i := range levels {
		if levels[i].Level != i+1 {
			return fmt.Errorf("levels[%d]: level must be %d, got %d", i, i+1, levels[i].Level)
		}
		if i > 0 && levels[i].XP <= levels[i-1].XP {
			return fmt.Errorf("levels[%d]: xp %d must exceed previous %d", i, levels[i].XP, levels[i-1].XP)
		}
	}
	return nil
}

func validateBonus(b Bonus) error {
	if b.XP < 0 {
		return fmt.Errorf("xp must not be negative")
	}
	switch b.Kind {
	case KindThreshold:
		if b.Fact == "" {
			return fmt.Errorf("threshold needs a fact")
		}
		if _, ok := ops[b.Op]; !ok {
			return fmt.Errorf("unknown op %q", b.Op)
		}
	case KindTimeThreshold:
		if b.From == "" || b.To == "" {
			return fmt.Errorf("time_threshold needs from and to")
		}
		if b.Within <= 0 {
			return fmt.Errorf("time_threshold needs a positive within")
		}
	case KindBoolean:
		if b.Fact == "" {
			return fmt.Errorf("boolean needs a fact")
		}
		if b.Equals == nil {
			return fmt.Errorf("boolean needs equals")
		}
	default:
		return fmt.Errorf("unknown kind %q", b.Kind)
	}
	return nil
}

// Rule returns the scoring config for t
func (r *Rules) Rule(t activity.Type) (ActivityRule, bool) {
	ar, ok := r.Activities[t]
	return ar, ok
}

// Counters lists every counter name referenced by activity rules
func (r *Rules) Counters() []string {
	seen := map[string]struct{}{}
	var out []string
	for _, t := range activity.Types() {
		c := r.Activities[t].Counter
		if c == "" {
			continue
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
