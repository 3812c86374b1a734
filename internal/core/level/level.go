// Package level maps cumulative XP onto the configured level table
package level

import (
	"fmt"
	"sort"

	"devquest/internal/core/xprules"
)

// Step is one level boundary
type Step struct {
	Level      int
	XPRequired int64
	Title      string
}

// Table is a validated, strictly increasing level table starting at 0 xp
type Table struct {
	steps []Step
}

// Progress is the derived view of a cumulative XP total
// MaxLevel marks the terminal state; XPToNextLevel is then 0 and ProgressPercentage 100
type Progress struct {
	XP                  int64   `json:"xp"`
	Level               int     `json:"level"`
	Title               string  `json:"title,omitempty"`
	CurrentLevelXP      int64   `json:"current_level_xp"`
	XPToNextLevel       int64   `json:"xp_to_next_level"`
	ProgressPercentage  float64 `json:"progress_percentage"`
	LevelXPRequired     int64   `json:"level_xp_required"`
	NextLevelXPRequired int64   `json:"next_level_xp_required,omitempty"`
	MaxLevel            bool    `json:"max_level"`
}

// New builds a table from steps, which must start at 0 and strictly increase
func New(steps []Step) (Table, error) {
	if len(steps) == 0 {
		return Table{}, fmt.Errorf("level: empty table")
	}
	if steps[0].XPRequired != 0 {
		return Table{}, fmt.Errorf("level: first step must require 0 xp")
	}
	for i := 1; i < len(steps); i++ {
		if steps[i].XPRequired <= steps[i-1].XPRequired {
			return Table{}, fmt.Errorf("level: step %d does not increase", i)
		}
	}
	return Table{steps: append([]Step(nil), steps...)}, nil
}

// FromRules builds the table from the configured level rows
func FromRules(r *xprules.Rules) (Table, error) {
	steps := make([]Step, 0, len(r.Levels))
	for _, l := range r.Levels {
		steps = append(steps, Step{Level: l.Level, XPRequired: l.XP, Title: l.Title})
	}
	return New(steps)
}

// Steps returns a copy of the table
func (t Table) Steps() []Step { return append([]Step(nil), t.steps...) }

// Max is the highest level in the table
func (t Table) Max() int {
	if len(t.steps) == 0 {
		return 0
	}
	return t.steps[len(t.steps)-1].Level
}

// index is the largest i with xp >= steps[i].XPRequired
func (t Table) index(xp int64) int {
	i := sort.Search(len(t.steps), func(i int) bool { return t.steps[i].XPRequired > xp })
	return i - 1
}

// Of derives level progress from a cumulative xp total; negative totals count as 0
func (t Table) Of(xp int64) Progress {
	if len(t.steps) == 0 {
		return Progress{XP: xp}
	}
	if xp < 0 {
		xp = 0
	}
	i := t.index(xp)
	cur := t.steps[i]
	p := Progress{
		XP:              xp,
		Level:           cur.Level,
		Title:           cur.Title,
		CurrentLevelXP:  xp - cur.XPRequired,
		LevelXPRequired: cur.XPRequired,
	}
	if i == len(t.steps)-1 {
		p.MaxLevel = true
		p.ProgressPercentage = 100
		return p
	}
	next := t.steps[i+1]
	p.NextLevelXPRequired = next.XPRequired
	p.XPToNextLevel = next.XPRequired - xp
	p.ProgressPercentage = float64(p.CurrentLevelXP) / float64(next.XPRequired-cur.XPRequired) * 100
	return p
}
