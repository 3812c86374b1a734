// Package xp scores activities: a registry maps each activity type to a calculator
// that emits a base line item plus the configured bonuses whose conditions hold
package xp

import (
	"fmt"
	"sync"

	"devquest/internal/core/activity"
	"devquest/internal/core/xprules"
)

// Calculator scores one activity
// implementations return activity.Zero() for data they do not understand
type Calculator interface {
	Calculate(a activity.Activity) activity.XPResult
}

// CalculatorFunc adapts a function to Calculator
type CalculatorFunc func(a activity.Activity) activity.XPResult

// Calculate implements Calculator
func (f CalculatorFunc) Calculate(a activity.Activity) activity.XPResult { return f(a) }

// RuleCalculator emits a base item and any matching bonuses for one data kind
type RuleCalculator struct {
	kind    activity.DataKind
	base    activity.XPBreakdownItem
	bonuses []Bonus
}

// NewRuleCalculator builds a calculator for activities carrying kind data
func NewRuleCalculator(kind activity.DataKind, base activity.XPBreakdownItem, bonuses ...Bonus) *RuleCalculator {
	return &RuleCalculator{kind: kind, base: base, bonuses: append([]Bonus(nil), bonuses...)}
}

// Calculate implements Calculator
func (c *RuleCalculator) Calculate(a activity.Activity) activity.XPResult {
	if a.Data == nil || a.Data.Kind() != c.kind {
		return activity.Zero()
	}
	facts := a.Data.Facts()
	items := make([]activity.XPBreakdownItem, 0, 1+len(c.bonuses))
	items = append(items, c.base)
	for _, b := range c.bonuses {
		if b.When != nil && b.When(facts) {
			items = append(items, activity.XPBreakdownItem{Description: b.Description, XP: b.XP})
		}
	}
	return activity.Sum(items...)
}

// Registry maps activity types to calculators
// it is built once at startup and handed to the pipeline
type Registry struct {
	mu    sync.RWMutex
	calcs map[activity.Type]Calculator
}

// NewRegistry returns an empty registry
func NewRegistry() *Registry {
	return &Registry{calcs: make(map[activity.Type]Calculator)}
}

// FromRules builds a registry with one RuleCalculator per configured activity type
func FromRules(r *xprules.Rules) (*Registry, error) {
	reg := NewRegistry()
	for t, ar := range r.Activities {
		kind, ok := activity.KindOf(t)
		if !ok {
			return nil, fmt.Errorf("xp: unknown activity type %q", t)
		}
		bonuses := make([]Bonus, 0, len(ar.Bonuses))
		for _, b := range ar.Bonuses {
			cb, err := bonusFrom(b)
			if err != nil {
				return nil, fmt.Errorf("xp: %s: %w", t, err)
			}
			bonuses = append(bonuses, cb)
		}
		base := activity.XPBreakdownItem{Description: ar.Base.Description, XP: ar.Base.XP}
		if base.Description == "" {
			base.Description = string(t)
		}
		reg.Register(t, NewRuleCalculator(kind, base, bonuses...))
	}
	return reg, nil
}

// Register installs c for t, replacing any previous calculator
func (r *Registry) Register(t activity.Type, c Calculator) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calcs[t] = c
}

// Calculate scores a; ok is false when no calculator is registered for its type
// or the calculator could not use its data, and the result is then zero
func (r *Registry) Calculate(a activity.Activity) (res activity.XPResult, ok bool) {
	r.mu.RLock()
	c, found := r.calcs[a.Type]
	r.mu.RUnlock()
	if !found {
		return activity.Zero(), false
	}
	if want, _ := activity.KindOf(a.Type); a.Data == nil || a.Data.Kind() != want {
		return activity.Zero(), false
	}
	res = c.Calculate(a)
	if res.Breakdown == nil {
		res.Breakdown = []activity.XPBreakdownItem{}
	}
	return res, true
}

// Types lists the activity types with a registered calculator
func (r *Registry) Types() []activity.Type {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]activity.Type, 0, len(r.calcs))
	for _, t := range activity.Types() {
		if _, ok := r.calcs[t]; ok {
			out = append(out, t)
		}
	}
	return out
}
