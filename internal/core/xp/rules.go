package xp

import (
	"fmt"
	"time"

	"devquest/internal/core/activity"
	"devquest/internal/core/xprules"
)

// Condition gates a bonus on the facts of one activity
type Condition func(activity.Facts) bool

// Bonus is a conditional line item
type Bonus struct {
	Name        string
	Description string
	XP          int64
	When        Condition
}

// Threshold compares a numeric fact against value; a missing fact never matches
func Threshold(fact, op string, value float64) (Condition, error) {
	var cmp func(a, b float64) bool
	switch op {
	case ">":
		cmp = func(a, b float64) bool { return a > b }
	case ">=":
		cmp = func(a, b float64) bool { return a >= b }
	case "<":
		cmp = func(a, b float64) bool { return a < b }
	case "<=":
		cmp = func(a, b float64) bool { return a <= b }
	case "==":
		cmp = func(a, b float64) bool { return a == b }
	default:
		return nil, fmt.Errorf("xp: unknown threshold op %q", op)
	}
	return func(f activity.Facts) bool {
		n, ok := f.Number(fact)
		return ok && cmp(n, value)
	}, nil
}

// Within matches when the elapsed time from one timestamp fact to another is below d
// both timestamps must be present and in order
func Within(from, to string, d time.Duration) Condition {
	return func(f activity.Facts) bool {
		start, ok := f.Time(from)
		if !ok {
			return false
		}
		end, ok := f.Time(to)
		if !ok {
			return false
		}
		elapsed := end.Sub(start)
		return elapsed >= 0 && elapsed < d
	}
}

// Flag matches when a boolean fact equals want; a missing fact never matches
func Flag(fact string, want bool) Condition {
	return func(f activity.Facts) bool {
		v, ok := f.Flag(fact)
		return ok && v == want
	}
}

// bonusFrom compiles a configured bonus
func bonusFrom(b xprules.Bonus) (Bonus, error) {
	out := Bonus{Name: b.Name, Description: b.Description, XP: b.XP}
	if out.Description == "" {
		out.Description = b.Name
	}
	switch b.Kind {
	case xprules.KindThreshold:
		c, err := Threshold(b.Fact, b.Op, b.Value)
		if err != nil {
			return Bonus{}, err
		}
		out.When = c
	case xprules.KindTimeThreshold:
		out.When = Within(b.From, b.To, b.Within)
	case xprules.KindBoolean:
		want := true
		if b.Equals != nil {
			want = *b.Equals
		}
		out.When = Flag(b.Fact, want)
	default:
		return Bonus{}, fmt.Errorf("xp: unknown bonus kind %q", b.Kind)
	}
	return out, nil
}
