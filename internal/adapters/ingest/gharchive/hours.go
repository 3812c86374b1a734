package gharchive

import (
	"fmt"
	"time"
)

// HourLayout is the flag and filename layout for one hour
const HourLayout = "2006-01-02T15"

// HourRef identifies a GH Archive hour (UTC)
type HourRef struct {
	Year  int
	Month int
	Day   int
	Hour  int
}

// NewHourRef truncates t to its UTC hour
func NewHourRef(t time.Time) HourRef {
	ut := t.UTC()
	return HourRef{Year: ut.Year(), Month: int(ut.Month()), Day: ut.Day(), Hour: ut.Hour()}
}

// ParseHour reads YYYY-MM-DDTHH
func ParseHour(s string) (HourRef, error) {
	t, err := time.Parse(HourLayout, s)
	if err != nil {
		return HourRef{}, fmt.Errorf("gharchive: hour %q: want %s", s, HourLayout)
	}
	return NewHourRef(t), nil
}

// Time is the start of the hour
func (h HourRef) Time() time.Time {
	return time.Date(h.Year, time.Month(h.Month), h.Day, h.Hour, 0, 0, 0, time.UTC)
}

// String matches GH Archive naming: YYYY-MM-DD-H
func (h HourRef) String() string {
	return fmt.Sprintf("%04d-%02d-%02d-%d", h.Year, h.Month, h.Day, h.Hour)
}

// Hours lists every hour from start to end inclusive
// a reversed window yields nothing
func Hours(start, end HourRef) []HourRef {
	from, to := start.Time(), end.Time()
	if to.Before(from) {
		return nil
	}
	out := make([]HourRef, 0, int(to.Sub(from)/time.Hour)+1)
	for t := from; !t.After(to); t = t.Add(time.Hour) {
		out = append(out, NewHourRef(t))
	}
	return out
}
