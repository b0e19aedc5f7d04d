package monthgrid

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DaysPerWeek is the number of grid columns.
const DaysPerWeek = 7

// Calendar resolves the month containing a reference instant. It is the
// injected replacement for an ambient locale/calendar: tests and callers
// pick the week start and location explicitly.
type Calendar interface {
	// FirstWeekday is the weekday shown in the first grid column.
	FirstWeekday() time.Weekday

	// MonthRange returns the first instant of the month containing ref
	// (local midnight unless a zone transition skips it) and the number of
	// days in that month.
	MonthRange(ref time.Time) (first time.Time, days int, err error)

	// SameDay reports whether a and b fall on the same calendar day.
	SameDay(a, b time.Time) bool
}

// Gregorian is the proleptic Gregorian calendar evaluated in Location.
type Gregorian struct {
	WeekStart time.Weekday
	Location  *time.Location
}

// NewGregorian returns a Gregorian calendar. A nil loc means time.Local.
func NewGregorian(weekStart time.Weekday, loc *time.Location) Gregorian {
	if loc == nil {
		loc = time.Local
	}
	return Gregorian{WeekStart: weekStart, Location: loc}
}

func (g Gregorian) FirstWeekday() time.Weekday { return g.WeekStart }

func (g Gregorian) MonthRange(ref time.Time) (time.Time, int, error) {
	if g.Location == nil {
		return time.Time{}, 0, configErr("calendar has no location", nil)
	}
	if g.WeekStart < time.Sunday || g.WeekStart > time.Saturday {
		return time.Time{}, 0, configErr(fmt.Sprintf("week start %d out of range", int(g.WeekStart)), nil)
	}

	local := ref.In(g.Location)
	first := DayStart(local.Year(), local.Month(), 1, g.Location)
	return first, DaysIn(local.Year(), local.Month()), nil
}

func (g Gregorian) SameDay(a, b time.Time) bool {
	loc := g.Location
	if loc == nil {
		loc = time.Local
	}
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// DaysIn returns the number of days in the given month.
func DaysIn(year int, month time.Month) int {
	// Day 0 of next month is last day of this month.
	return time.Date(year, month+1, 0, 12, 0, 0, 0, time.UTC).Day()
}

// StartOfDay returns the first instant of the day containing t in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = t.Location()
	}
	y, m, d := t.In(loc).Date()
	return DayStart(y, m, d, loc)
}

// DayStart returns the first instant of the given day in loc. That is
// midnight, except where a zone transition skips midnight; the day then
// starts where the transition lands.
func DayStart(year int, month time.Month, day int, loc *time.Location) time.Time {
	t := time.Date(year, month, day, 0, 0, 0, 0, loc)
	if t.Day() == day {
		return t
	}
	// time.Date resolved the gap to the evening before.
	if _, end := t.ZoneBounds(); !end.IsZero() && end.Day() == day {
		return end
	}
	return t
}

// ParseWeekday accepts English weekday names and their three-letter
// abbreviations, case-insensitively.
func ParseWeekday(name string) (time.Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return 0, errors.New("monthgrid: empty weekday")
	}
	for d := time.Sunday; d <= time.Saturday; d++ {
		full := strings.ToLower(d.String())
		if n == full || n == full[:3] {
			return d, nil
		}
	}
	return 0, fmt.Errorf("monthgrid: unknown weekday %q", name)
}
