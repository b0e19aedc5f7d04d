// Package widget adapts the month grid model to a host widget framework
// that asks for a placeholder, a quick snapshot and a scheduled timeline.
package widget

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	appLog "monthcal/internal/log"
	"monthcal/internal/monthgrid"
)

// TitleLayout renders e.g. "Wednesday Sep 20 2023" before upper-casing.
const TitleLayout = "Monday Jan 2 2006"

// Provider is the set of entry points a widget host calls.
type Provider interface {
	// Placeholder returns an entry immediately and never fails.
	Placeholder() Entry
	// Snapshot returns a single entry for the current instant.
	Snapshot(ctx context.Context) (Entry, error)
	// Timeline returns the entries to show until policy marks them stale.
	Timeline(ctx context.Context, policy RefreshPolicy) (Timeline, error)
}

// Entry is one renderable instant of the complication.
type Entry struct {
	Date  time.Time
	Title string
	Grid  monthgrid.Grid
	// Err is set only on placeholder entries whose grid could not be built.
	Err error
}

// Timeline is a run of entries and the instant after which it is stale.
type Timeline struct {
	Entries []Entry
	Reload  time.Time
}

// Complication implements Provider over a calendar and a clock.
type Complication struct {
	cal     monthgrid.Calendar
	loc     *time.Location
	now     func() time.Time
	horizon int
}

type Option func(*Complication)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(c *Complication) { c.now = now }
}

// WithHorizon sets how many daily entries a timeline carries (minimum 1).
func WithHorizon(days int) Option {
	return func(c *Complication) {
		if days > 0 {
			c.horizon = days
		}
	}
}

// WithLocation sets the zone used for titles and midnights.
func WithLocation(loc *time.Location) Option {
	return func(c *Complication) {
		if loc != nil {
			c.loc = loc
		}
	}
}

func NewComplication(cal monthgrid.Calendar, opts ...Option) *Complication {
	c := &Complication{
		cal:     cal,
		loc:     time.Local,
		now:     time.Now,
		horizon: 1,
	}
	if g, ok := cal.(monthgrid.Gregorian); ok && g.Location != nil {
		c.loc = g.Location
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Complication) Placeholder() Entry {
	now := c.now()
	e, err := c.entry(now)
	if err != nil {
		appLog.Error("widget: placeholder grid unavailable", err, "date", now)
		return Entry{Date: now.In(c.loc), Title: Title(now, c.loc), Err: err}
	}
	return e
}

func (c *Complication) Snapshot(ctx context.Context) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	return c.entry(c.now())
}

func (c *Complication) Timeline(ctx context.Context, policy RefreshPolicy) (Timeline, error) {
	if policy == nil {
		policy = MidnightPolicy{Location: c.loc}
	}
	now := c.now()

	dates, err := c.entryDates(now)
	if err != nil {
		return Timeline{}, err
	}

	entries := make([]Entry, 0, len(dates))
	for _, d := range dates {
		if err := ctx.Err(); err != nil {
			return Timeline{}, err
		}
		e, err := c.entry(d)
		if err != nil {
			return Timeline{}, err
		}
		entries = append(entries, e)
	}

	tl := Timeline{
		Entries: entries,
		Reload:  policy.Next(dates[len(dates)-1]),
	}
	appLog.Debug("widget: timeline built", "entries", len(entries), "reload", tl.Reload)
	return tl, nil
}

// entryDates returns now followed by horizon-1 successive local midnights.
func (c *Complication) entryDates(now time.Time) ([]time.Time, error) {
	dates := []time.Time{now.In(c.loc)}
	if c.horizon <= 1 {
		return dates, nil
	}

	r, err := rrule.NewRRule(rrule.ROption{
		Freq:    rrule.DAILY,
		Dtstart: monthgrid.StartOfDay(now.Add(24*time.Hour), c.loc),
		Count:   c.horizon - 1,
	})
	if err != nil {
		return nil, fmt.Errorf("widget: timeline rule: %w", err)
	}
	return append(dates, r.All()...), nil
}

func (c *Complication) entry(at time.Time) (Entry, error) {
	g, err := monthgrid.Compute(at, c.cal)
	if err != nil {
		return Entry{}, err
	}
	return Entry{
		Date:  at.In(c.loc),
		Title: Title(at, c.loc),
		Grid:  g,
	}, nil
}

// Title renders t as e.g. "WEDNESDAY SEP 20 2023".
func Title(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return strings.ToUpper(t.Format(TitleLayout))
}
