package widget

import (
	"time"

	"monthcal/internal/monthgrid"
)

// RefreshPolicy decides when a timeline goes stale.
type RefreshPolicy interface {
	// Next returns the instant after which the host should ask for a new
	// timeline. The zero time means never.
	Next(last time.Time) time.Time
}

// MidnightPolicy reloads at the start of the day after last+24h.
type MidnightPolicy struct {
	Location *time.Location
}

func (p MidnightPolicy) Next(last time.Time) time.Time {
	loc := p.Location
	if loc == nil {
		loc = last.Location()
	}
	return monthgrid.StartOfDay(last.Add(24*time.Hour), loc)
}

// IntervalPolicy reloads a fixed duration after last.
type IntervalPolicy struct {
	Every time.Duration
}

func (p IntervalPolicy) Next(last time.Time) time.Time {
	if p.Every <= 0 {
		return time.Time{}
	}
	return last.Add(p.Every)
}

// NeverPolicy never asks for a reload.
type NeverPolicy struct{}

func (NeverPolicy) Next(time.Time) time.Time { return time.Time{} }
