// Package monthgrid computes the day cells of a one-month calendar grid and
// the geometry needed to fit it into a bounded area.
//
// Every function in this package is pure and safe for concurrent use.
package monthgrid

import (
	"fmt"
	"time"
)

// CellKind distinguishes leading placeholders from day cells.
type CellKind uint8

const (
	// CellEmpty is a leading blank before day 1.
	CellEmpty CellKind = iota
	// CellDay carries a calendar day.
	CellDay
)

func (k CellKind) String() string {
	switch k {
	case CellEmpty:
		return "empty"
	case CellDay:
		return "day"
	default:
		return fmt.Sprintf("CellKind(%d)", uint8(k))
	}
}

// Cell is one grid slot. Day, Date and Today are zero for empty cells.
type Cell struct {
	Kind  CellKind
	Day   int
	Date  time.Time
	Today bool
}

// IsEmpty reports whether c is a leading placeholder.
func (c Cell) IsEmpty() bool { return c.Kind == CellEmpty }

// Grid is the ordered cell sequence of one month. Empty cells only ever
// form a prefix; the last row may be partial.
type Grid struct {
	// Month is the first instant of the first day of the month.
	Month      time.Time
	LeadOffset int
	Days       int
	Cells      []Cell
}

// Len returns the number of cells including leading blanks.
func (g Grid) Len() int { return len(g.Cells) }

// RowCount returns the number of week rows needed for g.
func (g Grid) RowCount() int { return RowCount(len(g.Cells)) }

// Today returns the cell flagged as today, if the reference date falls
// inside the grid's month.
func (g Grid) Today() (Cell, bool) {
	for _, c := range g.Cells[g.LeadOffset:] {
		if c.Today {
			return c, true
		}
	}
	return Cell{}, false
}

// Compute builds the grid for the month containing ref.
func Compute(ref time.Time, cal Calendar) (Grid, error) {
	if cal == nil {
		return Grid{}, configErr("calendar is nil", nil)
	}

	first, days, err := cal.MonthRange(ref)
	if err != nil {
		return Grid{}, configErr("cannot resolve month range", err)
	}
	if days < 28 || days > 31 {
		return Grid{}, configErr(fmt.Sprintf("month has %d days", days), nil)
	}
	if first.Day() != 1 {
		return Grid{}, configErr(fmt.Sprintf("month starts on day %d", first.Day()), nil)
	}
	if first.Add(-time.Nanosecond).Day() == first.Day() {
		return Grid{}, configErr("month start is not the start of a day", nil)
	}
	weekStart := cal.FirstWeekday()
	if weekStart < time.Sunday || weekStart > time.Saturday {
		return Grid{}, configErr(fmt.Sprintf("week start %d out of range", int(weekStart)), nil)
	}

	lead := (int(first.Weekday()) - int(weekStart) + DaysPerWeek) % DaysPerWeek

	cells := make([]Cell, lead, lead+days)
	for day := 1; day <= days; day++ {
		date := DayStart(first.Year(), first.Month(), day, first.Location())
		cells = append(cells, Cell{
			Kind:  CellDay,
			Day:   day,
			Date:  date,
			Today: cal.SameDay(date, ref),
		})
	}

	return Grid{
		Month:      first,
		LeadOffset: lead,
		Days:       days,
		Cells:      cells,
	}, nil
}

// RowCount returns ceil(length/7); lengths <= 0 need no rows.
func RowCount(length int) int {
	if length <= 0 {
		return 0
	}
	return (length + DaysPerWeek - 1) / DaysPerWeek
}
