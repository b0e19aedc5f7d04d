package monthgrid

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sundayUTC() Gregorian { return NewGregorian(time.Sunday, time.UTC) }

func TestComputeSeptember2023(t *testing.T) {
	ref := time.Date(2023, time.September, 20, 14, 37, 0, 0, time.UTC)

	g, err := Compute(ref, sundayUTC())
	require.NoError(t, err)

	assert.Equal(t, 5, g.LeadOffset)
	assert.Equal(t, 30, g.Days)
	assert.Equal(t, 35, g.Len())
	assert.Equal(t, 5, g.RowCount())
	assert.Equal(t, time.Date(2023, time.September, 1, 0, 0, 0, 0, time.UTC), g.Month)

	for i, c := range g.Cells {
		if i < 5 {
			assert.True(t, c.IsEmpty(), "cell %d", i)
			assert.Zero(t, c.Day)
			assert.False(t, c.Today)
			continue
		}
		day := i - 4
		assert.Equal(t, CellDay, c.Kind)
		assert.Equal(t, day, c.Day)
		assert.Equal(t, time.Date(2023, time.September, day, 0, 0, 0, 0, time.UTC), c.Date)
		assert.Equal(t, day == 20, c.Today, "day %d", day)
	}

	today, ok := g.Today()
	require.True(t, ok)
	assert.Equal(t, 20, today.Day)
}

func TestComputeWeekStart(t *testing.T) {
	ref := time.Date(2023, time.September, 20, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		start time.Weekday
		lead  int
	}{
		{time.Sunday, 5},
		{time.Monday, 4},
		{time.Friday, 0},
		{time.Saturday, 6},
	}

	for _, tt := range tests {
		g, err := Compute(ref, NewGregorian(tt.start, time.UTC))
		require.NoError(t, err)
		assert.Equal(t, tt.lead, g.LeadOffset, "week start %v", tt.start)
		assert.Equal(t, tt.lead+30, g.Len())
	}
}

func TestComputeFebruary(t *testing.T) {
	leap, err := Compute(time.Date(2024, time.February, 10, 0, 0, 0, 0, time.UTC), sundayUTC())
	require.NoError(t, err)
	assert.Equal(t, 29, leap.Days)
	assert.Equal(t, 29, leap.Len()-leap.LeadOffset)

	plain, err := Compute(time.Date(2023, time.February, 10, 0, 0, 0, 0, time.UTC), sundayUTC())
	require.NoError(t, err)
	assert.Equal(t, 28, plain.Days)
	// Feb 1 2023 is a Wednesday.
	assert.Equal(t, 3, plain.LeadOffset)

	century, err := Compute(time.Date(1900, time.February, 1, 0, 0, 0, 0, time.UTC), sundayUTC())
	require.NoError(t, err)
	assert.Equal(t, 28, century.Days)
}

func TestComputeInvariantsAcrossYears(t *testing.T) {
	cal := NewGregorian(time.Monday, time.UTC)
	for year := 2020; year <= 2028; year++ {
		for m := time.January; m <= time.December; m++ {
			ref := time.Date(year, m, 15, 12, 0, 0, 0, time.UTC)
			g, err := Compute(ref, cal)
			require.NoError(t, err)

			assert.Equal(t, g.LeadOffset+DaysIn(year, m), g.Len())
			assert.GreaterOrEqual(t, g.LeadOffset, 0)
			assert.Less(t, g.LeadOffset, DaysPerWeek)

			seenDay := false
			todays := 0
			for i, c := range g.Cells {
				if c.IsEmpty() {
					assert.False(t, seenDay, "blank after a day cell in %d-%02d", year, m)
					continue
				}
				seenDay = true
				if c.Today {
					todays++
				}
				col := time.Weekday((int(cal.FirstWeekday()) + i) % DaysPerWeek)
				assert.Equal(t, col, c.Date.Weekday(), "column of %s", c.Date.Format(time.DateOnly))
			}
			assert.Equal(t, 1, todays)
		}
	}
}

func TestComputeIsIdempotent(t *testing.T) {
	ref := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)
	a, err := Compute(ref, sundayUTC())
	require.NoError(t, err)
	b, err := Compute(ref, sundayUTC())
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestComputeUsesCalendarLocation(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	// 23:30 UTC on Sep 30 is already Oct 1 in Seoul.
	ref := time.Date(2023, time.September, 30, 23, 30, 0, 0, time.UTC)

	g, err := Compute(ref, NewGregorian(time.Sunday, seoul))
	require.NoError(t, err)
	assert.Equal(t, time.October, g.Month.Month())
	assert.Equal(t, 31, g.Days)

	today, ok := g.Today()
	require.True(t, ok)
	assert.Equal(t, 1, today.Day)
	assert.Equal(t, seoul, today.Date.Location())
}

func TestComputeAcrossDSTKeepsMidnight(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	g, err := Compute(time.Date(2024, time.March, 20, 12, 0, 0, 0, ny), NewGregorian(time.Sunday, ny))
	require.NoError(t, err)
	for _, c := range g.Cells[g.LeadOffset:] {
		h, m, s := c.Date.Clock()
		assert.Equal(t, [3]int{0, 0, 0}, [3]int{h, m, s}, "day %d", c.Day)
	}
}

func TestComputeMonthStartingInDSTGap(t *testing.T) {
	// Asuncion skipped 2023-10-01 00:00, clocks jumped to 01:00.
	asu, err := time.LoadLocation("America/Asuncion")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}

	ref := time.Date(2023, time.October, 15, 12, 0, 0, 0, asu)
	g, err := Compute(ref, NewGregorian(time.Sunday, asu))
	require.NoError(t, err)

	assert.Equal(t, 31, g.Days)
	assert.Equal(t, 0, g.LeadOffset)
	assert.Equal(t, 1, g.Month.Day())
	assert.Equal(t, time.October, g.Month.Month())
	assert.True(t, g.Month.Equal(time.Date(2023, time.October, 1, 4, 0, 0, 0, time.UTC)), g.Month.String())

	for _, c := range g.Cells[g.LeadOffset:] {
		assert.Equal(t, c.Day, c.Date.Day(), "day %d", c.Day)
		assert.Equal(t, time.October, c.Date.Month(), "day %d", c.Day)
	}
	today, ok := g.Today()
	require.True(t, ok)
	assert.Equal(t, 15, today.Day)

	start := StartOfDay(time.Date(2023, time.October, 1, 9, 0, 0, 0, asu), asu)
	assert.Equal(t, 1, start.Day())
	assert.True(t, start.Equal(g.Month))
}

func TestComputeZeroReference(t *testing.T) {
	// 0001-01-01 is a Monday in the proleptic Gregorian calendar.
	g, err := Compute(time.Time{}, sundayUTC())
	require.NoError(t, err)
	assert.Equal(t, 31, g.Days)
	assert.Equal(t, 1, g.LeadOffset)
	today, ok := g.Today()
	require.True(t, ok)
	assert.Equal(t, 1, today.Day)
}

// fixedCalendar always reports the same month regardless of ref.
type fixedCalendar struct {
	first   time.Time
	days    int
	weekday time.Weekday
	err     error
}

func (f fixedCalendar) FirstWeekday() time.Weekday { return f.weekday }

func (f fixedCalendar) MonthRange(time.Time) (time.Time, int, error) {
	return f.first, f.days, f.err
}

func (f fixedCalendar) SameDay(a, b time.Time) bool {
	return sundayUTC().SameDay(a, b)
}

func TestComputeReferenceOutsideMonth(t *testing.T) {
	cal := fixedCalendar{first: time.Date(2023, time.January, 1, 0, 0, 0, 0, time.UTC), days: 31}

	g, err := Compute(time.Date(2023, time.September, 20, 0, 0, 0, 0, time.UTC), cal)
	require.NoError(t, err)
	assert.Equal(t, 31, g.Days)
	_, ok := g.Today()
	assert.False(t, ok)
}

func TestComputeConfigurationErrors(t *testing.T) {
	ref := time.Date(2023, time.September, 20, 0, 0, 0, 0, time.UTC)
	sep1 := time.Date(2023, time.September, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		cal  Calendar
	}{
		{"nil calendar", nil},
		{"no location", Gregorian{WeekStart: time.Sunday}},
		{"week start out of range", Gregorian{WeekStart: 9, Location: time.UTC}},
		{"range error", fixedCalendar{err: errors.New("unsupported era")}},
		{"short month", fixedCalendar{first: sep1, days: 27}},
		{"long month", fixedCalendar{first: sep1, days: 32}},
		{"not first day", fixedCalendar{first: sep1.AddDate(0, 0, 1), days: 30}},
		{"not start of day", fixedCalendar{first: sep1.Add(time.Hour), days: 30}},
		{"bad weekday", fixedCalendar{first: sep1, days: 30, weekday: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Compute(ref, tt.cal)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrConfiguration)

			var cerr *ConfigurationError
			assert.ErrorAs(t, err, &cerr)
			assert.Nil(t, g.Cells)
		})
	}
}

func TestConfigurationErrorUnwrap(t *testing.T) {
	cause := errors.New("unsupported era")
	_, err := Compute(time.Now(), fixedCalendar{err: cause})
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "unsupported era")
}

func TestRowCount(t *testing.T) {
	tests := []struct {
		length int
		rows   int
	}{
		{-3, 0},
		{0, 0},
		{1, 1},
		{7, 1},
		{8, 2},
		{14, 2},
		{30, 5},
		{35, 5},
		{36, 6},
		{37, 6},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.rows, RowCount(tt.length), "length %d", tt.length)
	}

	prev := 0
	for n := 0; n <= 50; n++ {
		r := RowCount(n)
		assert.GreaterOrEqual(t, r, prev)
		prev = r
	}
}

func TestParseWeekday(t *testing.T) {
	for in, want := range map[string]time.Weekday{
		"sunday":   time.Sunday,
		"Monday":   time.Monday,
		" SAT ":    time.Saturday,
		"wed":      time.Wednesday,
		"Thursday": time.Thursday,
	} {
		got, err := ParseWeekday(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseWeekday("")
	assert.Error(t, err)
	_, err = ParseWeekday("moonday")
	assert.Error(t, err)
}

func TestStartOfDay(t *testing.T) {
	loc := time.FixedZone("X", -5*60*60)
	got := StartOfDay(time.Date(2023, time.September, 21, 2, 0, 0, 0, time.UTC), loc)
	assert.Equal(t, time.Date(2023, time.September, 20, 0, 0, 0, 0, loc), got)
}
