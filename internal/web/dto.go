package web

import (
	"time"

	"monthcal/internal/monthgrid"
	"monthcal/internal/widget"
)

// cellDTO is the JSON form of a grid cell; empty cells carry only kind.
type cellDTO struct {
	Kind  string     `json:"kind"`
	Day   int        `json:"day,omitempty"`
	Date  *time.Time `json:"date,omitempty"`
	Today bool       `json:"today,omitempty"`
}

// entryDTO is the JSON response shape for one complication entry.
type entryDTO struct {
	Date       time.Time `json:"date"`
	Title      string    `json:"title"`
	Month      time.Time `json:"month"`
	LeadOffset int       `json:"lead_offset"`
	Days       int       `json:"days"`
	Rows       int       `json:"rows"`
	Columns    int       `json:"columns"`
	CellSize   float64   `json:"cell_size"`
	TitleRows  int       `json:"title_rows"`
	WeekStart  string    `json:"week_start,omitempty"`
	StaleAt    time.Time `json:"stale_at,omitzero"`
	Cells      []cellDTO `json:"cells"`
}

type timelineResponse struct {
	Entries []entryDTO `json:"entries"`
	Reload  time.Time  `json:"reload,omitzero"`
}

func newEntryDTO(e widget.Entry, layout monthgrid.Layout) entryDTO {
	geo := layout.Geometry(e.Grid)
	cells := make([]cellDTO, 0, len(e.Grid.Cells))
	for _, c := range e.Grid.Cells {
		if c.IsEmpty() {
			cells = append(cells, cellDTO{Kind: c.Kind.String()})
			continue
		}
		date := c.Date
		cells = append(cells, cellDTO{
			Kind:  c.Kind.String(),
			Day:   c.Day,
			Date:  &date,
			Today: c.Today,
		})
	}

	return entryDTO{
		Date:       e.Date,
		Title:      e.Title,
		Month:      e.Grid.Month,
		LeadOffset: e.Grid.LeadOffset,
		Days:       e.Grid.Days,
		Rows:       geo.Rows,
		Columns:    geo.Columns,
		CellSize:   geo.CellSize,
		TitleRows:  layout.TitleRows,
		Cells:      cells,
	}
}
