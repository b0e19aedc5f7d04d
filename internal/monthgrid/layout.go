package monthgrid

import "math"

// DefaultTitleRows reserves one cell-high strip above the grid for a title.
const DefaultTitleRows = 1

// Layout is the drawing area available to a grid.
type Layout struct {
	Width     float64
	Height    float64
	TitleRows int
}

// Geometry is the uniform square-cell layout of a grid.
type Geometry struct {
	Rows     int
	Columns  int
	CellSize float64
}

// Geometry fits g into l.
func (l Layout) Geometry(g Grid) Geometry {
	rows := g.RowCount()
	return Geometry{
		Rows:     rows,
		Columns:  DaysPerWeek,
		CellSize: CellSize(l.Width, l.Height, rows, l.TitleRows),
	}
}

// CellSize returns min(width/7, height/(rows+titleRows)). Negative inputs
// are treated as zero, so the result is never negative.
func CellSize(width, height float64, rows, titleRows int) float64 {
	width = nonNegative(width)
	height = nonNegative(height)
	if rows < 0 {
		rows = 0
	}
	if titleRows < 0 {
		titleRows = 0
	}

	size := width / DaysPerWeek
	if n := rows + titleRows; n > 0 {
		size = math.Min(size, height/float64(n))
	}
	return size
}

func nonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
