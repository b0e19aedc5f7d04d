// Package render maps month grid cells to visual tiles and renders the
// complication as a self-contained HTML page.
package render

import (
	"strconv"

	"monthcal/internal/monthgrid"
)

// Tile is the visual form of one grid cell.
type Tile struct {
	Blank     bool
	Label     string
	Highlight bool
	Size      float64
	Radius    float64
	FontSize  float64
}

// TileFor maps a cell to a tile of the given edge length.
func TileFor(c monthgrid.Cell, size float64) Tile {
	if size < 0 {
		size = 0
	}
	if c.IsEmpty() {
		return Tile{Blank: true, Size: size}
	}
	return Tile{
		Label:     strconv.Itoa(c.Day),
		Highlight: c.Today,
		Size:      size,
		Radius:    size / 4,
		FontSize:  size / 2,
	}
}

// Tiles maps every cell of g.
func Tiles(g monthgrid.Grid, size float64) []Tile {
	out := make([]Tile, len(g.Cells))
	for i, c := range g.Cells {
		out[i] = TileFor(c, size)
	}
	return out
}
