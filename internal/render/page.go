package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"strconv"

	"monthcal/internal/monthgrid"
	"monthcal/internal/widget"
)

//go:embed templates/complication.html
var templateFS embed.FS

var pageTmpl = template.Must(
	template.New("complication.html").
		Funcs(template.FuncMap{"px": px}).
		ParseFS(templateFS, "templates/complication.html"),
)

// Theme holds CSS colors for the page.
type Theme struct {
	Accent     string
	Neutral    string
	Background string
	Foreground string
}

// DefaultTheme is white text on black with a red accent for today.
func DefaultTheme() Theme {
	return Theme{
		Accent:     "#e5484d",
		Neutral:    "#2b2b2b",
		Background: "#000000",
		Foreground: "#ffffff",
	}
}

type cssTheme struct {
	Accent     template.CSS
	Neutral    template.CSS
	Background template.CSS
	Foreground template.CSS
}

func (t Theme) css() cssTheme {
	def := DefaultTheme()
	return cssTheme{
		Accent:     cssColor(t.Accent, def.Accent),
		Neutral:    cssColor(t.Neutral, def.Neutral),
		Background: cssColor(t.Background, def.Background),
		Foreground: cssColor(t.Foreground, def.Foreground),
	}
}

type pageData struct {
	Title       string
	Error       string
	Width       float64
	Height      float64
	Rows        int
	CellSize    float64
	TitleHeight float64
	TitleFont   float64
	Tiles       []Tile
	Theme       cssTheme
}

// Page writes entry as an HTML complication sized to layout. The root
// element carries data-ready="true" so a headless capture can wait on it.
func Page(w io.Writer, entry widget.Entry, layout monthgrid.Layout, theme Theme) error {
	geo := layout.Geometry(entry.Grid)

	data := pageData{
		Title:       entry.Title,
		Width:       layout.Width,
		Height:      layout.Height,
		Rows:        geo.Rows,
		CellSize:    geo.CellSize,
		TitleHeight: geo.CellSize * float64(max(layout.TitleRows, 0)),
		TitleFont:   geo.CellSize * 0.55,
		Tiles:       Tiles(entry.Grid, geo.CellSize),
		Theme:       theme.css(),
	}
	if entry.Err != nil {
		data.Error = entry.Err.Error()
	}

	if err := pageTmpl.Execute(w, data); err != nil {
		return fmt.Errorf("render: page: %w", err)
	}
	return nil
}

func px(v float64) template.CSS {
	return template.CSS(strconv.FormatFloat(v, 'f', -1, 64) + "px")
}

// cssColor accepts hex, named and rgb()/hsl() colors; anything else
// falls back to def.
func cssColor(v, def string) template.CSS {
	if v == "" || len(v) > 64 {
		return template.CSS(def)
	}
	for _, r := range v {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '#', r == '(', r == ')', r == ',', r == '.', r == '%', r == ' ':
		default:
			return template.CSS(def)
		}
	}
	return template.CSS(v)
}
