package convert

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
)

// Panel is the pixel geometry of a 1bpp ink + accent display.
type Panel struct {
	Width  int
	Height int
}

// Stride is the number of bytes per packed row.
func (p Panel) Stride() int { return (p.Width + 7) / 8 }

// PlaneSize is the number of bytes in one packed plane.
func (p Panel) PlaneSize() int { return p.Stride() * p.Height }

// Pack converts img into packed ink/accent planes for p.
//
//   - img width must equal p.Width; taller images are centre-cropped.
//   - Planes are y-major, MSB-first: byte y*Stride + x/8, mask 0x80 >> (x%8).
//   - Every bit starts at 1 (white); ink clears it to 0.
//   - Transparent pixels are white, dark pixels go to the ink plane and
//     clearly red pixels (the today highlight) to the accent plane.
func Pack(img image.Image, p Panel) (ink, accent []byte, err error) {
	if p.Width <= 0 || p.Height <= 0 {
		return nil, nil, fmt.Errorf("convert: invalid panel %dx%d", p.Width, p.Height)
	}
	if img == nil {
		return nil, nil, errors.New("convert: nil image")
	}

	src := toNRGBA(img)
	b := src.Bounds()
	if b.Dx() != p.Width {
		return nil, nil, fmt.Errorf("convert: expected width %d, got %d", p.Width, b.Dx())
	}
	if b.Dy() < p.Height {
		return nil, nil, fmt.Errorf("convert: expected height >= %d, got %d", p.Height, b.Dy())
	}

	startY := (b.Dy() - p.Height) / 2
	stride := p.Stride()

	ink = make([]byte, p.PlaneSize())
	accent = make([]byte, p.PlaneSize())
	for i := range ink {
		ink[i] = 0xFF
		accent[i] = 0xFF
	}

	for py := 0; py < p.Height; py++ {
		rowOff := (startY + py) * src.Stride
		for px := 0; px < p.Width; px++ {
			i := rowOff + px*4
			c := color.NRGBA{R: src.Pix[i], G: src.Pix[i+1], B: src.Pix[i+2], A: src.Pix[i+3]}
			if c.A < 128 {
				continue
			}

			idx := py*stride + px>>3
			mask := byte(0x80 >> (px & 7))

			switch classifyPixel(c) {
			case inkBlack:
				ink[idx] &^= mask
			case inkAccent:
				accent[idx] &^= mask
			}
		}
	}

	return ink, accent, nil
}

// DecodePNG reads a PNG file.
func DecodePNG(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("convert: decode %s: %w", path, err)
	}
	return img, nil
}

func toNRGBA(img image.Image) *image.NRGBA {
	if n, ok := img.(*image.NRGBA); ok && n.Bounds().Min == (image.Point{}) {
		return n
	}
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

type inkColor int

const (
	inkWhite inkColor = iota
	inkBlack
	inkAccent
)

// classifyPixel buckets a pixel by luma Y = 0.299R + 0.587G + 0.114B and
// redness R - max(G, B): Y < 64 is ink, R > 128 with redness > 32 is
// accent, the rest is white.
func classifyPixel(c color.NRGBA) inkColor {
	r, g, b := float64(c.R), float64(c.G), float64(c.B)

	y := 0.299*r + 0.587*g + 0.114*b
	redness := r - max(g, b)

	if y < 64 {
		return inkBlack
	}
	if r > 128 && redness > 32 {
		return inkAccent
	}
	return inkWhite
}
