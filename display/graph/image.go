package graph

import (
	"fmt"
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/lucasb-eyer/go-colorful"
)

// imageBackground matches the dark terminal theme.
var imageBackground = color.NRGBA{R: 0x11, G: 0x18, B: 0x27, A: 0xff}

// Image plots every series as a polyline on a width x height canvas, oldest
// sample at the left edge and newest at the right.
func (g *Graph) Image(width, height int) (*image.NRGBA, error) {
	if width < 2 || height < 2 {
		return nil, fmt.Errorf("graph: image size %dx%d too small", width, height)
	}

	img := imaging.New(width, height, imageBackground)
	n := g.Len()
	scale := g.scaleMax(0)

	px := func(i int) int {
		if n == 1 {
			return width - 1
		}
		return i * (width - 1) / (n - 1)
	}
	py := func(v float64) int {
		if v < 0 {
			v = 0
		}
		if v > scale {
			v = scale
		}
		return (height - 1) - int(v/scale*float64(height-1)+0.5)
	}

	for si, r := range g.series {
		c := g.nrgba(si)
		x0, y0 := px(0), py(r.At(0))
		img.SetNRGBA(x0, y0, c)
		for i := 1; i < n; i++ {
			x1, y1 := px(i), py(r.At(i))
			line(img, x0, y0, x1, y1, c)
			x0, y0 = x1, y1
		}
	}
	return img, nil
}

// SavePNG writes Image(width, height) to path. The format follows the file
// extension, so ".jpg" works as well.
func (g *Graph) SavePNG(path string, width, height int) error {
	img, err := g.Image(width, height)
	if err != nil {
		return err
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("graph: save %s: %w", path, err)
	}
	return nil
}

// nrgba converts the lipgloss color of series i. Non-hex colors (ANSI
// palette indexes) fall back to white.
func (g *Graph) nrgba(i int) color.NRGBA {
	c, err := colorful.Hex(string(g.Color(i)))
	if err != nil {
		return color.NRGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	r, gr, b := c.Clamped().RGB255()
	return color.NRGBA{R: r, G: gr, B: b, A: 0xff}
}

// line draws from (x0,y0) to (x1,y1) with Bresenham's algorithm.
func line(img *image.NRGBA, x0, y0, x1, y1 int, c color.NRGBA) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for {
		img.SetNRGBA(x0, y0, c)
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
