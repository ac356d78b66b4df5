package fractal

import (
	"fmt"
	"image"
	"image/color"
)

// Grid is a width × height raster of opaque RGB pixels.
//
// A Grid is written by exactly one render and read-only afterwards. Writing
// outside its bounds is a broken mapping invariant and panics.
type Grid struct {
	img *image.RGBA
}

// NewGrid allocates a grid covering the given bounds. Every pixel starts
// opaque black.
func NewGrid(bounds image.Rectangle) *Grid {
	img := image.NewRGBA(bounds)
	for i := 3; i < len(img.Pix); i += 4 {
		img.Pix[i] = 0xff
	}
	return &Grid{img: img}
}

// Width returns the number of pixel columns.
func (g *Grid) Width() int { return g.img.Rect.Dx() }

// Height returns the number of pixel rows.
func (g *Grid) Height() int { return g.img.Rect.Dy() }

// Bounds returns the pixel rectangle of the grid.
func (g *Grid) Bounds() image.Rectangle { return g.img.Rect }

// Set writes the colour of pixel (x, y).
func (g *Grid) Set(x, y int, c color.RGBA) {
	if !(image.Point{X: x, Y: y}).In(g.img.Rect) {
		panic(fmt.Sprintf("fractal: pixel (%d,%d) outside grid %v", x, y, g.img.Rect))
	}
	g.img.SetRGBA(x, y, c)
}

// At returns the colour of pixel (x, y).
func (g *Grid) At(x, y int) color.RGBA {
	return g.img.RGBAAt(x, y)
}

// Image exposes the grid as an image for encoders. The returned image shares
// memory with the grid and must not be modified.
func (g *Grid) Image() image.Image { return g.img }

// Bytes returns the raw RGBA pixel buffer in row-major order.
func (g *Grid) Bytes() []byte { return g.img.Pix }
