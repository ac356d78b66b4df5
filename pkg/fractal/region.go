package fractal

import (
	"fmt"
	"image"
	"math"

	errs "github.com/matzehuels/mandel/pkg/errors"
)

// MaxPixels caps the pixel count of a valid region. An RGBA grid of this size
// takes 1 GiB.
const MaxPixels = 1 << 28

// Region is a rectangular window of the complex plane sampled at a fixed
// number of pixels per unit length. It is an immutable value.
type Region struct {
	LowerLeft  complex128
	UpperRight complex128
	Density    float64 // pixels per unit length
}

// NewRegion builds a region from its lower-left corner (x1, y1), its
// upper-right corner (x2, y2) and a density in pixels per unit.
func NewRegion(x1, y1, x2, y2, density float64) Region {
	return Region{
		LowerLeft:  complex(x1, y1),
		UpperRight: complex(x2, y2),
		Density:    density,
	}
}

// PixelWidth returns the number of pixel columns, truncated toward zero.
// Inverted regions yield zero or a negative width.
func (r Region) PixelWidth() int {
	return int((real(r.UpperRight) - real(r.LowerLeft)) * r.Density)
}

// PixelHeight returns the number of pixel rows, truncated toward zero.
func (r Region) PixelHeight() int {
	return int((imag(r.UpperRight) - imag(r.LowerLeft)) * r.Density)
}

// XToReal maps a pixel column to the real part of its complex coordinate.
func (r Region) XToReal(px int) float64 {
	return float64(px)/r.Density + real(r.LowerLeft)
}

// YToImag maps a pixel row to the imaginary part of its complex coordinate.
// Row 0 is the lower imaginary bound of the region.
func (r Region) YToImag(py int) float64 {
	return float64(py)/r.Density + imag(r.LowerLeft)
}

// Point returns the complex coordinate sampled by pixel (px, py).
func (r Region) Point(px, py int) complex128 {
	return complex(r.XToReal(px), r.YToImag(py))
}

// Bounds returns the pixel rectangle of the region with negative sizes
// clamped to zero, so degenerate regions produce an empty rectangle.
func (r Region) Bounds() image.Rectangle {
	return image.Rect(0, 0, max(r.PixelWidth(), 0), max(r.PixelHeight(), 0))
}

// Pixels returns the number of pixels in the region, zero when degenerate.
func (r Region) Pixels() int {
	b := r.Bounds()
	return b.Dx() * b.Dy()
}

// Empty reports whether the region covers no pixels at all.
func (r Region) Empty() bool {
	return r.Bounds().Empty()
}

// Validate checks that the region can be rendered: finite corners, a positive
// density, and corners ordered so that the upper-right is not below or left of
// the lower-left.
func (r Region) Validate() error {
	for _, p := range []struct {
		name string
		v    float64
	}{
		{"lower-left real", real(r.LowerLeft)},
		{"lower-left imaginary", imag(r.LowerLeft)},
		{"upper-right real", real(r.UpperRight)},
		{"upper-right imaginary", imag(r.UpperRight)},
	} {
		if err := errs.ValidateFinite(p.name, p.v); err != nil {
			return err
		}
	}

	if math.IsNaN(r.Density) || math.IsInf(r.Density, 0) || r.Density <= 0 {
		return errs.New(errs.ErrCodeInvalidDensity, "density must be a positive number, got %v", r.Density)
	}

	if real(r.UpperRight) < real(r.LowerLeft) || imag(r.UpperRight) < imag(r.LowerLeft) {
		return errs.New(errs.ErrCodeInvalidRegion,
			"upper-right corner %v must not be below or left of lower-left corner %v",
			r.UpperRight, r.LowerLeft)
	}

	// The float product can exceed the int range before truncation.
	const maxSide = 1 << 20
	w := (real(r.UpperRight) - real(r.LowerLeft)) * r.Density
	h := (imag(r.UpperRight) - imag(r.LowerLeft)) * r.Density
	if w > maxSide || h > maxSide {
		return errs.New(errs.ErrCodeImageTooLarge,
			"region is %.0f×%.0f pixels (max %d per side)", w, h, maxSide)
	}
	if w*h > MaxPixels {
		return errs.New(errs.ErrCodeImageTooLarge,
			"region is %.0f×%.0f = %.0f pixels (max %d)", w, h, w*h, MaxPixels)
	}
	return nil
}

// String formats the region as "(re,im)…(re,im) @ density".
func (r Region) String() string {
	return fmt.Sprintf("(%g,%g)…(%g,%g) @ %g px/unit",
		real(r.LowerLeft), imag(r.LowerLeft),
		real(r.UpperRight), imag(r.UpperRight),
		r.Density)
}
