package fractal

import (
	errs "github.com/matzehuels/mandel/pkg/errors"
)

// RowHook is called after each completed row with the number of rows done
// and the total. Returning an error aborts the render.
type RowHook func(done, total int) error

// RenderOption configures [Render].
type RenderOption func(*renderer)

type renderer struct {
	rowHook RowHook
}

// WithRowHook installs a hook that observes progress and may abort the render.
func WithRowHook(h RowHook) RenderOption {
	return func(r *renderer) { r.rowHook = h }
}

// ValidateIterations checks that the iteration cap is positive.
func ValidateIterations(maxIter uint64) error {
	if maxIter == 0 {
		return errs.New(errs.ErrCodeInvalidIterations, "max iterations must be positive")
	}
	return nil
}

// Render evaluates every pixel of region r and returns the populated grid.
//
// Pixels are visited in row-major order: for each row y, every column x is
// mapped to c = r.Point(x, y), evaluated with [Escape] and coloured with
// [Colorize]. Each pixel is written exactly once.
//
// Invalid regions and a zero iteration cap are rejected. A region that is valid
// but too small to cover a single pixel renders to an empty grid.
func Render(r Region, maxIter uint64, opts ...RenderOption) (*Grid, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if err := ValidateIterations(maxIter); err != nil {
		return nil, err
	}

	rd := renderer{}
	for _, opt := range opts {
		opt(&rd)
	}

	bounds := r.Bounds()
	grid := NewGrid(bounds)
	w, h := bounds.Dx(), bounds.Dy()

	for y := 0; y < h; y++ {
		im := r.YToImag(y)
		for x := 0; x < w; x++ {
			c := complex(r.XToReal(x), im)
			grid.Set(x, y, Colorize(Escape(c, maxIter), maxIter))
		}
		if rd.rowHook != nil {
			if err := rd.rowHook(y+1, h); err != nil {
				return nil, err
			}
		}
	}
	return grid, nil
}
