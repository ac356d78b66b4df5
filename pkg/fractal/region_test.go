package fractal

import (
	"math"
	"testing"

	errs "github.com/matzehuels/mandel/pkg/errors"
)

func TestRegionReferenceScenario(t *testing.T) {
	r := NewRegion(-1.5, -0.5, 0.0, 0.0, 3000)

	if got := r.PixelWidth(); got != 4500 {
		t.Errorf("PixelWidth() = %d, want 4500", got)
	}
	if got := r.PixelHeight(); got != 1500 {
		t.Errorf("PixelHeight() = %d, want 1500", got)
	}
	if got := r.Point(0, 0); got != complex(-1.5, -0.5) {
		t.Errorf("Point(0, 0) = %v, want (-1.5-0.5i)", got)
	}
	if got := r.Pixels(); got != 4500*1500 {
		t.Errorf("Pixels() = %d, want %d", got, 4500*1500)
	}
	if err := r.Validate(); err != nil {
		t.Errorf("Validate() error = %v", err)
	}
}

func TestRegionOrigin(t *testing.T) {
	regions := []Region{
		NewRegion(-1.5, -0.5, 0, 0, 3000),
		NewRegion(-2, -1.25, 1, 1.25, 1),
		NewRegion(0.25, 0.1, 0.5, 0.2, 0.5),
		NewRegion(3, 4, -3, -4, 7), // inverted corners still map the origin
	}

	for _, r := range regions {
		if got := r.XToReal(0); got != real(r.LowerLeft) {
			t.Errorf("%v: XToReal(0) = %v, want %v", r, got, real(r.LowerLeft))
		}
		if got := r.YToImag(0); got != imag(r.LowerLeft) {
			t.Errorf("%v: YToImag(0) = %v, want %v", r, got, imag(r.LowerLeft))
		}
	}
}

func TestRegionMapping(t *testing.T) {
	r := NewRegion(-1.5, -0.5, 0, 0, 3000)

	tests := []struct {
		px, py int
		want   complex128
	}{
		{3000, 0, complex(-0.5, -0.5)},
		{0, 1500, complex(-1.5, 0)},
		{4500, 1500, complex(0, 0)},
	}

	for _, tt := range tests {
		got := r.Point(tt.px, tt.py)
		if math.Abs(real(got)-real(tt.want)) > 1e-12 || math.Abs(imag(got)-imag(tt.want)) > 1e-12 {
			t.Errorf("Point(%d, %d) = %v, want %v", tt.px, tt.py, got, tt.want)
		}
	}
}

func TestRegionSizesNonNegative(t *testing.T) {
	tests := []struct {
		name  string
		r     Region
		wantW int
		wantH int
	}{
		{"unit square", NewRegion(0, 0, 1, 1, 10), 10, 10},
		{"truncates down", NewRegion(0, 0, 1, 1, 2.9), 2, 2},
		{"sub-pixel", NewRegion(0, 0, 0.001, 0.001, 10), 0, 0},
		{"zero area", NewRegion(1, 1, 1, 1, 100), 0, 0},
		{"wide", NewRegion(-2, 0, 2, 0.5, 4), 16, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.r.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if w := tt.r.PixelWidth(); w != tt.wantW || w < 0 {
				t.Errorf("PixelWidth() = %d, want %d", w, tt.wantW)
			}
			if h := tt.r.PixelHeight(); h != tt.wantH || h < 0 {
				t.Errorf("PixelHeight() = %d, want %d", h, tt.wantH)
			}
		})
	}
}

func TestRegionInvertedIsEmpty(t *testing.T) {
	r := NewRegion(0, 0, -1, -0.5, 100)

	if r.PixelWidth() >= 0 || r.PixelHeight() >= 0 {
		t.Errorf("inverted region sizes = %d×%d, want negative", r.PixelWidth(), r.PixelHeight())
	}
	if !r.Empty() {
		t.Error("inverted region should be empty")
	}
	if r.Pixels() != 0 {
		t.Errorf("Pixels() = %d, want 0", r.Pixels())
	}
}

func TestRegionValidate(t *testing.T) {
	tests := []struct {
		name string
		r    Region
		code errs.Code
	}{
		{"zero density", NewRegion(0, 0, 1, 1, 0), errs.ErrCodeInvalidDensity},
		{"negative density", NewRegion(0, 0, 1, 1, -5), errs.ErrCodeInvalidDensity},
		{"nan density", NewRegion(0, 0, 1, 1, math.NaN()), errs.ErrCodeInvalidDensity},
		{"inf density", NewRegion(0, 0, 1, 1, math.Inf(1)), errs.ErrCodeInvalidDensity},
		{"inverted real", NewRegion(1, 0, 0, 1, 10), errs.ErrCodeInvalidRegion},
		{"inverted imag", NewRegion(0, 1, 1, 0, 10), errs.ErrCodeInvalidRegion},
		{"nan corner", NewRegion(math.NaN(), 0, 1, 1, 10), errs.ErrCodeInvalidRegion},
		{"inf corner", NewRegion(0, 0, 1, math.Inf(1), 10), errs.ErrCodeInvalidRegion},
		{"too large", NewRegion(0, 0, 1e6, 1, 1e6), errs.ErrCodeImageTooLarge},
		{"too many pixels", NewRegion(0, 0, 1, 1, 1e6), errs.ErrCodeImageTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.r.Validate()
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !errs.Is(err, tt.code) {
				t.Errorf("Validate() code = %v, want %v", errs.GetCode(err), tt.code)
			}
		})
	}
}

func TestRegionString(t *testing.T) {
	r := NewRegion(-1.5, -0.5, 0, 0, 3000)
	want := "(-1.5,-0.5)…(0,0) @ 3000 px/unit"
	if got := r.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
