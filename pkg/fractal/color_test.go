package fractal

import (
	"image/color"
	"testing"
)

func TestValue(t *testing.T) {
	tests := []struct {
		n       float64
		maxIter uint64
		want    uint8
	}{
		{15, 15, 0},
		{14.999, 15, 255},
		{0, 15, 255},
		{-2.5, 15, 255},
		{15.4, 15, 0},
		{1, 1, 0},
	}

	for _, tt := range tests {
		if got := Value(tt.n, tt.maxIter); got != tt.want {
			t.Errorf("Value(%v, %d) = %d, want %d", tt.n, tt.maxIter, got, tt.want)
		}
	}
}

func TestHue(t *testing.T) {
	tests := []struct {
		n       float64
		maxIter uint64
		want    float64
	}{
		{0, 15, 0},
		{15, 15, 255},
		{7.5, 15, 127},
		{1, 255, 1},
		{0.99, 255, 0},
		{-3, 15, 0},
	}

	for _, tt := range tests {
		if got := Hue(tt.n, tt.maxIter); got != tt.want {
			t.Errorf("Hue(%v, %d) = %v, want %v", tt.n, tt.maxIter, got, tt.want)
		}
	}
}

func TestColorizeInSetIsBlack(t *testing.T) {
	for _, maxIter := range []uint64{1, 15, 1000} {
		got := Colorize(float64(maxIter), maxIter)
		want := color.RGBA{A: 0xff}
		if got != want {
			t.Errorf("Colorize(%d, %d) = %v, want %v", maxIter, maxIter, got, want)
		}
	}
}

func TestColorizeKnownHues(t *testing.T) {
	tests := []struct {
		name string
		n    float64
		want color.RGBA
	}{
		{"hue 0 is red", 0, color.RGBA{R: 255, A: 255}},
		{"hue 127 is green-ish", 7.5, color.RGBA{G: 255, B: 30, A: 255}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Colorize(tt.n, 15); got != tt.want {
				t.Errorf("Colorize(%v, 15) = %v, want %v", tt.n, got, tt.want)
			}
		})
	}
}

func TestColorizeEscapedAtFullBrightness(t *testing.T) {
	const maxIter = 15
	for n := -2.0; n < maxIter; n += 0.25 {
		c := Colorize(n, maxIter)
		if c.A != 0xff {
			t.Fatalf("Colorize(%v) alpha = %d, want 255", n, c.A)
		}
		// Full saturation and value: the brightest channel is at 255 and the
		// darkest at 0.
		hi := max(c.R, c.G, c.B)
		lo := min(c.R, c.G, c.B)
		if hi != 255 || lo != 0 {
			t.Errorf("Colorize(%v) = %v, want one channel at 255 and one at 0", n, c)
		}
	}
}
