package fractal_test

import (
	"fmt"

	"github.com/matzehuels/mandel/pkg/fractal"
)

func ExampleRegion() {
	r := fractal.NewRegion(-1.5, -0.5, 0.0, 0.0, 3000)

	fmt.Println("Size:", r.PixelWidth(), "x", r.PixelHeight())
	fmt.Println("Pixel (0,0):", r.Point(0, 0))
	// Output:
	// Size: 4500 x 1500
	// Pixel (0,0): (-1.5-0.5i)
}

func ExampleEscape() {
	fmt.Println(fractal.Escape(0, 15))
	fmt.Printf("%.4f\n", fractal.Escape(2, 15))
	// Output:
	// 15
	// 2.5288
}

func ExampleColorize() {
	fmt.Println(fractal.Colorize(15, 15))
	fmt.Println(fractal.Colorize(0, 15))
	// Output:
	// {0 0 0 255}
	// {255 0 0 255}
}

func ExampleRender() {
	grid, err := fractal.Render(fractal.NewRegion(-2, -1, 1, 1, 10), 30)
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println("Grid:", grid.Width(), "x", grid.Height())
	// Output:
	// Grid: 30 x 20
}

func ExampleLookupPreset() {
	p, err := fractal.LookupPreset("classic")
	if err != nil {
		fmt.Println("Error:", err)
		return
	}
	fmt.Println(p.Region, "max_iter", p.MaxIter)
	// Output:
	// (-1.5,-0.5)…(0,0) @ 3000 px/unit max_iter 15
}
