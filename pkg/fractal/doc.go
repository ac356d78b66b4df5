// Package fractal renders escape-time images of the Mandelbrot set.
//
// # Overview
//
// A render is a three stage pipeline evaluated once per pixel:
//
//  1. [Region] maps a pixel index to a point c of the complex plane
//  2. [Escape] iterates z ← z² + c from z = 0 and returns a smoothed escape time
//  3. [Colorize] turns the escape time into an RGB colour (HSV with full
//     saturation; black for points that never escaped)
//
// [Render] drives the three stages over every pixel of the region and returns a
// fully populated [Grid]. Encoding the grid to a file is left to the sink package.
//
// # Orientation
//
// Row y of the grid maps to LowerLeft.im + y/Density, and row 0 is the first
// row written to the image file. An encoded image therefore shows the lower
// imaginary bound of the region at the top.
//
// # Usage
//
//	r := fractal.NewRegion(-1.5, -0.5, 0.0, 0.0, 3000)
//	grid, err := fractal.Render(r, 15)
//	if err != nil {
//	    return err
//	}
//	png.Encode(w, grid.Image())
//
// Every pixel depends only on the immutable region, so a grid could be filled
// by independent workers over disjoint rows. [Render] fills it sequentially.
package fractal
