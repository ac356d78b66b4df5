package fractal

import "math"

// EscapeRadius is the orbit magnitude at which a point is considered escaped.
const EscapeRadius = 2.0

// Escape iterates z ← z² + c from z = 0 until |z| reaches [EscapeRadius] or
// maxIter steps have been taken.
//
// A point that is still bounded after maxIter steps is presumed to be in the
// set and yields exactly float64(maxIter). Otherwise the result is the smoothed
// escape time n + 1 − log2(ln|z|), where n is the number of steps taken and z
// the first orbit value outside the radius.
//
// The smoothed value is not confined to [0, maxIter]. It goes negative for
// points far outside the set, and a point escaping on the last step before
// the cap can land above maxIter, which [Colorize] paints black.
func Escape(c complex128, maxIter uint64) float64 {
	var (
		z complex128
		n uint64
	)
	for norm(z) < EscapeRadius && n < maxIter {
		z = z*z + c
		n++
	}
	if n == maxIter {
		return float64(maxIter)
	}
	return float64(n) + 1 - math.Log2(math.Log(norm(z)))
}

// norm is |z| as the square root of the squared norm. Unlike cmplx.Abs it does
// not rescale, so results match a plain re²+im² evaluation bit for bit.
func norm(z complex128) float64 {
	re, im := real(z), imag(z)
	return math.Sqrt(re*re + im*im)
}
