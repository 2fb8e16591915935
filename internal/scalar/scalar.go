// Package scalar holds the range arithmetic shared by the docking pipeline
// and the relativity simulator: clamping, interpolation and piecewise-linear
// mapping of normalized inputs onto output channels.
package scalar

import "math"

// Range is a closed interval [Min, Max].
type Range struct {
	Min float64
	Max float64
}

// Clamp limits v to the range. NaN clamps to Min.
func (r Range) Clamp(v float64) float64 {
	return Clamp(v, r.Min, r.Max)
}

// Contains reports whether Min <= v <= Max.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Span returns Max - Min.
func (r Range) Span() float64 {
	return r.Max - r.Min
}

// Midpoint returns the centre of the range.
func (r Range) Midpoint() float64 {
	return r.Min + r.Span()/2
}

// Clamp limits v to [lo, hi]. NaN clamps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates linearly between a and b; t is not clamped.
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// InverseLerp returns where v sits between a and b as a fraction.
// A degenerate interval yields 0.
func InverseLerp(a, b, v float64) float64 {
	if a == b {
		return 0
	}
	return (v - a) / (b - a)
}

// IsFinite reports whether v is neither NaN nor infinite.
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
