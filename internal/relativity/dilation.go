package relativity

import (
	"math"

	"github.com/banshee-data/endurance/internal/scalar"
)

// Gravity parameter bounds. 100 is one standard gravity.
const (
	GravityMin = 100.0
	GravityMax = 200.0
)

// Severity bands used by hosts to style the readout.
const (
	ExtremeAbove  = 150.0
	CriticalAbove = 180.0
)

// GravityRange is the closed range every gravity write is clamped into.
var GravityRange = scalar.Range{Min: GravityMin, Max: GravityMax}

// BoundGravityRange intersects r with GravityRange. An empty intersection
// yields GravityRange.
func BoundGravityRange(r scalar.Range) scalar.Range {
	out := scalar.Range{Min: math.Max(r.Min, GravityMin), Max: math.Min(r.Max, GravityMax)}
	if !(out.Min < out.Max) {
		return GravityRange
	}
	return out
}

// Dilation returns the ratio of coordinate time to proper time for gravity
// parameter g. The curve is piecewise linear, continuous, and steepens at
// every breakpoint:
//
//	g <= 100        1
//	100 < g <= 120  1 + (g-100)/20          -> 2 at 120
//	120 < g <= 150  2 + (g-120)/2           -> 17 at 150
//	150 < g <= 180  17 + (g-150)*100        -> 3017 at 180
//	g > 180         3017 + (g-180)*10000
//
// NaN is treated as g <= 100.
func Dilation(g float64) float64 {
	switch {
	case !(g > 100):
		return 1
	case g <= 120:
		return 1 + (g-100)/20
	case g <= 150:
		return 2 + (g-120)/2
	case g <= 180:
		return 17 + (g-150)*100
	default:
		return 3017 + (g-180)*10000
	}
}

// Severity classifies a gravity setting.
type Severity string

const (
	SeverityNominal  Severity = "nominal"
	SeverityExtreme  Severity = "extreme"  // g > 150
	SeverityCritical Severity = "critical" // g > 180
)

// SeverityFor returns the band g falls in.
func SeverityFor(g float64) Severity {
	switch {
	case g > CriticalAbove:
		return SeverityCritical
	case g > ExtremeAbove:
		return SeverityExtreme
	default:
		return SeverityNominal
	}
}
