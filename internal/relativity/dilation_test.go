package relativity

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/banshee-data/endurance/internal/scalar"
)

func TestDilation_Breakpoints(t *testing.T) {
	tests := []struct {
		g    float64
		want float64
	}{
		{50, 1},
		{100, 1},
		{110, 1.5},
		{120, 2},
		{130, 7},
		{150, 17},
		{165, 1517},
		{180, 3017},
		{190, 103017},
		{200, 203017},
	}
	for _, tt := range tests {
		// Exact equality: the breakpoint values are part of the contract.
		assert.Equal(t, tt.want, Dilation(tt.g), "Dilation(%v)", tt.g)
	}
}

func TestDilation_Continuity(t *testing.T) {
	const eps = 1e-9
	for _, bp := range []float64{100, 120, 150, 180} {
		left := Dilation(bp - eps)
		at := Dilation(bp)
		right := Dilation(bp + eps)
		// Slope above 180 is 1e4, so a 1e-9 step moves the value by 1e-5.
		assert.InDelta(t, at, left, 1e-4, "left limit at %v", bp)
		assert.InDelta(t, at, right, 1e-4, "right limit at %v", bp)
	}
}

func TestDilation_Monotonic(t *testing.T) {
	prev := Dilation(GravityMin)
	for g := GravityMin + 0.25; g <= GravityMax; g += 0.25 {
		d := Dilation(g)
		assert.Greater(t, d, prev, "Dilation not strictly increasing at %v", g)
		assert.GreaterOrEqual(t, d, 1.0)
		prev = d
	}
}

func TestDilation_Convex(t *testing.T) {
	slope := func(a, b float64) float64 { return (Dilation(b) - Dilation(a)) / (b - a) }
	slopes := []float64{
		slope(101, 119),
		slope(121, 149),
		slope(151, 179),
		slope(181, 199),
	}
	for i := 1; i < len(slopes); i++ {
		assert.Greater(t, slopes[i], slopes[i-1], "slope did not increase at segment %d", i)
	}
}

func TestDilation_NaN(t *testing.T) {
	assert.Equal(t, 1.0, Dilation(math.NaN()))
}

func TestSeverityFor(t *testing.T) {
	assert.Equal(t, SeverityNominal, SeverityFor(100))
	assert.Equal(t, SeverityNominal, SeverityFor(150))
	assert.Equal(t, SeverityExtreme, SeverityFor(151))
	assert.Equal(t, SeverityExtreme, SeverityFor(180))
	assert.Equal(t, SeverityCritical, SeverityFor(180.5))
}

func TestGravity_Clamp(t *testing.T) {
	g := NewGravity(42, GravityRange)
	assert.Equal(t, 100.0, g.Get())

	assert.Equal(t, 200.0, g.Set(999))
	assert.Equal(t, 200.0, g.Get())
	assert.Equal(t, 150.0, g.Set(150))
	assert.Equal(t, 100.0, g.Set(math.NaN()))
	assert.Equal(t, GravityRange, g.Range())
}

func TestGravity_ZeroRangeDefaults(t *testing.T) {
	g := NewGravity(175, scalar.Range{})
	assert.Equal(t, GravityRange, g.Range())
	assert.Equal(t, 175.0, g.Get())
}

func TestClockPair(t *testing.T) {
	var c ClockPair
	c.Advance(0.1, 17)
	assert.InDelta(t, 0.1, c.ShipSeconds, 1e-12)
	assert.InDelta(t, 1.7, c.EarthSeconds, 1e-12)

	c.Reset()
	assert.Equal(t, ClockPair{}, c)
}

func TestBoundGravityRange(t *testing.T) {
	tests := []struct {
		name string
		in   scalar.Range
		want scalar.Range
	}{
		{"zero", scalar.Range{}, GravityRange},
		{"inside", scalar.Range{Min: 120, Max: 180}, scalar.Range{Min: 120, Max: 180}},
		{"wider", scalar.Range{Min: 20, Max: 500}, GravityRange},
		{"overlaps top", scalar.Range{Min: 150, Max: 250}, scalar.Range{Min: 150, Max: 200}},
		{"disjoint", scalar.Range{Min: 300, Max: 400}, GravityRange},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, BoundGravityRange(tt.in))
		})
	}

	g := NewGravity(20, scalar.Range{Min: 20, Max: 500})
	assert.Equal(t, GravityRange, g.Range())
	assert.Equal(t, 100.0, g.Get())
}
