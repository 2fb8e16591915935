package relativity

import (
	"math"
	"sync/atomic"

	"github.com/banshee-data/endurance/internal/scalar"
)

// Gravity is the shared cell holding the current gravity parameter. User
// input writes it at any time; the simulator tick dereferences it on every
// firing, so a tick always sees the latest write.
type Gravity struct {
	bits atomic.Uint64
	r    scalar.Range
}

// NewGravity returns a cell clamped to r and holding initial (also clamped).
// A zero range means GravityRange; any other range is bounded by it.
func NewGravity(initial float64, r scalar.Range) *Gravity {
	g := &Gravity{r: BoundGravityRange(r)}
	g.Set(initial)
	return g
}

// Set clamps v into range, stores it and returns the stored value.
// Out-of-range writes are clamped, never rejected.
func (g *Gravity) Set(v float64) float64 {
	v = g.r.Clamp(v)
	g.bits.Store(math.Float64bits(v))
	return v
}

// Get returns the current value.
func (g *Gravity) Get() float64 {
	return math.Float64frombits(g.bits.Load())
}

// Range returns the clamp range.
func (g *Gravity) Range() scalar.Range {
	return g.r
}
