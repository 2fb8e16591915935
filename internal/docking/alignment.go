package docking

import "github.com/banshee-data/endurance/internal/scalar"

// Window is the inclusive band of rotation, in degrees, that counts as
// aligned. It is immutable once built.
type Window struct {
	r scalar.Range
}

// NewWindow builds a window; swapped bounds are put in order.
func NewWindow(lower, upper float64) Window {
	if lower > upper {
		lower, upper = upper, lower
	}
	return Window{r: scalar.Range{Min: lower, Max: upper}}
}

// DefaultWindow is 85..90..95 degrees.
func DefaultWindow() Window {
	return NewWindow(85, 95)
}

// Lower returns the lower bound.
func (w Window) Lower() float64 { return w.r.Min }

// Upper returns the upper bound.
func (w Window) Upper() float64 { return w.r.Max }

// Midpoint is the ideal alignment.
func (w Window) Midpoint() float64 { return w.r.Midpoint() }

// Contains reports lower <= v <= upper.
func (w Window) Contains(v float64) bool { return w.r.Contains(v) }

// Monitor evaluates each new rotation value against a Window. It keeps only
// the previous verdict so callers can react to edges.
type Monitor struct {
	window   Window
	inWindow bool
	last     float64
}

// NewMonitor starts out of window.
func NewMonitor(w Window) *Monitor {
	return &Monitor{window: w}
}

// Update evaluates v and reports the verdict and whether it differs from the
// previous one.
func (m *Monitor) Update(v float64) (inWindow, changed bool) {
	inWindow = m.window.Contains(v)
	changed = inWindow != m.inWindow
	m.inWindow = inWindow
	m.last = v
	return inWindow, changed
}

// InWindow returns the latest verdict.
func (m *Monitor) InWindow() bool { return m.inWindow }

// Last returns the last value evaluated.
func (m *Monitor) Last() float64 { return m.last }

// Window returns the band being monitored.
func (m *Monitor) Window() Window { return m.window }
