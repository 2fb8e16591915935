// Package report turns the dilation curve, the spring response and simulator
// history into PNG plots and HTML charts.
package report

import (
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/banshee-data/endurance/internal/relativity"
	"github.com/banshee-data/endurance/internal/spring"
)

// DilationSample is one point on the dilation curve.
type DilationSample struct {
	Gravity  float64             `json:"gravity"`
	Factor   float64             `json:"factor"`
	Severity relativity.Severity `json:"severity"`
}

// SampleDilation evaluates the dilation curve at n evenly spaced gravity
// values across the slider range, ends included. n below 2 is raised to 2.
func SampleDilation(n int) []DilationSample {
	if n < 2 {
		n = 2
	}
	r := relativity.GravityRange
	gs := floats.Span(make([]float64, n), r.Min, r.Max)

	out := make([]DilationSample, n)
	for i, g := range gs {
		out[i] = DilationSample{
			Gravity:  g,
			Factor:   relativity.Dilation(g),
			Severity: relativity.SeverityFor(g),
		}
	}
	return out
}

// StepSample is one frame of a spring step response.
type StepSample struct {
	Frame    int     `json:"frame"`
	Seconds  float64 `json:"seconds"`
	Position float64 `json:"position"`
	Velocity float64 `json:"velocity"`
}

// SampleStepResponse drives a filter from rest at 0 toward target for the
// given number of frames. Sample 0 is the initial state.
func SampleStepResponse(f *spring.Filter, target float64, frames int) []StepSample {
	if frames < 0 {
		frames = 0
	}
	dt := 1 / float64(f.FPS())
	out := make([]StepSample, 0, frames+1)
	var s spring.State
	out = append(out, StepSample{})
	for i := 1; i <= frames; i++ {
		s = f.Step(s, target)
		out = append(out, StepSample{
			Frame:    i,
			Seconds:  float64(i) * dt,
			Position: s.Position,
			Velocity: s.Velocity,
		})
	}
	return out
}

// History keeps the most recent simulator readouts for charting.
type History struct {
	mu   sync.Mutex
	buf  []relativity.Readout
	next int
	full bool
}

// NewHistory keeps up to capacity readouts (at least 1).
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = 1
	}
	return &History{buf: make([]relativity.Readout, capacity)}
}

// Add appends r, evicting the oldest readout when full.
func (h *History) Add(r relativity.Readout) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.buf[h.next] = r
	h.next = (h.next + 1) % len(h.buf)
	if h.next == 0 {
		h.full = true
	}
}

// Snapshot returns the retained readouts oldest first.
func (h *History) Snapshot() []relativity.Readout {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.full {
		out := make([]relativity.Readout, h.next)
		copy(out, h.buf[:h.next])
		return out
	}
	out := make([]relativity.Readout, 0, len(h.buf))
	out = append(out, h.buf[h.next:]...)
	out = append(out, h.buf[:h.next]...)
	return out
}

// Clear drops every retained readout.
func (h *History) Clear() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.next = 0
	h.full = false
}
