// Package spring smooths a target scalar with a damped harmonic oscillator,
// one animation frame at a time.
//
// Parameters are expressed the way motion designers tune springs (stiffness,
// damping, mass) and converted to the angular frequency and damping ratio the
// harmonica integrator expects. harmonica solves the oscillator analytically
// per step, so the filter does not diverge for any positive parameters or
// frame rate.
package spring

import (
	"math"

	"github.com/charmbracelet/harmonica"

	"github.com/banshee-data/endurance/internal/scalar"
)

// DefaultFPS is the frame rate assumed when none is configured.
const DefaultFPS = 60

// State is the filter's position and velocity. It is owned by the caller and
// replaced wholesale on every Step.
type State struct {
	Position float64
	Velocity float64
}

// Params configures the oscillator.
type Params struct {
	Stiffness float64 // spring constant k
	Damping   float64 // damping coefficient c
	Mass      float64 // mass m

	// RestDelta and RestSpeed snap the state onto the target once both the
	// displacement and the speed fall below them. Zero disables snapping.
	RestDelta float64
	RestSpeed float64
}

// AlignmentParams returns the tuning used by the docking rotation channel.
func AlignmentParams() Params {
	return Params{
		Stiffness: 50,
		Damping:   20,
		Mass:      1,
		RestDelta: 1e-4,
		RestSpeed: 1e-4,
	}
}

// Filter advances State toward a target at a fixed frame rate.
type Filter struct {
	params Params
	fps    int
	omega  float64
	zeta   float64
	spring harmonica.Spring
}

// NewFilter builds a filter. Non-positive stiffness or mass fall back to the
// alignment defaults, negative damping is treated as zero, and a non-positive
// fps falls back to DefaultFPS.
func NewFilter(p Params, fps int) *Filter {
	def := AlignmentParams()
	if !(p.Stiffness > 0) {
		p.Stiffness = def.Stiffness
	}
	if !(p.Mass > 0) {
		p.Mass = def.Mass
	}
	if !(p.Damping >= 0) {
		p.Damping = 0
	}
	if fps <= 0 {
		fps = DefaultFPS
	}

	omega := math.Sqrt(p.Stiffness / p.Mass)
	zeta := p.Damping / (2 * math.Sqrt(p.Stiffness*p.Mass))

	return &Filter{
		params: p,
		fps:    fps,
		omega:  omega,
		zeta:   zeta,
		spring: harmonica.NewSpring(harmonica.FPS(fps), omega, zeta),
	}
}

// Params returns the effective parameters after defaulting.
func (f *Filter) Params() Params { return f.params }

// FPS returns the frame rate the filter integrates at.
func (f *Filter) FPS() int { return f.fps }

// AngularFrequency returns sqrt(k/m).
func (f *Filter) AngularFrequency() float64 { return f.omega }

// DampingRatio returns c / (2*sqrt(k*m)). Values above 1 are overdamped.
func (f *Filter) DampingRatio() float64 { return f.zeta }

// Step returns the state one frame later. A non-finite target or state is
// ignored and the input state returned unchanged, so the output is always
// finite given a finite starting state.
func (f *Filter) Step(s State, target float64) State {
	if !scalar.IsFinite(target) || !scalar.IsFinite(s.Position) || !scalar.IsFinite(s.Velocity) {
		return s
	}

	pos, vel := f.spring.Update(s.Position, s.Velocity, target)
	next := State{Position: pos, Velocity: vel}
	if !scalar.IsFinite(pos) || !scalar.IsFinite(vel) {
		return s
	}

	if f.params.RestDelta > 0 && f.params.RestSpeed > 0 &&
		math.Abs(target-next.Position) < f.params.RestDelta &&
		math.Abs(next.Velocity) < f.params.RestSpeed {
		next = State{Position: target}
	}
	return next
}

// Settle steps until the state is within eps of target with speed below eps,
// or maxFrames have elapsed. It returns the final state and frames used.
func (f *Filter) Settle(s State, target float64, maxFrames int, eps float64) (State, int) {
	for i := 0; i < maxFrames; i++ {
		if math.Abs(target-s.Position) < eps && math.Abs(s.Velocity) < eps {
			return s, i
		}
		s = f.Step(s, target)
	}
	return s, maxFrames
}
