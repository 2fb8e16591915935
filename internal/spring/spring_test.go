package spring

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewFilter_Derivation(t *testing.T) {
	f := NewFilter(Params{Stiffness: 50, Damping: 20, Mass: 1}, 60)

	assert.InDelta(t, math.Sqrt(50), f.AngularFrequency(), 1e-12)
	assert.InDelta(t, 20/(2*math.Sqrt(50)), f.DampingRatio(), 1e-12)
	assert.Greater(t, f.DampingRatio(), 1.0, "alignment spring should be overdamped")
	assert.Equal(t, 60, f.FPS())
}

func TestNewFilter_Defaults(t *testing.T) {
	f := NewFilter(Params{Stiffness: -1, Damping: -3, Mass: 0}, 0)
	p := f.Params()

	assert.Equal(t, 50.0, p.Stiffness)
	assert.Equal(t, 1.0, p.Mass)
	assert.Equal(t, 0.0, p.Damping)
	assert.Equal(t, DefaultFPS, f.FPS())
}

func TestStep_MovesTowardTarget(t *testing.T) {
	f := NewFilter(AlignmentParams(), 60)

	s := f.Step(State{}, 1)
	assert.Greater(t, s.Position, 0.0)
	assert.Less(t, s.Position, 1.0)
	assert.Greater(t, s.Velocity, 0.0)
}

func TestStep_OverdampedDoesNotOvershoot(t *testing.T) {
	f := NewFilter(AlignmentParams(), 60)

	s := State{}
	prev := 0.0
	for i := 0; i < 600; i++ {
		s = f.Step(s, 1)
		require.LessOrEqual(t, s.Position, 1.0+1e-9, "frame %d overshot", i)
		require.GreaterOrEqual(t, s.Position, prev-1e-12, "frame %d moved backwards", i)
		prev = s.Position
	}
	assert.InDelta(t, 1.0, s.Position, 1e-6)
}

func TestStep_Converges(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		fps    int
	}{
		{"alignment 60fps", AlignmentParams(), 60},
		{"alignment 30fps", AlignmentParams(), 30},
		{"alignment 144fps", AlignmentParams(), 144},
		{"underdamped", Params{Stiffness: 100, Damping: 5, Mass: 1}, 60},
		{"soft decorative", Params{Stiffness: 30, Damping: 20, Mass: 1}, 60},
		{"heavy", Params{Stiffness: 50, Damping: 20, Mass: 4}, 60},
		{"undamped", Params{Stiffness: 50, Damping: 0, Mass: 1}, 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewFilter(tt.params, tt.fps)
			s := State{Position: 0}
			for i := 0; i < tt.fps*60; i++ {
				s = f.Step(s, 0.5)
				require.False(t, math.IsNaN(s.Position) || math.IsInf(s.Position, 0))
				require.LessOrEqual(t, math.Abs(s.Position-0.5), 1.0, "diverged at frame %d", i)
			}
			if tt.params.Damping > 0 {
				assert.InDelta(t, 0.5, s.Position, 1e-3)
			}
		})
	}
}

func TestStep_NonFiniteIgnored(t *testing.T) {
	f := NewFilter(AlignmentParams(), 60)
	s := State{Position: 0.3, Velocity: 0.1}

	assert.Equal(t, s, f.Step(s, math.NaN()))
	assert.Equal(t, s, f.Step(s, math.Inf(1)))

	bad := State{Position: math.NaN()}
	assert.True(t, math.IsNaN(f.Step(bad, 1).Position))
}

func TestStep_RestSnap(t *testing.T) {
	f := NewFilter(AlignmentParams(), 60)
	s := State{Position: 0.50001, Velocity: 0}

	next := f.Step(s, 0.5)
	assert.Equal(t, State{Position: 0.5}, next)
}

func TestStep_NoSnapWhenDisabled(t *testing.T) {
	f := NewFilter(Params{Stiffness: 50, Damping: 20, Mass: 1}, 60)
	next := f.Step(State{Position: 0.50001}, 0.5)

	assert.NotEqual(t, 0.5, next.Position)
	assert.NotZero(t, next.Velocity)
}

func TestSettle(t *testing.T) {
	f := NewFilter(AlignmentParams(), 60)

	s, frames := f.Settle(State{}, 1, 600, 1e-3)
	assert.InDelta(t, 1.0, s.Position, 1e-3)
	assert.Greater(t, frames, 0)
	assert.Less(t, frames, 600)

	_, zero := f.Settle(State{Position: 1}, 1, 600, 1e-3)
	assert.Equal(t, 0, zero)

	_, capped := f.Settle(State{}, 1, 3, 1e-9)
	assert.Equal(t, 3, capped)
}
