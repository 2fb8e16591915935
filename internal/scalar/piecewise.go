package scalar

import (
	"errors"
	"fmt"
	"sort"
)

// Piecewise maps an input onto an output through linear segments between
// ordered (input, output) breakpoints. Outside the breakpoint range the first
// or last output is held.
type Piecewise struct {
	inputs  []float64
	outputs []float64
}

// NewPiecewise builds a mapper. Inputs must be finite and strictly increasing,
// and there must be at least two breakpoints.
func NewPiecewise(inputs, outputs []float64) (*Piecewise, error) {
	if len(inputs) != len(outputs) {
		return nil, fmt.Errorf("breakpoint length mismatch: %d inputs, %d outputs", len(inputs), len(outputs))
	}
	if len(inputs) < 2 {
		return nil, errors.New("piecewise mapping needs at least two breakpoints")
	}
	for i := range inputs {
		if !IsFinite(inputs[i]) || !IsFinite(outputs[i]) {
			return nil, fmt.Errorf("breakpoint %d is not finite", i)
		}
		if i > 0 && inputs[i] <= inputs[i-1] {
			return nil, fmt.Errorf("breakpoint inputs must be strictly increasing: %g follows %g", inputs[i], inputs[i-1])
		}
	}

	p := &Piecewise{
		inputs:  make([]float64, len(inputs)),
		outputs: make([]float64, len(outputs)),
	}
	copy(p.inputs, inputs)
	copy(p.outputs, outputs)
	return p, nil
}

// MustPiecewise is NewPiecewise for breakpoints fixed at compile time.
func MustPiecewise(inputs, outputs []float64) *Piecewise {
	p, err := NewPiecewise(inputs, outputs)
	if err != nil {
		panic(err)
	}
	return p
}

// Map returns the interpolated output for x. NaN maps to the first output.
func (p *Piecewise) Map(x float64) float64 {
	last := len(p.inputs) - 1
	if !(x > p.inputs[0]) {
		return p.outputs[0]
	}
	if x >= p.inputs[last] {
		return p.outputs[last]
	}

	// First breakpoint strictly above x; x lies in [inputs[i-1], inputs[i]).
	i := sort.SearchFloat64s(p.inputs, x)
	if p.inputs[i] == x {
		return p.outputs[i]
	}
	t := InverseLerp(p.inputs[i-1], p.inputs[i], x)
	return Lerp(p.outputs[i-1], p.outputs[i], t)
}

// Domain returns the first and last breakpoint inputs.
func (p *Piecewise) Domain() Range {
	return Range{Min: p.inputs[0], Max: p.inputs[len(p.inputs)-1]}
}

// Reference channel mappers for the docking section.

// RotationMapper maps progress [0,1] to rotation degrees [0,maxDeg].
func RotationMapper(maxDeg float64) *Piecewise {
	return MustPiecewise([]float64{0, 1}, []float64{0, maxDeg})
}

// OpacityMapper is the fade-in/fade-out envelope.
func OpacityMapper() *Piecewise {
	return MustPiecewise([]float64{0, 0.1, 0.9, 1}, []float64{0, 1, 1, 0})
}

// ScaleMapper swells to full size at mid-scroll.
func ScaleMapper() *Piecewise {
	return MustPiecewise([]float64{0, 0.5, 1}, []float64{0.8, 1, 0.8})
}
