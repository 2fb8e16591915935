package docking

import (
	"sync"
	"time"

	"github.com/banshee-data/endurance/internal/config"
	"github.com/banshee-data/endurance/internal/scalar"
	"github.com/banshee-data/endurance/internal/spring"
	"github.com/banshee-data/endurance/internal/timeutil"
)

// Config holds the tuning for one docking widget.
type Config struct {
	Spring         spring.Params
	FrameRate      int
	RotationMax    float64 // degrees at progress 1
	Window         Window
	FrozenRotation float64
	ConfirmDelay   time.Duration
}

// DefaultConfig returns the reference tuning: spring 50/20/1 at 60fps,
// rotation 0..180, window 85..95 frozen at 90, advance after 1s.
func DefaultConfig() Config {
	return Config{
		Spring:         spring.AlignmentParams(),
		FrameRate:      spring.DefaultFPS,
		RotationMax:    180,
		Window:         DefaultWindow(),
		FrozenRotation: 90,
		ConfirmDelay:   time.Second,
	}
}

// ConfigFromTuning builds a Config from a loaded TuningConfig.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	p := spring.AlignmentParams()
	p.Stiffness = cfg.GetSpringStiffness()
	p.Damping = cfg.GetSpringDamping()
	p.Mass = cfg.GetSpringMass()
	return Config{
		Spring:         p,
		FrameRate:      cfg.GetFrameRate(),
		RotationMax:    cfg.GetRotationMaxDeg(),
		Window:         NewWindow(cfg.GetAlignmentLowerDeg(), cfg.GetAlignmentUpperDeg()),
		FrozenRotation: cfg.GetFrozenRotationDeg(),
		ConfirmDelay:   cfg.GetConfirmDelay(),
	}
}

// Frame is everything a renderer needs for one animation frame.
type Frame struct {
	Seq             uint64  `json:"seq"`
	Progress        float64 `json:"progress"`         // raw input, clamped to [0,1]
	Smoothed        float64 `json:"smoothed"`         // spring output
	Rotation        float64 `json:"rotation"`         // live mapped rotation
	DisplayRotation float64 `json:"display_rotation"` // frozen once confirmed
	Opacity         float64 `json:"opacity"`
	Scale           float64 `json:"scale"`
	InWindow        bool    `json:"in_window"`
	State           State   `json:"state"`
	Locked          bool    `json:"locked"` // in window or confirmed, for styling
	Frozen          bool    `json:"frozen"`
}

// Pipeline is one docking widget: it owns the filter state, the channel
// mappers, the alignment monitor and the confirmation machine.
type Pipeline struct {
	frameMu sync.Mutex // serialises Frame and Confirm so stages never interleave

	mu   sync.Mutex // guards last, seq and live
	last Frame
	seq  uint64
	live float64

	cfg      Config
	filter   *spring.Filter
	state    spring.State
	rotation *scalar.Piecewise
	opacity  *scalar.Piecewise
	scale    *scalar.Piecewise
	monitor  *Monitor
	machine  *StateMachine
}

// NewPipeline creates an idle widget at progress 0. A nil clock means the
// real clock.
func NewPipeline(cfg Config, clock timeutil.Clock) *Pipeline {
	if cfg.RotationMax <= 0 {
		cfg.RotationMax = DefaultConfig().RotationMax
	}
	if cfg.Window == (Window{}) {
		cfg.Window = DefaultWindow()
	}
	p := &Pipeline{
		cfg:      cfg,
		filter:   spring.NewFilter(cfg.Spring, cfg.FrameRate),
		rotation: scalar.RotationMapper(cfg.RotationMax),
		opacity:  scalar.OpacityMapper(),
		scale:    scalar.ScaleMapper(),
		monitor:  NewMonitor(cfg.Window),
		machine: NewStateMachine(MachineConfig{
			FrozenValue:  cfg.FrozenRotation,
			ConfirmDelay: cfg.ConfirmDelay,
		}, clock),
	}
	p.last = p.compose(0, 0, false)
	return p
}

// Frame advances the widget by one animation frame toward progress and
// returns the resulting visual state. Stages run in a fixed order: spring
// step, channel mapping, window check, then any transition it triggers.
// Transition observers run inside Frame and must not call Frame themselves.
func (p *Pipeline) Frame(progress float64) Frame {
	p.frameMu.Lock()
	defer p.frameMu.Unlock()

	if !scalar.IsFinite(progress) {
		progress = 0
	}
	progress = scalar.Clamp(progress, 0, 1)

	p.state = p.filter.Step(p.state, progress)
	rotation := p.rotation.Map(p.state.Position)
	p.mu.Lock()
	p.live = rotation
	p.mu.Unlock()

	inWindow, changed := p.monitor.Update(rotation)
	if changed {
		p.machine.OnAlignmentChanged(inWindow)
	}

	f := p.compose(progress, rotation, inWindow)

	p.mu.Lock()
	p.seq++
	f.Seq = p.seq
	p.last = f
	p.mu.Unlock()
	return f
}

func (p *Pipeline) compose(progress, rotation float64, inWindow bool) Frame {
	st, frozen, ok := p.machine.Snapshot()
	f := Frame{
		Progress:        progress,
		Smoothed:        p.state.Position,
		Rotation:        rotation,
		DisplayRotation: rotation,
		Opacity:         p.opacity.Map(p.state.Position),
		Scale:           p.scale.Map(p.state.Position),
		InWindow:        inWindow,
		State:           st,
	}
	if ok {
		f.DisplayRotation = frozen
		f.Frozen = true
	}
	f.Locked = inWindow || st == StateConfirmed
	return f
}

// Confirm forwards the external confirm action. It reports whether the
// widget is now confirmed by this call; outside the aligned state it does
// nothing. It waits for an in-flight Frame, so Last reflects the
// confirmation as soon as Confirm returns.
func (p *Pipeline) Confirm() bool {
	p.frameMu.Lock()
	defer p.frameMu.Unlock()

	if !p.machine.Confirm() {
		return false
	}
	frozen, _ := p.machine.FrozenValue()

	p.mu.Lock()
	p.last.State = StateConfirmed
	p.last.DisplayRotation = frozen
	p.last.Frozen = true
	p.last.Locked = true
	p.mu.Unlock()
	return true
}

// LiveRotation returns the mapped rotation of the frame being computed, or
// of the last frame outside Frame. Transition observers use it to see the
// value that caused the transition.
func (p *Pipeline) LiveRotation() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.live
}

// Last returns the most recent frame.
func (p *Pipeline) Last() Frame {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}

// Machine exposes the confirmation machine for callbacks and inspection.
func (p *Pipeline) Machine() *StateMachine {
	return p.machine
}

// Filter returns the spring filter in use.
func (p *Pipeline) Filter() *spring.Filter {
	return p.filter
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config {
	return p.cfg
}

// Close tears the widget down, cancelling any pending advance.
func (p *Pipeline) Close() {
	p.machine.Close()
}
