package docking

import (
	"sync"
	"time"

	"github.com/banshee-data/endurance/internal/monitoring"
	"github.com/banshee-data/endurance/internal/timeutil"
)

// State is the confirmation lifecycle state.
type State string

const (
	StateIdle      State = "idle"      // out of window, nothing to confirm
	StateAligned   State = "aligned"   // in window, confirm allowed
	StateConfirmed State = "confirmed" // latched until teardown
)

// Transition records a state change.
type Transition struct {
	From State     `json:"from"`
	To   State     `json:"to"`
	At   time.Time `json:"at"`
}

// MachineConfig configures a StateMachine.
type MachineConfig struct {
	// FrozenValue is what the rotation is pinned to once confirmed. It is a
	// fixed reference, not the live value at confirm time.
	FrozenValue float64
	// ConfirmDelay is how long after confirmation the advance signal fires.
	ConfirmDelay time.Duration
}

// StateMachine tracks idle → aligned → confirmed. Confirmed is terminal for
// the machine's lifetime; Close tears it down and cancels a pending advance.
type StateMachine struct {
	mu    sync.Mutex
	cfg   MachineConfig
	clock timeutil.Clock

	state    State
	frozen   float64
	pending  timeutil.Timer
	advanced bool
	closed   bool

	onAdvance    func()
	onTransition func(Transition)
}

// NewStateMachine starts idle. A nil clock means the real clock.
func NewStateMachine(cfg MachineConfig, clock timeutil.Clock) *StateMachine {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &StateMachine{
		cfg:   cfg,
		clock: clock,
		state: StateIdle,
	}
}

// OnAdvance sets the callback fired once, ConfirmDelay after confirmation.
func (m *StateMachine) OnAdvance(fn func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onAdvance = fn
}

// OnTransition sets the callback fired after every state change.
func (m *StateMachine) OnTransition(fn func(Transition)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onTransition = fn
}

// OnAlignmentChanged feeds the window verdict. Entering the window moves
// idle to aligned; leaving it moves aligned back to idle. Once confirmed (or
// closed) the verdict is ignored.
func (m *StateMachine) OnAlignmentChanged(inWindow bool) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	var next State
	switch {
	case inWindow && m.state == StateIdle:
		next = StateAligned
	case !inWindow && m.state == StateAligned:
		next = StateIdle
	default:
		m.mu.Unlock()
		return
	}
	tr := m.setStateLocked(next)
	fn := m.onTransition
	m.mu.Unlock()

	notify(fn, tr)
}

// Confirm latches the machine if it is aligned: the frozen value is captured
// and the advance is scheduled. Anywhere else it is a silent no-op. It
// reports whether the machine was confirmed by this call.
func (m *StateMachine) Confirm() bool {
	m.mu.Lock()
	if m.closed || m.state != StateAligned {
		m.mu.Unlock()
		return false
	}
	tr := m.setStateLocked(StateConfirmed)
	m.frozen = m.cfg.FrozenValue
	m.pending = m.clock.AfterFunc(m.cfg.ConfirmDelay, m.fireAdvance)
	fn := m.onTransition
	m.mu.Unlock()

	monitoring.Logf("docking: alignment confirmed, frozen at %.1f, advancing in %s", m.cfg.FrozenValue, m.cfg.ConfirmDelay)
	notify(fn, tr)
	return true
}

func (m *StateMachine) fireAdvance() {
	m.mu.Lock()
	if m.closed || m.advanced {
		m.mu.Unlock()
		return
	}
	m.advanced = true
	m.pending = nil
	fn := m.onAdvance
	m.mu.Unlock()

	monitoring.Logf("docking: advancing to next section")
	if fn != nil {
		fn()
	}
}

// State returns the current state.
func (m *StateMachine) State() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state
}

// FrozenValue returns the pinned rotation; ok is false until confirmed.
func (m *StateMachine) FrozenValue() (value float64, ok bool) {
	_, value, ok = m.Snapshot()
	return value, ok
}

// Snapshot returns the state and the frozen value read under one lock, so
// the two always agree.
func (m *StateMachine) Snapshot() (st State, frozen float64, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.state != StateConfirmed {
		return m.state, 0, false
	}
	return m.state, m.frozen, true
}

// AdvancePending reports whether the advance is scheduled but not yet fired.
func (m *StateMachine) AdvancePending() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending != nil
}

// Advanced reports whether the advance signal has fired.
func (m *StateMachine) Advanced() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.advanced
}

// Close tears the machine down. A pending advance is cancelled and will
// never fire. Close is idempotent.
func (m *StateMachine) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.closed {
		return
	}
	m.closed = true
	if m.pending != nil {
		m.pending.Stop()
		m.pending = nil
		monitoring.Logf("docking: pending advance cancelled by teardown")
	}
}

func (m *StateMachine) setStateLocked(next State) Transition {
	tr := Transition{From: m.state, To: next, At: m.clock.Now()}
	m.state = next
	monitoring.Logf("docking: %s -> %s", tr.From, tr.To)
	return tr
}

func notify(fn func(Transition), tr Transition) {
	if fn != nil {
		fn(tr)
	}
}
