package docking

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/endurance/internal/testutil"
	"github.com/banshee-data/endurance/internal/timeutil"
)

func newTestMachine(t *testing.T) (*StateMachine, *timeutil.MockClock) {
	t.Helper()
	testutil.MuteLogs(t)
	clock := testutil.NewMockClock()
	m := NewStateMachine(MachineConfig{FrozenValue: 90, ConfirmDelay: time.Second}, clock)
	t.Cleanup(m.Close)
	return m, clock
}

func TestStateMachine_InitialState(t *testing.T) {
	m, clock := newTestMachine(t)

	assert.Equal(t, StateIdle, m.State())
	_, ok := m.FrozenValue()
	assert.False(t, ok)
	assert.False(t, m.AdvancePending())
	assert.False(t, m.Advanced())
	assert.Zero(t, clock.PendingTimers())
}

func TestStateMachine_AlignmentTransitions(t *testing.T) {
	m, _ := newTestMachine(t)

	var got []Transition
	m.OnTransition(func(tr Transition) { got = append(got, tr) })

	m.OnAlignmentChanged(false) // idle stays idle
	m.OnAlignmentChanged(true)
	m.OnAlignmentChanged(true) // aligned stays aligned
	m.OnAlignmentChanged(false)

	want := []Transition{
		{From: StateIdle, To: StateAligned, At: epoch},
		{From: StateAligned, To: StateIdle, At: epoch},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("transitions mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, StateIdle, m.State())
}

func TestStateMachine_ConfirmFromIdleIsNoop(t *testing.T) {
	m, clock := newTestMachine(t)

	assert.False(t, m.Confirm())
	assert.Equal(t, StateIdle, m.State())
	assert.Zero(t, clock.PendingTimers())
	_, ok := m.FrozenValue()
	assert.False(t, ok)
}

func TestStateMachine_ConfirmLatches(t *testing.T) {
	m, clock := newTestMachine(t)

	m.OnAlignmentChanged(true)
	require.True(t, m.Confirm())
	assert.Equal(t, StateConfirmed, m.State())

	frozen, ok := m.FrozenValue()
	require.True(t, ok)
	assert.Equal(t, 90.0, frozen)
	assert.True(t, m.AdvancePending())
	assert.Equal(t, 1, clock.PendingTimers())

	// Confirm again is a no-op and does not schedule a second advance.
	assert.False(t, m.Confirm())
	assert.Equal(t, 1, clock.PendingTimers())

	// Window verdicts no longer move a confirmed machine.
	m.OnAlignmentChanged(false)
	m.OnAlignmentChanged(true)
	assert.Equal(t, StateConfirmed, m.State())
}

func TestStateMachine_AdvanceFiresOnceAfterDelay(t *testing.T) {
	m, clock := newTestMachine(t)

	advances := 0
	m.OnAdvance(func() { advances++ })

	m.OnAlignmentChanged(true)
	require.True(t, m.Confirm())

	clock.Advance(999 * time.Millisecond)
	assert.Zero(t, advances, "advance fired before the delay elapsed")
	assert.True(t, m.AdvancePending())

	clock.Advance(time.Millisecond)
	assert.Equal(t, 1, advances)
	assert.True(t, m.Advanced())
	assert.False(t, m.AdvancePending())

	clock.Advance(10 * time.Second)
	assert.Equal(t, 1, advances, "advance fired more than once")
	assert.Equal(t, StateConfirmed, m.State())
}

func TestStateMachine_CloseCancelsPendingAdvance(t *testing.T) {
	m, clock := newTestMachine(t)

	advances := 0
	m.OnAdvance(func() { advances++ })

	m.OnAlignmentChanged(true)
	require.True(t, m.Confirm())

	clock.Advance(500 * time.Millisecond)
	m.Close()
	m.Close()

	assert.Zero(t, clock.PendingTimers())
	clock.Advance(5 * time.Second)
	assert.Zero(t, advances)
	assert.False(t, m.Advanced())
}

func TestStateMachine_ClosedIgnoresInput(t *testing.T) {
	m, clock := newTestMachine(t)
	m.Close()

	m.OnAlignmentChanged(true)
	assert.Equal(t, StateIdle, m.State())
	assert.False(t, m.Confirm())
	assert.Zero(t, clock.PendingTimers())
}

func TestStateMachine_ConfirmedTransitionTimestamp(t *testing.T) {
	m, clock := newTestMachine(t)

	var last Transition
	m.OnTransition(func(tr Transition) { last = tr })

	m.OnAlignmentChanged(true)
	clock.Advance(250 * time.Millisecond)
	require.True(t, m.Confirm())

	assert.Equal(t, Transition{From: StateAligned, To: StateConfirmed, At: epoch.Add(250 * time.Millisecond)}, last)
}

func TestStateMachine_Snapshot(t *testing.T) {
	m, _ := newTestMachine(t)

	st, frozen, ok := m.Snapshot()
	assert.Equal(t, StateIdle, st)
	assert.False(t, ok)
	assert.Zero(t, frozen)

	m.OnAlignmentChanged(true)
	st, _, ok = m.Snapshot()
	assert.Equal(t, StateAligned, st)
	assert.False(t, ok)

	require.True(t, m.Confirm())
	st, frozen, ok = m.Snapshot()
	assert.Equal(t, StateConfirmed, st)
	assert.True(t, ok)
	assert.Equal(t, 90.0, frozen)
}
