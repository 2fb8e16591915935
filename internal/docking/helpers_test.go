package docking

import (
	"testing"

	"github.com/banshee-data/endurance/internal/testutil"
	"github.com/banshee-data/endurance/internal/timeutil"
)

var epoch = testutil.Epoch

func newTestPipeline(t *testing.T) (*Pipeline, *timeutil.MockClock) {
	t.Helper()
	testutil.MuteLogs(t)
	clock := testutil.NewMockClock()
	p := NewPipeline(DefaultConfig(), clock)
	t.Cleanup(p.Close)
	return p, clock
}

// frameUntil feeds progress until cond holds, failing after max frames.
func frameUntil(t *testing.T, p *Pipeline, progress float64, max int, cond func(Frame) bool) Frame {
	t.Helper()
	var f Frame
	for i := 0; i < max; i++ {
		f = p.Frame(progress)
		if cond(f) {
			return f
		}
	}
	t.Fatalf("condition not met after %d frames at progress %v (last frame %+v)", max, progress, f)
	return f
}

func inState(s State) func(Frame) bool {
	return func(f Frame) bool { return f.State == s }
}
