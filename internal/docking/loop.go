package docking

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/banshee-data/endurance/internal/monitoring"
	"github.com/banshee-data/endurance/internal/scalar"
	"github.com/banshee-data/endurance/internal/spring"
	"github.com/banshee-data/endurance/internal/timeutil"
)

// ProgressSource yields the normalized scroll progress of the docking
// section. It is owned by the scroll collaborator; the loop only reads it.
type ProgressSource interface {
	Progress() float64
}

// ProgressCell is a ProgressSource the scroll collaborator writes into.
type ProgressCell struct {
	bits atomic.Uint64
}

// Set stores v clamped to [0,1]; non-finite values store 0.
func (c *ProgressCell) Set(v float64) float64 {
	if !scalar.IsFinite(v) {
		v = 0
	}
	v = scalar.Clamp(v, 0, 1)
	c.bits.Store(math.Float64bits(v))
	return v
}

// Progress returns the last stored value (0 before any write).
func (c *ProgressCell) Progress() float64 {
	return math.Float64frombits(c.bits.Load())
}

// FrameLoop is the host's animation-frame facility: once per frame it reads
// the progress source and pushes it through the pipeline.
type FrameLoop struct {
	pipeline *Pipeline
	source   ProgressSource
	clock    timeutil.Clock
	interval time.Duration

	mu       sync.Mutex
	observer func(Frame)
}

// NewFrameLoop builds a loop at fps frames per second (DefaultFPS when not
// positive). A nil clock means the real clock.
func NewFrameLoop(p *Pipeline, src ProgressSource, clock timeutil.Clock, fps int) *FrameLoop {
	if fps <= 0 {
		fps = spring.DefaultFPS
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	return &FrameLoop{
		pipeline: p,
		source:   src,
		clock:    clock,
		interval: time.Second / time.Duration(fps),
	}
}

// OnFrame registers fn to receive every frame. nil removes it.
func (l *FrameLoop) OnFrame(fn func(Frame)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.observer = fn
}

// Interval returns the time between frames.
func (l *FrameLoop) Interval() time.Duration {
	return l.interval
}

// Step runs one frame synchronously.
func (l *FrameLoop) Step() Frame {
	f := l.pipeline.Frame(l.source.Progress())

	l.mu.Lock()
	fn := l.observer
	l.mu.Unlock()
	if fn != nil {
		fn(f)
	}
	return f
}

// Run steps once per frame until ctx is cancelled. On return the frame
// ticker is stopped and the pipeline torn down, so a pending advance never
// fires after the loop is gone.
func (l *FrameLoop) Run(ctx context.Context) error {
	ticker := l.clock.NewTicker(l.interval)
	defer func() {
		ticker.Stop()
		l.pipeline.Close()
	}()

	monitoring.Logf("docking: frame loop started interval=%s", l.interval)
	for {
		select {
		case <-ctx.Done():
			monitoring.Logf("docking: frame loop stopped")
			return ctx.Err()
		case <-ticker.C():
			l.Step()
		}
	}
}
