package relativity

import (
	"context"
	"sync"
	"time"

	"github.com/banshee-data/endurance/internal/config"
	"github.com/banshee-data/endurance/internal/monitoring"
	"github.com/banshee-data/endurance/internal/scalar"
	"github.com/banshee-data/endurance/internal/timeutil"
)

// Config holds the simulator's tuning.
type Config struct {
	TickPeriod     time.Duration // fixed simulated time added per tick
	GravityRange   scalar.Range
	InitialGravity float64
}

// DefaultConfig returns the reference tuning: 100ms ticks, gravity 100..200
// starting at 100.
func DefaultConfig() Config {
	return Config{
		TickPeriod:     100 * time.Millisecond,
		GravityRange:   GravityRange,
		InitialGravity: GravityMin,
	}
}

// ConfigFromTuning builds a Config from a TuningConfig. The gravity range is
// bounded by GravityRange even when cfg was never validated.
func ConfigFromTuning(cfg *config.TuningConfig) Config {
	return Config{
		TickPeriod:     cfg.GetTickPeriod(),
		GravityRange:   BoundGravityRange(scalar.Range{Min: cfg.GetGravityMin(), Max: cfg.GetGravityMax()}),
		InitialGravity: cfg.GetGravityInitial(),
	}
}

// Readout is a consistent snapshot of the simulator for rendering.
type Readout struct {
	Tick         uint64    `json:"tick"`
	Running      bool      `json:"running"`
	Gravity      float64   `json:"gravity"`
	Factor       float64   `json:"factor"`
	ShipSeconds  float64   `json:"ship_seconds"`
	EarthSeconds float64   `json:"earth_seconds"`
	Ship         string    `json:"ship"`
	Earth        EarthTime `json:"earth"`
	FactorText   string    `json:"factor_text"`
	GravityText  string    `json:"gravity_text"`
	Severity     Severity  `json:"severity"`
	At           time.Time `json:"at"`
}

// Simulator advances a ClockPair on a fixed-period tick while running.
type Simulator struct {
	mu       sync.Mutex
	cfg      Config
	clock    timeutil.Clock
	gravity  *Gravity
	pair     ClockPair
	running  bool
	ticks    uint64
	observer func(Readout)
}

// NewSimulator creates a running simulator with zeroed clocks. gravity is the
// shared cell the tick reads; pass the same cell to whatever handles user
// input. A nil gravity gets a fresh cell from cfg. A nil clock means the real
// clock.
func NewSimulator(cfg Config, clock timeutil.Clock, gravity *Gravity) *Simulator {
	if cfg.TickPeriod <= 0 {
		cfg.TickPeriod = DefaultConfig().TickPeriod
	}
	if cfg.GravityRange == (scalar.Range{}) {
		cfg.GravityRange = GravityRange
	}
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	if gravity == nil {
		gravity = NewGravity(cfg.InitialGravity, cfg.GravityRange)
	}
	return &Simulator{
		cfg:     cfg,
		clock:   clock,
		gravity: gravity,
		running: true,
	}
}

// OnTick registers fn to receive the readout after every tick that advanced
// the clocks. It replaces any previous observer; nil removes it.
func (s *Simulator) OnTick(fn func(Readout)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observer = fn
}

// Tick performs one scheduled firing. When running, ship time advances by the
// tick period and earth time by the period times the dilation at the gravity
// value read now. It reports whether the clocks moved.
func (s *Simulator) Tick() (Readout, bool) {
	s.mu.Lock()
	if !s.running {
		r := s.readoutLocked()
		s.mu.Unlock()
		return r, false
	}
	dt := s.cfg.TickPeriod.Seconds()
	s.pair.Advance(dt, Dilation(s.gravity.Get()))
	s.ticks++
	r := s.readoutLocked()
	observer := s.observer
	s.mu.Unlock()

	if observer != nil {
		observer(r)
	}
	return r, true
}

// Run drives Tick from a ticker until ctx is cancelled. The ticker is stopped
// on return.
func (s *Simulator) Run(ctx context.Context) error {
	ticker := s.clock.NewTicker(s.cfg.TickPeriod)
	defer ticker.Stop()

	monitoring.Logf("relativity: simulator started period=%s gravity=%.0f", s.cfg.TickPeriod, s.gravity.Get())
	for {
		select {
		case <-ctx.Done():
			monitoring.Logf("relativity: simulator stopped after %d ticks", s.Ticks())
			return ctx.Err()
		case <-ticker.C():
			s.Tick()
		}
	}
}

// Pause stops the clocks without resetting them.
func (s *Simulator) Pause() {
	s.setRunning(false)
}

// Resume restarts the clocks from where they were paused.
func (s *Simulator) Resume() {
	s.setRunning(true)
}

// Toggle flips between running and paused and returns the new state.
func (s *Simulator) Toggle() bool {
	s.mu.Lock()
	running := !s.running
	s.running = running
	s.mu.Unlock()
	logRunState(running)
	return running
}

func (s *Simulator) setRunning(running bool) {
	s.mu.Lock()
	changed := s.running != running
	s.running = running
	s.mu.Unlock()

	if changed {
		logRunState(running)
	}
}

func logRunState(running bool) {
	if running {
		monitoring.Logf("relativity: resumed")
	} else {
		monitoring.Logf("relativity: paused")
	}
}

// Reset zeroes both clocks. Run state and gravity are left alone.
func (s *Simulator) Reset() {
	s.mu.Lock()
	s.pair.Reset()
	s.mu.Unlock()
	monitoring.Logf("relativity: clocks reset")
}

// SetGravity writes the shared gravity cell, clamping to range, and returns
// the stored value. The next tick uses it.
func (s *Simulator) SetGravity(g float64) float64 {
	return s.gravity.Set(g)
}

// Gravity returns the shared gravity cell.
func (s *Simulator) Gravity() *Gravity {
	return s.gravity
}

// Running reports the run state.
func (s *Simulator) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Ticks returns how many ticks have advanced the clocks since creation.
// Reset does not clear it.
func (s *Simulator) Ticks() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ticks
}

// Clocks returns the current clock pair.
func (s *Simulator) Clocks() ClockPair {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pair
}

// Readout returns a formatted snapshot.
func (s *Simulator) Readout() Readout {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readoutLocked()
}

// Period returns the configured tick period.
func (s *Simulator) Period() time.Duration {
	return s.cfg.TickPeriod
}

func (s *Simulator) readoutLocked() Readout {
	g := s.gravity.Get()
	f := Dilation(g)
	return Readout{
		Tick:         s.ticks,
		Running:      s.running,
		Gravity:      g,
		Factor:       f,
		ShipSeconds:  s.pair.ShipSeconds,
		EarthSeconds: s.pair.EarthSeconds,
		Ship:         FormatShipTime(s.pair.ShipSeconds),
		Earth:        FormatEarthTime(s.pair.EarthSeconds),
		FactorText:   FormatFactor(f),
		GravityText:  FormatGravity(g),
		Severity:     SeverityFor(g),
		At:           s.clock.Now(),
	}
}
