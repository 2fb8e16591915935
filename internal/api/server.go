package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/banshee-data/endurance/internal/docking"
	"github.com/banshee-data/endurance/internal/journal"
	"github.com/banshee-data/endurance/internal/monitoring"
	"github.com/banshee-data/endurance/internal/relativity"
	"github.com/banshee-data/endurance/internal/report"
	"github.com/banshee-data/endurance/internal/timeutil"
)

// ANSI escape codes for cyan and reset
const colorCyan = "\033[36m"
const colorReset = "\033[0m"
const colorYellow = "\033[33m"
const colorBoldGreen = "\033[1;32m"
const colorBoldRed = "\033[1;31m"

// DefaultHistorySize is how many readouts the clock chart keeps.
const DefaultHistorySize = 600

// Server hosts one docking widget and one relativity simulator behind a
// JSON API. It owns their loops; Run drives them until its context ends.
type Server struct {
	pipeline *docking.Pipeline
	progress *docking.ProgressCell
	loop     *docking.FrameLoop
	sim      *relativity.Simulator
	history  *report.History
	clock    timeutil.Clock

	mu             sync.Mutex
	journal        *journal.Journal
	dockingSession string
	simSession     string
	recordReadout  func(relativity.Readout)
	advanced       bool
}

// NewServer wires a pipeline, its progress cell and a simulator together.
// A nil clock means the real clock.
func NewServer(p *docking.Pipeline, progress *docking.ProgressCell, sim *relativity.Simulator, clock timeutil.Clock) *Server {
	if clock == nil {
		clock = timeutil.RealClock{}
	}
	s := &Server{
		pipeline: p,
		progress: progress,
		loop:     docking.NewFrameLoop(p, progress, clock, p.Config().FrameRate),
		sim:      sim,
		history:  report.NewHistory(DefaultHistorySize),
		clock:    clock,
	}
	p.Machine().OnAdvance(s.onAdvance)
	sim.OnTick(s.onReadout)
	return s
}

// AttachJournal starts a docking and a relativity session in j and journals
// every transition plus every readoutEvery-th readout from now on.
func (s *Server) AttachJournal(j *journal.Journal, readoutEvery int) error {
	now := s.clock.Now()
	dockSess, err := j.StartSession(journal.KindDocking, "", now)
	if err != nil {
		return fmt.Errorf("start docking session: %w", err)
	}
	simSess, err := j.StartSession(journal.KindRelativity, "", now)
	if err != nil {
		return fmt.Errorf("start relativity session: %w", err)
	}

	s.mu.Lock()
	s.journal = j
	s.dockingSession = dockSess.SessionID
	s.simSession = simSess.SessionID
	s.recordReadout = j.ReadoutRecorder(simSess.SessionID, readoutEvery)
	s.mu.Unlock()

	s.pipeline.Machine().OnTransition(j.TransitionRecorder(dockSess.SessionID, s.transitionRotation))
	monitoring.Logf("journal: sessions docking=%s relativity=%s", dockSess.SessionID, simSess.SessionID)
	return nil
}

// transitionRotation is the rotation journalled with tr: the frozen value for
// a confirmation, otherwise the live rotation of the frame that crossed the
// window edge.
func (s *Server) transitionRotation(tr docking.Transition) float64 {
	if tr.To == docking.StateConfirmed {
		if v, ok := s.pipeline.Machine().FrozenValue(); ok {
			return v
		}
	}
	return s.pipeline.LiveRotation()
}

func (s *Server) onAdvance() {
	s.mu.Lock()
	s.advanced = true
	s.mu.Unlock()
}

func (s *Server) onReadout(r relativity.Readout) {
	s.history.Add(r)

	s.mu.Lock()
	record := s.recordReadout
	s.mu.Unlock()
	if record != nil {
		record(r)
	}
}

// Run drives the frame loop and the simulator until ctx is cancelled. Both
// loops are torn down before it returns.
func (s *Server) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := s.loop.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			monitoring.Logf("frame loop: %v", err)
		}
	}()
	go func() {
		defer wg.Done()
		if err := s.sim.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			monitoring.Logf("simulator: %v", err)
		}
	}()
	wg.Wait()
}

// ListenAndServe serves the API on addr and runs the loops until ctx is
// cancelled, then shuts the HTTP server down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string, mux *http.ServeMux) error {
	if mux == nil {
		mux = http.NewServeMux()
	}
	mux.Handle("/api/", s.ServeMux())

	ctx, stop := context.WithCancel(ctx)
	defer stop()

	server := &http.Server{
		Addr:              addr,
		Handler:           LoggingMiddleware(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	loopsDone := make(chan struct{})
	go func() {
		defer close(loopsDone)
		s.Run(ctx)
	}()

	errc := make(chan error, 1)
	go func() {
		monitoring.Logf("listening on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
		close(errc)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
	case serveErr = <-errc:
	}

	monitoring.Logf("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		monitoring.Logf("HTTP server shutdown error: %v", err)
	}
	stop()
	<-loopsDone
	if serveErr != nil {
		return fmt.Errorf("failed to start server: %w", serveErr)
	}
	return nil
}

// Pipeline returns the hosted docking widget.
func (s *Server) Pipeline() *docking.Pipeline { return s.pipeline }

// Simulator returns the hosted simulator.
func (s *Server) Simulator() *relativity.Simulator { return s.sim }

// Loop returns the frame loop driving the pipeline.
func (s *Server) Loop() *docking.FrameLoop { return s.loop }

// History returns the readouts retained for charting.
func (s *Server) History() *report.History { return s.history }

type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Flush() {
	if flusher, ok := lrw.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func statusCodeColor(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return colorBoldGreen + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 300 && statusCode < 400:
		return colorYellow + strconv.Itoa(statusCode) + colorReset
	case statusCode >= 400:
		return colorBoldRed + strconv.Itoa(statusCode) + colorReset
	default:
		return strconv.Itoa(statusCode)
	}
}

// LoggingMiddleware logs method, path, query, status, and duration
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		lrw := &loggingResponseWriter{w, http.StatusOK}
		next.ServeHTTP(lrw, r)
		monitoring.Logf(
			"[%s] %s %s%s%s %vms",
			statusCodeColor(lrw.statusCode), r.Method,
			colorCyan, r.RequestURI, colorReset,
			float64(time.Since(start).Nanoseconds())/1e6,
		)
	})
}
