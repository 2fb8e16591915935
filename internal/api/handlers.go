package api

import (
	"net/http"
	"strconv"

	"github.com/banshee-data/endurance/internal/docking"
	"github.com/banshee-data/endurance/internal/httputil"
	"github.com/banshee-data/endurance/internal/journal"
	"github.com/banshee-data/endurance/internal/relativity"
	"github.com/banshee-data/endurance/internal/report"
	"github.com/banshee-data/endurance/internal/version"
)

// DockingStatus is the body of GET /api/docking.
type DockingStatus struct {
	Frame          docking.Frame `json:"frame"`
	Progress       float64       `json:"progress"`
	AdvancePending bool          `json:"advance_pending"`
	Advanced       bool          `json:"advanced"`
	Session        string        `json:"session,omitempty"`
}

// ConfirmResponse is the body of POST /api/docking/confirm.
type ConfirmResponse struct {
	Confirmed bool          `json:"confirmed"`
	Frame     docking.Frame `json:"frame"`
}

type progressRequest struct {
	Progress *float64 `json:"progress"`
}

type gravityRequest struct {
	Gravity *float64 `json:"gravity"`
}

// ServeMux returns the API routes, all rooted at /api/.
func (s *Server) ServeMux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/docking", s.handleDocking)
	mux.HandleFunc("/api/docking/progress", s.handleProgress)
	mux.HandleFunc("/api/docking/confirm", s.handleConfirm)
	mux.HandleFunc("/api/docking/events", s.handleDockingEvents)
	mux.HandleFunc("/api/relativity", s.handleRelativity)
	mux.HandleFunc("/api/relativity/gravity", s.handleGravity)
	mux.HandleFunc("/api/relativity/pause", s.runStateHandler(s.sim.Pause))
	mux.HandleFunc("/api/relativity/resume", s.runStateHandler(s.sim.Resume))
	mux.HandleFunc("/api/relativity/toggle", s.runStateHandler(func() { s.sim.Toggle() }))
	mux.HandleFunc("/api/relativity/reset", s.runStateHandler(s.reset))
	mux.HandleFunc("/api/relativity/readouts", s.handleReadouts)
	mux.HandleFunc("/api/charts/clocks", report.ClockChartHandler(s.history.Snapshot))
	mux.HandleFunc("/api/charts/dilation.png", report.DilationPNGHandler(201))
	mux.HandleFunc("/api/version", s.handleVersion)
	return mux
}

func (s *Server) dockingStatus() DockingStatus {
	s.mu.Lock()
	advanced, session := s.advanced, s.dockingSession
	s.mu.Unlock()
	return DockingStatus{
		Frame:          s.pipeline.Last(),
		Progress:       s.progress.Progress(),
		AdvancePending: s.pipeline.Machine().AdvancePending(),
		Advanced:       advanced,
		Session:        session,
	}
}

func (s *Server) handleDocking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.dockingStatus())
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	var req progressRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.BadRequest(w, err.Error())
		return
	}
	if req.Progress == nil {
		httputil.BadRequest(w, "progress is required")
		return
	}
	stored := s.progress.Set(*req.Progress)
	httputil.WriteJSONOK(w, map[string]float64{"progress": stored})
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	confirmed := s.pipeline.Confirm()
	httputil.WriteJSONOK(w, ConfirmResponse{Confirmed: confirmed, Frame: s.pipeline.Last()})
}

func (s *Server) handleDockingEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	j, session := s.journalFor(func() string { return s.dockingSession })
	if j == nil {
		httputil.NotFound(w, "journal is not enabled")
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	events, err := j.RecentTransitions(session, limit)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	if events == nil {
		events = []journal.AlignmentEvent{}
	}
	httputil.WriteJSONOK(w, events)
}

func (s *Server) handleRelativity(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	httputil.WriteJSONOK(w, s.sim.Readout())
}

func (s *Server) handleGravity(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		httputil.WriteJSONOK(w, map[string]float64{"gravity": s.sim.Gravity().Get()})
	case http.MethodPost:
		var req gravityRequest
		if err := httputil.DecodeJSON(w, r, &req); err != nil {
			httputil.BadRequest(w, err.Error())
			return
		}
		if req.Gravity == nil {
			httputil.BadRequest(w, "gravity is required")
			return
		}
		s.sim.SetGravity(*req.Gravity)
		httputil.WriteJSONOK(w, s.sim.Readout())
	default:
		httputil.MethodNotAllowed(w)
	}
}

func (s *Server) runStateHandler(action func()) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			httputil.MethodNotAllowed(w)
			return
		}
		action()
		httputil.WriteJSONOK(w, s.sim.Readout())
	}
}

func (s *Server) reset() {
	s.sim.Reset()
	s.history.Clear()
}

func (s *Server) handleReadouts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	if r.URL.Query().Get("source") == "journal" {
		j, session := s.journalFor(func() string { return s.simSession })
		if j == nil {
			httputil.NotFound(w, "journal is not enabled")
			return
		}
		rows, err := j.RecentReadouts(session, limit)
		if err != nil {
			httputil.InternalServerError(w, err.Error())
			return
		}
		if rows == nil {
			rows = []journal.ClockReadout{}
		}
		httputil.WriteJSONOK(w, rows)
		return
	}

	readouts := s.history.Snapshot()
	if limit > 0 && len(readouts) > limit {
		readouts = readouts[len(readouts)-limit:]
	}
	if readouts == nil {
		readouts = []relativity.Readout{}
	}
	httputil.WriteJSONOK(w, readouts)
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]string{
		"version":    version.Version,
		"git_sha":    version.GitSHA,
		"build_time": version.BuildTime,
	})
}

func (s *Server) journalFor(session func() string) (*journal.Journal, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.journal, session()
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		httputil.BadRequest(w, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}
