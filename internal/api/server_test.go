package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/endurance/internal/docking"
	"github.com/banshee-data/endurance/internal/journal"
	"github.com/banshee-data/endurance/internal/monitoring"
	"github.com/banshee-data/endurance/internal/relativity"
	"github.com/banshee-data/endurance/internal/testutil"
	"github.com/banshee-data/endurance/internal/timeutil"
)

func setupTestServer(t *testing.T) (*Server, *timeutil.MockClock) {
	t.Helper()
	testutil.MuteLogs(t)
	clock := testutil.NewMockClock()
	p := docking.NewPipeline(docking.DefaultConfig(), clock)
	t.Cleanup(p.Close)
	sim := relativity.NewSimulator(relativity.DefaultConfig(), clock, nil)
	return NewServer(p, &docking.ProgressCell{}, sim, clock), clock
}

var (
	doRequest = testutil.DoRequest
	decode    = testutil.DecodeJSON
)

// stepUntilAligned feeds progress 0.5 through the frame loop until the
// widget reports aligned.
func stepUntilAligned(t *testing.T, s *Server) {
	t.Helper()
	s.progress.Set(0.5)
	for i := 0; i < 600; i++ {
		if s.Loop().Step().State == docking.StateAligned {
			return
		}
	}
	t.Fatal("widget never aligned")
}

func TestHandleDocking_Initial(t *testing.T) {
	s, _ := setupTestServer(t)

	w := doRequest(t, s.ServeMux(), http.MethodGet, "/api/docking", "")
	require.Equal(t, http.StatusOK, w.Code)

	var st DockingStatus
	decode(t, w, &st)
	assert.Equal(t, docking.StateIdle, st.Frame.State)
	assert.False(t, st.AdvancePending)
	assert.False(t, st.Advanced)
	assert.Empty(t, st.Session)
}

func TestHandleProgress(t *testing.T) {
	s, _ := setupTestServer(t)
	mux := s.ServeMux()

	tests := []struct {
		name   string
		body   string
		status int
		stored float64
	}{
		{"in range", `{"progress": 0.5}`, http.StatusOK, 0.5},
		{"clamped high", `{"progress": 1.5}`, http.StatusOK, 1},
		{"clamped low", `{"progress": -2}`, http.StatusOK, 0},
		{"missing field", `{}`, http.StatusBadRequest, 0},
		{"malformed", `{"progress":`, http.StatusBadRequest, 0},
		{"wrong type", `{"progress": "half"}`, http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, mux, http.MethodPost, "/api/docking/progress", tt.body)
			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.status == http.StatusOK {
				var resp map[string]float64
				decode(t, w, &resp)
				assert.Equal(t, tt.stored, resp["progress"])
				assert.Equal(t, tt.stored, s.progress.Progress())
			}
		})
	}

	w := doRequest(t, mux, http.MethodGet, "/api/docking/progress", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestHandleConfirm_Idle(t *testing.T) {
	s, clock := setupTestServer(t)

	w := doRequest(t, s.ServeMux(), http.MethodPost, "/api/docking/confirm", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp ConfirmResponse
	decode(t, w, &resp)
	assert.False(t, resp.Confirmed)
	assert.Equal(t, docking.StateIdle, resp.Frame.State)
	assert.Zero(t, clock.PendingTimers())
}

func TestHandleConfirm_AlignedThenAdvance(t *testing.T) {
	s, clock := setupTestServer(t)
	mux := s.ServeMux()
	stepUntilAligned(t, s)

	w := doRequest(t, mux, http.MethodPost, "/api/docking/confirm", "")
	var resp ConfirmResponse
	decode(t, w, &resp)
	require.True(t, resp.Confirmed)
	assert.Equal(t, docking.StateConfirmed, resp.Frame.State)
	assert.Equal(t, 90.0, resp.Frame.DisplayRotation)

	var st DockingStatus
	decode(t, doRequest(t, mux, http.MethodGet, "/api/docking", ""), &st)
	assert.True(t, st.AdvancePending)
	assert.False(t, st.Advanced)

	clock.Advance(time.Second)
	decode(t, doRequest(t, mux, http.MethodGet, "/api/docking", ""), &st)
	assert.False(t, st.AdvancePending)
	assert.True(t, st.Advanced)

	// A second confirm is a no-op.
	decode(t, doRequest(t, mux, http.MethodPost, "/api/docking/confirm", ""), &resp)
	assert.False(t, resp.Confirmed)
	assert.Equal(t, docking.StateConfirmed, resp.Frame.State)
}

func TestHandleGravityAndTick(t *testing.T) {
	s, _ := setupTestServer(t)
	mux := s.ServeMux()

	w := doRequest(t, mux, http.MethodPost, "/api/relativity/gravity", `{"gravity": 130}`)
	require.Equal(t, http.StatusOK, w.Code)
	var r relativity.Readout
	decode(t, w, &r)
	assert.Equal(t, 130.0, r.Gravity)
	assert.Equal(t, 7.0, r.Factor)

	s.Simulator().Tick()
	decode(t, doRequest(t, mux, http.MethodGet, "/api/relativity", ""), &r)
	assert.Equal(t, uint64(1), r.Tick)
	assert.InDelta(t, 0.1, r.ShipSeconds, 1e-9)
	assert.InDelta(t, 0.7, r.EarthSeconds, 1e-9)

	decode(t, doRequest(t, mux, http.MethodPost, "/api/relativity/gravity", `{"gravity": 500}`), &r)
	assert.Equal(t, 200.0, r.Gravity)

	var g map[string]float64
	decode(t, doRequest(t, mux, http.MethodGet, "/api/relativity/gravity", ""), &g)
	assert.Equal(t, 200.0, g["gravity"])

	assert.Equal(t, http.StatusBadRequest, doRequest(t, mux, http.MethodPost, "/api/relativity/gravity", `{}`).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, doRequest(t, mux, http.MethodDelete, "/api/relativity/gravity", "").Code)
}

func TestRunStateRoutes(t *testing.T) {
	s, _ := setupTestServer(t)
	mux := s.ServeMux()
	sim := s.Simulator()

	sim.SetGravity(120)
	sim.Tick()

	var r relativity.Readout
	decode(t, doRequest(t, mux, http.MethodPost, "/api/relativity/pause", ""), &r)
	assert.False(t, r.Running)
	_, advanced := sim.Tick()
	assert.False(t, advanced)

	decode(t, doRequest(t, mux, http.MethodPost, "/api/relativity/toggle", ""), &r)
	assert.True(t, r.Running)
	decode(t, doRequest(t, mux, http.MethodPost, "/api/relativity/toggle", ""), &r)
	assert.False(t, r.Running)
	decode(t, doRequest(t, mux, http.MethodPost, "/api/relativity/resume", ""), &r)
	assert.True(t, r.Running)

	require.NotEmpty(t, s.History().Snapshot())
	decode(t, doRequest(t, mux, http.MethodPost, "/api/relativity/reset", ""), &r)
	assert.Zero(t, r.ShipSeconds)
	assert.Zero(t, r.EarthSeconds)
	assert.True(t, r.Running, "reset leaves the run state alone")
	assert.Equal(t, 120.0, r.Gravity, "reset leaves gravity alone")
	assert.Empty(t, s.History().Snapshot())

	assert.Equal(t, http.StatusMethodNotAllowed, doRequest(t, mux, http.MethodGet, "/api/relativity/pause", "").Code)
}

func TestHandleReadouts_History(t *testing.T) {
	s, _ := setupTestServer(t)
	mux := s.ServeMux()
	for i := 0; i < 5; i++ {
		s.Simulator().Tick()
	}

	var all []relativity.Readout
	decode(t, doRequest(t, mux, http.MethodGet, "/api/relativity/readouts", ""), &all)
	require.Len(t, all, 5)
	assert.Equal(t, uint64(5), all[4].Tick)

	var last2 []relativity.Readout
	decode(t, doRequest(t, mux, http.MethodGet, "/api/relativity/readouts?limit=2", ""), &last2)
	require.Len(t, last2, 2)
	assert.Equal(t, uint64(4), last2[0].Tick)

	assert.Equal(t, http.StatusBadRequest, doRequest(t, mux, http.MethodGet, "/api/relativity/readouts?limit=x", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, mux, http.MethodGet, "/api/relativity/readouts?source=journal", "").Code)
	assert.Equal(t, http.StatusNotFound, doRequest(t, mux, http.MethodGet, "/api/docking/events", "").Code)
}

func TestAttachJournal(t *testing.T) {
	s, _ := setupTestServer(t)
	mux := s.ServeMux()

	j, err := journal.Open(journal.MemoryPath)
	require.NoError(t, err)
	defer j.Close()
	require.NoError(t, s.AttachJournal(j, 2))

	stepUntilAligned(t, s)
	aligningRotation := s.Pipeline().Last().Rotation
	require.True(t, s.Pipeline().Confirm())
	for i := 0; i < 4; i++ {
		s.Simulator().Tick()
	}

	var events []journal.AlignmentEvent
	w := doRequest(t, mux, http.MethodGet, "/api/docking/events", "")
	require.Equal(t, http.StatusOK, w.Code)
	decode(t, w, &events)
	require.Len(t, events, 2)
	assert.Equal(t, docking.StateAligned, events[0].To)
	assert.Equal(t, docking.StateConfirmed, events[1].To)
	assert.InDelta(t, aligningRotation, events[0].Rotation, 1e-9, "rotation of the frame that entered the window")
	assert.GreaterOrEqual(t, events[0].Rotation, 85.0)
	assert.Equal(t, 90.0, events[1].Rotation, "confirmation records the frozen value")

	var rows []journal.ClockReadout
	decode(t, doRequest(t, mux, http.MethodGet, "/api/relativity/readouts?source=journal", ""), &rows)
	require.Len(t, rows, 2)
	assert.Equal(t, uint64(2), rows[0].Tick)
	assert.Equal(t, uint64(4), rows[1].Tick)

	var st DockingStatus
	decode(t, doRequest(t, mux, http.MethodGet, "/api/docking", ""), &st)
	assert.NotEmpty(t, st.Session)
}

func TestChartsAndVersion(t *testing.T) {
	s, _ := setupTestServer(t)
	mux := s.ServeMux()
	s.Simulator().Tick()

	w := doRequest(t, mux, http.MethodGet, "/api/charts/clocks", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")

	w = doRequest(t, mux, http.MethodGet, "/api/charts/dilation.png", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))

	var v map[string]string
	decode(t, doRequest(t, mux, http.MethodGet, "/api/version", ""), &v)
	assert.Contains(t, v, "version")
}

func TestLoggingMiddleware(t *testing.T) {
	lines, restore := monitoring.Capture(fmt.Sprintf)
	defer restore()

	h := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	doRequest(t, h, http.MethodGet, "/api/docking?x=1", "")

	got := lines()
	require.Len(t, got, 1)
	assert.Contains(t, got[0], "418")
	assert.Contains(t, got[0], "/api/docking?x=1")
}

func TestStatusCodeColor(t *testing.T) {
	assert.Equal(t, colorBoldGreen+"200"+colorReset, statusCodeColor(200))
	assert.Equal(t, colorYellow+"304"+colorReset, statusCodeColor(304))
	assert.Equal(t, colorBoldRed+"404"+colorReset, statusCodeColor(404))
	assert.Equal(t, colorBoldRed+"500"+colorReset, statusCodeColor(500))
	assert.Equal(t, "101", statusCodeColor(101))
}

func TestListenAndServe_Shutdown(t *testing.T) {
	s, _ := setupTestServer(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0", nil) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("ListenAndServe did not return")
	}
}

func TestListenAndServe_BadAddr(t *testing.T) {
	s, _ := setupTestServer(t)
	err := s.ListenAndServe(context.Background(), "127.0.0.1:notaport", http.NewServeMux())
	assert.ErrorContains(t, err, "failed to start server")
}
