// Package testutil holds fixtures shared by the package tests: a fixed epoch,
// a mock clock pinned to it, log muting and small HTTP helpers.
package testutil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/endurance/internal/monitoring"
	"github.com/banshee-data/endurance/internal/timeutil"
)

// Epoch is the start time of every mock clock in the tests.
var Epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

// NewMockClock returns a mock clock set to Epoch.
func NewMockClock() *timeutil.MockClock {
	return timeutil.NewMockClock(Epoch)
}

// MuteLogs silences monitoring.Logf until the test ends.
func MuteLogs(t testing.TB) {
	t.Helper()
	prev := monitoring.Logf
	monitoring.SetLogger(nil)
	t.Cleanup(func() { monitoring.Logf = prev })
}

// DoRequest serves one request against h. An empty body sends no body.
func DoRequest(t testing.TB, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// DecodeJSON decodes the recorded body into v, failing the test on error.
func DecodeJSON(t testing.TB, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

// AssertStatusCode checks that the response status code matches expected.
func AssertStatusCode(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("status code = %d, want %d", got, want)
	}
}
