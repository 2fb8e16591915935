package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestErrorWriters(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		write   func(http.ResponseWriter)
		status  int
		message string
	}{
		{"WriteJSONError", func(w http.ResponseWriter) { WriteJSONError(w, http.StatusConflict, "busy") }, http.StatusConflict, "busy"},
		{"MethodNotAllowed", MethodNotAllowed, http.StatusMethodNotAllowed, "method not allowed"},
		{"BadRequest", func(w http.ResponseWriter) { BadRequest(w, "gravity is required") }, http.StatusBadRequest, "gravity is required"},
		{"InternalServerError", func(w http.ResponseWriter) { InternalServerError(w, "render failed") }, http.StatusInternalServerError, "render failed"},
		{"NotFound", func(w http.ResponseWriter) { NotFound(w, "journal disabled") }, http.StatusNotFound, "journal disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tt.write(rec)

			if rec.Code != tt.status {
				t.Errorf("status = %d, want %d", rec.Code, tt.status)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content-type = %s, want application/json", ct)
			}
			var resp map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("failed to decode response: %v", err)
			}
			if resp["error"] != tt.message {
				t.Errorf("error = %q, want %q", resp["error"], tt.message)
			}
		})
	}
}

func TestWriteJSON(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]float64{"gravity": 150})
	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusCreated)
	}

	var resp map[string]float64
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["gravity"] != 150 {
		t.Errorf("gravity = %v, want 150", resp["gravity"])
	}

	rec = httptest.NewRecorder()
	WriteJSONOK(rec, map[string]bool{"confirmed": true})
	if rec.Code != http.StatusOK {
		t.Errorf("WriteJSONOK status = %d", rec.Code)
	}
}

func TestDecodeJSON(t *testing.T) {
	t.Parallel()

	type body struct {
		Progress *float64 `json:"progress"`
	}

	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{"valid", `{"progress": 0.5}`, ""},
		{"empty", ``, "empty"},
		{"malformed", `{"progress":`, "invalid JSON"},
		{"unknown field", `{"progess": 0.5}`, "unknown field"},
		{"trailing object", `{"progress": 0.5}{"progress": 1}`, "single JSON object"},
		{"too large", `{"progress": 0.5, "pad": "` + strings.Repeat("x", MaxRequestBody) + `"}`, "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.input))
			rec := httptest.NewRecorder()

			var got body
			err := DecodeJSON(rec, req, &got)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if got.Progress == nil || *got.Progress != 0.5 {
					t.Errorf("progress = %v, want 0.5", got.Progress)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
