package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/banshee-data/endurance/internal/httputil"
	"github.com/banshee-data/endurance/internal/relativity"
)

// Client talks to a running Server.
type Client struct {
	base string
	http httputil.HTTPClient
}

// NewClient targets the server at base (e.g. "http://localhost:8080").
func NewClient(base string, c httputil.HTTPClient) *Client {
	return &Client{base: strings.TrimRight(base, "/"), http: c}
}

// Docking fetches the widget status.
func (c *Client) Docking(ctx context.Context) (DockingStatus, error) {
	var out DockingStatus
	err := c.do(ctx, http.MethodGet, "/api/docking", nil, &out)
	return out, err
}

// SetProgress writes the scroll progress and returns the stored value.
func (c *Client) SetProgress(ctx context.Context, progress float64) (float64, error) {
	var out map[string]float64
	if err := c.do(ctx, http.MethodPost, "/api/docking/progress", progressRequest{Progress: &progress}, &out); err != nil {
		return 0, err
	}
	return out["progress"], nil
}

// Confirm presses the confirm control.
func (c *Client) Confirm(ctx context.Context) (ConfirmResponse, error) {
	var out ConfirmResponse
	err := c.do(ctx, http.MethodPost, "/api/docking/confirm", nil, &out)
	return out, err
}

// Relativity fetches the current readout.
func (c *Client) Relativity(ctx context.Context) (relativity.Readout, error) {
	var out relativity.Readout
	err := c.do(ctx, http.MethodGet, "/api/relativity", nil, &out)
	return out, err
}

// SetGravity moves the gravity slider.
func (c *Client) SetGravity(ctx context.Context, g float64) (relativity.Readout, error) {
	var out relativity.Readout
	err := c.do(ctx, http.MethodPost, "/api/relativity/gravity", gravityRequest{Gravity: &g}, &out)
	return out, err
}

// RunState posts one of "pause", "resume", "toggle" or "reset".
func (c *Client) RunState(ctx context.Context, action string) (relativity.Readout, error) {
	switch action {
	case "pause", "resume", "toggle", "reset":
	default:
		return relativity.Readout{}, fmt.Errorf("unknown simulator action %q", action)
	}
	var out relativity.Readout
	err := c.do(ctx, http.MethodPost, "/api/relativity/"+action, nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}) error {
	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rd = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.base+path, rd)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode >= 300 {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Error != "" {
			return fmt.Errorf("%s %s: %d %s", method, path, resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("%s %s: status %d", method, path, resp.StatusCode)
	}
	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
