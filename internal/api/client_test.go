package api

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banshee-data/endurance/internal/docking"
	"github.com/banshee-data/endurance/internal/httputil"
)

func TestClient_AgainstServer(t *testing.T) {
	s, _ := setupTestServer(t)
	hc := &httputil.HandlerClient{Handler: s.ServeMux()}
	c := NewClient("http://endurance.local/", hc)
	ctx := context.Background()

	stored, err := c.SetProgress(ctx, 0.5)
	require.NoError(t, err)
	assert.Equal(t, 0.5, stored)

	for i := 0; i < 600 && s.Pipeline().Last().State != docking.StateAligned; i++ {
		s.Loop().Step()
	}

	st, err := c.Docking(ctx)
	require.NoError(t, err)
	assert.Equal(t, docking.StateAligned, st.Frame.State)

	resp, err := c.Confirm(ctx)
	require.NoError(t, err)
	assert.True(t, resp.Confirmed)

	r, err := c.SetGravity(ctx, 185)
	require.NoError(t, err)
	assert.Equal(t, 185.0, r.Gravity)

	r, err = c.RunState(ctx, "pause")
	require.NoError(t, err)
	assert.False(t, r.Running)

	r, err = c.Relativity(ctx)
	require.NoError(t, err)
	assert.False(t, r.Running)

	_, err = c.RunState(ctx, "explode")
	assert.ErrorContains(t, err, "unknown simulator action")

	reqs := hc.Requests()
	require.NotEmpty(t, reqs)
	assert.Equal(t, "/api/docking/progress", reqs[0].URL.Path)
	assert.Equal(t, "application/json", reqs[0].Header.Get("Content-Type"))
}

func TestClient_Errors(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("connection refused")
	m := httputil.NewMockHTTPClient().
		AddErrorResponse(boom).
		AddResponse(http.StatusBadRequest, `{"error":"progress is required"}`).
		AddResponse(http.StatusBadGateway, `upstream`).
		AddResponse(http.StatusOK, `not json`)
	c := NewClient("http://x", m)

	_, err := c.Docking(ctx)
	assert.ErrorIs(t, err, boom)

	_, err = c.SetProgress(ctx, 0.2)
	assert.ErrorContains(t, err, "400 progress is required")

	_, err = c.Relativity(ctx)
	assert.ErrorContains(t, err, "status 502")

	_, err = c.Confirm(ctx)
	assert.ErrorContains(t, err, "decode response")

	assert.Equal(t, 4, m.RequestCount())
	assert.Equal(t, "http://x/api/docking", m.GetRequest(0).URL.String())
}
