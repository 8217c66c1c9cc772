package main

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mcdev12/draftroom/go/internal/config"
	"github.com/mcdev12/draftroom/go/internal/seed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHandler(t *testing.T) http.Handler {
	t.Helper()

	t.Setenv("STORE_DRIVER", config.StoreMemory)
	t.Setenv("NATS_ENABLED", "false")
	cfg := config.Load()
	require.NoError(t, cfg.Validate())

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	store, database, err := setupStore(ctx, cfg)
	require.NoError(t, err)
	require.Nil(t, database)

	players, err := seed.Load("")
	require.NoError(t, err)
	_, err = seed.EnsurePlayers(ctx, store, players)
	require.NoError(t, err)

	services, err := setupServices(ctx, cfg, store, database)
	require.NoError(t, err)
	t.Cleanup(services.Close)

	return setupServer(ctx, cfg, services).Handler
}

func TestServer_Routes(t *testing.T) {
	srv := httptest.NewServer(newTestHandler(t))
	defer srv.Close()

	tests := []struct {
		path     string
		status   int
		contains string
	}{
		{path: "/health", status: http.StatusOK, contains: `"healthy":true`},
		{path: "/metrics", status: http.StatusOK, contains: "draftroom_drafts_started_total"},
		{path: "/ws/stats", status: http.StatusOK, contains: "total_connections"},
		{path: "/api/players", status: http.StatusOK, contains: "Patrick Mahomes"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			resp, err := http.Get(srv.URL + tt.path)
			require.NoError(t, err)
			defer resp.Body.Close()

			body, err := io.ReadAll(resp.Body)
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)
			assert.True(t, strings.Contains(string(body), tt.contains), string(body))
		})
	}
}

func TestServer_CORSPreflight(t *testing.T) {
	srv := httptest.NewServer(newTestHandler(t))
	defer srv.Close()

	req, err := http.NewRequest(http.MethodOptions, srv.URL+"/api/rooms", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:19006")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, "http://localhost:19006", resp.Header.Get("Access-Control-Allow-Origin"))
}
