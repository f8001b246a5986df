package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Black-And-White-Club/frolf-club/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		League:        config.LeagueConfig{ID: "test-league"},
		HTTP:          config.HTTPConfig{Addr: "127.0.0.1:0"},
		Admin:         config.AdminConfig{JWTSecret: "secret", TokenTTL: time.Hour, LoginRateLimit: 1, LoginBurst: 1},
		Queue:         config.QueueConfig{Enabled: true, SweepInterval: time.Minute},
		Archive:       config.ArchiveConfig{Prefix: "putting-archives"},
		Observability: config.ObservabilityConfig{ServiceName: "frolf-club", MetricsEnabled: true},
	}
}

func TestNew_InMemory(t *testing.T) {
	a, err := New(context.Background(), testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer a.Close()

	assert.Nil(t, a.DB)
	assert.Nil(t, a.sweep, "the sweep needs Postgres")

	srv := httptest.NewServer(a.Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "memory", health["store"])

	resp, err = http.Get(srv.URL + "/api/tags/leaderboard")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Post(srv.URL+"/api/tags/players", "application/json", strings.NewReader(`{"name":"Ann","startingPosition":1}`))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Admin operations without a session are rejected by the services.
	resp, err = http.Post(srv.URL+"/api/tags/players/p1/drop", "application/json", nil)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Contains(t, string(body), "frolf_club_operation_attempts_total")
}

func TestRun_StopsOnCancel(t *testing.T) {
	a, err := New(context.Background(), testConfig(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	defer a.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
