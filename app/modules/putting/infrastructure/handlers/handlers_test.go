package puttinghandlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authhandlers "github.com/Black-And-White-Club/frolf-club/app/modules/auth/infrastructure/handlers"
	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/frolf-club/app/modules/league/infrastructure/repositories"
	puttingservice "github.com/Black-And-White-Club/frolf-club/app/modules/putting/application"
	"github.com/Black-And-White-Club/frolf-club/pkg/httpx"
	"github.com/Black-And-White-Club/frolf-club/pkg/observability"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

type testServer struct {
	router chi.Router
	admin  bool
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	store := leaguedb.NewMemoryStore("test-league", 3)
	_, err := store.Ensure(context.Background())
	require.NoError(t, err)

	svc := puttingservice.NewPuttingService(
		store, nil, nil,
		observability.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		nil, nil, nil,
		puttingservice.Options{LeagueID: "test-league"},
	)
	ts := &testServer{router: chi.NewRouter()}
	ts.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(authhandlers.WithAdmin(r.Context(), ts.admin)))
		})
	})
	NewPuttingHandlers(svc, nil).Routes(ts.router)
	return ts
}

func (ts *testServer) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	rec := httptest.NewRecorder()
	ts.router.ServeHTTP(rec, httptest.NewRequest(method, path, &buf))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPuttingRoundOverHTTP(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodPut, "/api/putting/settings", settingsRequest{StationCount: 2, TotalRounds: 1})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var ids []string
	for _, name := range []string{"Ann", "Ben"} {
		rec = ts.do(t, http.MethodPost, "/api/putting/players", addPlayerRequest{Name: name})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		ids = append(ids, decode[leaguedomain.PuttingPlayer](t, rec).ID)
	}

	rec = ts.do(t, http.MethodPost, "/api/putting/cards", createCardRequest{MemberIDs: ids})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	card := decode[leaguedomain.Card](t, rec)

	rec = ts.do(t, http.MethodPost, "/api/putting/begin", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	ts.admin = true
	rec = ts.do(t, http.MethodPost, "/api/putting/begin", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	made := 3
	rec = ts.do(t, http.MethodPut, "/api/putting/rounds/1/scores", map[string]any{"station": 1, "playerId": ids[0], "made": made})
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/putting/rounds/1/cards/"+card.ID+"/submit", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode[httpx.ErrorBody](t, rec)
	assert.Len(t, body.Missing, 3)

	rec = ts.do(t, http.MethodPost, "/api/putting/finalize", nil)
	require.Equal(t, http.StatusConflict, rec.Code)
	body = decode[httpx.ErrorBody](t, rec)
	assert.Equal(t, []string{card.Name}, body.Cards)

	for _, e := range []struct {
		station int
		id      string
	}{{1, ids[1]}, {2, ids[0]}, {2, ids[1]}} {
		rec = ts.do(t, http.MethodPut, "/api/putting/rounds/1/scores", map[string]any{"station": e.station, "playerId": e.id, "made": 0})
		require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
	}
	rec = ts.do(t, http.MethodPost, "/api/putting/rounds/1/cards/"+card.ID+"/submit", nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodPost, "/api/putting/finalize", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/putting/leaderboard", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rows := decode[[]map[string]any](t, rec)
	require.Len(t, rows, 2)
	assert.Equal(t, "Ann", rows[0]["name"])
	assert.EqualValues(t, 3, rows[0]["total"])
}

func TestPuttingValidation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       any
		wantStatus int
	}{
		{name: "made missing", method: http.MethodPut, path: "/api/putting/rounds/1/scores", body: map[string]any{"station": 1, "playerId": "x"}, wantStatus: http.StatusBadRequest},
		{name: "round not a number", method: http.MethodPut, path: "/api/putting/rounds/one/scores", body: map[string]any{"made": 1}, wantStatus: http.StatusBadRequest},
		{name: "scoring during setup", method: http.MethodPut, path: "/api/putting/rounds/1/scores", body: map[string]any{"station": 1, "playerId": "x", "made": 1}, wantStatus: http.StatusConflict},
		{name: "unknown pool", method: http.MethodGet, path: "/api/putting/leaderboard?pool=Z", wantStatus: http.StatusBadRequest},
		{name: "settings out of range", method: http.MethodPut, path: "/api/putting/settings", body: settingsRequest{StationCount: 11, TotalRounds: 3}, wantStatus: http.StatusBadRequest},
		{name: "reset needs admin", method: http.MethodPost, path: "/api/putting/reset", wantStatus: http.StatusUnauthorized},
		{name: "pool change needs admin", method: http.MethodPut, path: "/api/putting/players/x/pool", body: poolRequest{Pool: leaguedomain.PoolB}, wantStatus: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
		})
	}
}

func TestExportXLSX(t *testing.T) {
	ts := newTestServer(t)
	rec := ts.do(t, http.MethodGet, "/api/putting/export.xlsx", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, puttingservice.XLSXContentType, rec.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")))
}

func TestGetState(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(t, http.MethodGet, "/api/putting/", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	got := decode[struct {
		Status leaguedomain.Status        `json:"status"`
		League leaguedomain.PuttingLeague `json:"league"`
	}](t, rec)
	assert.Equal(t, leaguedomain.StatusSetup, got.Status)
	assert.Equal(t, 9, got.League.Settings.StationCount)
}
