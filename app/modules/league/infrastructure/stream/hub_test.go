package leaguestream

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/frolf-club/app/modules/league/infrastructure/repositories"
	"github.com/Black-And-White-Club/frolf-club/pkg/eventbus"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var f Frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestHub_SnapshotThenChanges(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := eventbus.NewInProcess(nil)
	defer bus.Close()
	inner := leaguedb.NewMemoryStore("stream-league", 3)
	store := leaguedb.NewPublishingStore(inner, bus, "stream-league", nil)
	_, err := store.Ensure(ctx)
	require.NoError(t, err)

	hub := NewHub(store, nil, nil)
	stop, err := hub.Start(ctx)
	require.NoError(t, err)

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	first := readFrame(t, conn)
	assert.Equal(t, SnapshotType, first.Type)
	assert.Empty(t, first.League.Players)

	players := []leaguedomain.Player{{ID: "p1", Name: "Ann", StartingPosition: 1}}
	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, 10*time.Millisecond)
	_, err = store.Commit(ctx, leaguedomain.Patch{Players: &players})
	require.NoError(t, err)

	next := readFrame(t, conn)
	require.Len(t, next.League.Players, 1)
	assert.Equal(t, "Ann", next.League.Players[0].Name)

	stop()
	assert.Equal(t, 0, hub.Clients())
}

func TestHub_RejectsForeignOrigin(t *testing.T) {
	inner := leaguedb.NewMemoryStore("l", 3)
	_, err := inner.Ensure(context.Background())
	require.NoError(t, err)
	store := leaguedb.NewPublishingStore(inner, eventbus.NewInProcess(nil), "l", nil)

	srv := httptest.NewServer(NewHub(store, []string{"https://club.example"}, nil))
	defer srv.Close()

	header := map[string][]string{"Origin": {"https://evil.example"}}
	_, resp, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), header)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 403, resp.StatusCode)
}

// racingSource reports a change while the snapshot read is in flight.
type racingSource struct {
	hub *Hub
}

func (s *racingSource) Read(context.Context) (leaguedomain.League, error) {
	s.hub.Broadcast(leaguedomain.NewLeague("new"))
	return leaguedomain.NewLeague("old"), nil
}

func (s *racingSource) Subscribe(context.Context, func(leaguedomain.League)) (func(), error) {
	return func() {}, nil
}

func TestHub_ChangeDuringSnapshotReadIsDelivered(t *testing.T) {
	source := &racingSource{}
	hub := NewHub(source, nil, nil)
	source.hub = hub

	srv := httptest.NewServer(hub)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "old", readFrame(t, conn).League.ID)
	assert.Equal(t, "new", readFrame(t, conn).League.ID, "the newer snapshot follows the initial one")
}
