package leaguedb

import (
	"context"
	"log/slog"
	"testing"
	"time"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	"github.com/Black-And-White-Club/frolf-club/pkg/eventbus"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishingStore_BroadcastsWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := eventbus.NewInProcess(slog.Default())
	defer bus.Close()

	store := NewPublishingStore(NewMemoryStore("club", 3), bus, "club", slog.Default())
	base, err := store.Ensure(ctx)
	require.NoError(t, err)

	got := make(chan leaguedomain.League, 4)
	unsubscribe, err := store.Subscribe(ctx, func(l leaguedomain.League) { got <- l })
	require.NoError(t, err)
	defer unsubscribe()

	_, err = store.Commit(ctx, addPlayerPatch(base, "a"))
	require.NoError(t, err)

	select {
	case l := <-got:
		require.Len(t, l.Players, 1)
		assert.Equal(t, "a", l.Players[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received after commit")
	}

	// A transaction that writes nothing is not broadcast.
	_, err = store.Transact(ctx, func(leaguedomain.League) (leaguedomain.Patch, error) {
		return leaguedomain.Patch{}, nil
	})
	require.NoError(t, err)

	_, err = store.Transact(ctx, func(l leaguedomain.League) (leaguedomain.Patch, error) {
		return addPlayerPatch(l, "b"), nil
	})
	require.NoError(t, err)

	select {
	case l := <-got:
		assert.Len(t, l.Players, 2)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot received after transaction")
	}
	assert.Empty(t, got)
}

func TestPublishingStore_SkipsUndecodableSnapshot(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := eventbus.NewInProcess(slog.Default())
	defer bus.Close()

	store := NewPublishingStore(NewMemoryStore("club", 3), bus, "club", slog.Default())
	base, err := store.Ensure(ctx)
	require.NoError(t, err)

	got := make(chan leaguedomain.League, 4)
	unsubscribe, err := store.Subscribe(ctx, func(l leaguedomain.League) { got <- l })
	require.NoError(t, err)
	defer unsubscribe()

	topic := eventbus.FormatLeagueScopedTopic(eventbus.LeagueUpdatedV1, "club")
	require.NoError(t, bus.Publish(topic, message.NewMessage(watermill.NewUUID(), []byte("not json"))))

	// The bad message is acknowledged, so the next snapshot is not stuck behind redeliveries.
	_, err = store.Commit(ctx, addPlayerPatch(base, "a"))
	require.NoError(t, err)

	select {
	case l := <-got:
		require.Len(t, l.Players, 1)
		assert.Equal(t, "a", l.Players[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot after an undecodable message was never delivered")
	}
}
