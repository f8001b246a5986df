package tagqueue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	tagservice "github.com/Black-And-White-Club/frolf-club/app/modules/tags/application"
	"github.com/Black-And-White-Club/frolf-club/pkg/eventbus"
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type FakeLister struct {
	ExpiredHoldersFunc func(ctx context.Context) ([]tagservice.ExpiredHolder, error)
}

func (f *FakeLister) ExpiredHolders(ctx context.Context) ([]tagservice.ExpiredHolder, error) {
	return f.ExpiredHoldersFunc(ctx)
}

func TestDefendSweepWorker(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus := eventbus.NewInProcess(nil)
	defer bus.Close()
	messages, err := bus.Subscribe(ctx, eventbus.FormatLeagueScopedTopic(eventbus.DefendExpiredV1, "l1"))
	require.NoError(t, err)

	deadline := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	holders := []tagservice.ExpiredHolder{}
	lister := &FakeLister{ExpiredHoldersFunc: func(context.Context) ([]tagservice.ExpiredHolder, error) {
		return holders, nil
	}}
	w := NewDefendSweepWorker(lister, bus, nil)
	w.now = func() time.Time { return deadline.Add(time.Hour) }

	sent, err := w.Sweep(ctx, "l1")
	require.NoError(t, err)
	assert.False(t, sent, "nothing expired")

	holders = []tagservice.ExpiredHolder{{Position: 2, PlayerID: "p2", Name: "Ben", Deadline: deadline}}
	require.NoError(t, w.Work(ctx, &river.Job[DefendSweepJob]{JobRow: &rivertype.JobRow{}, Args: DefendSweepJob{LeagueID: "l1"}}))

	select {
	case msg := <-messages:
		var notice DefendExpiredNotice
		require.NoError(t, json.Unmarshal(msg.Payload, &notice))
		msg.Ack()
		assert.Equal(t, "l1", notice.LeagueID)
		require.Len(t, notice.Holders, 1)
		assert.Equal(t, "Ben", notice.Holders[0].Name)
	case <-time.After(2 * time.Second):
		t.Fatal("no notice published")
	}

	sent, err = w.Sweep(ctx, "l1")
	require.NoError(t, err)
	assert.False(t, sent, "same set is announced once")
}

func TestDefendSweepWorker_ListError(t *testing.T) {
	lister := &FakeLister{ExpiredHoldersFunc: func(context.Context) ([]tagservice.ExpiredHolder, error) {
		return nil, errors.New("db down")
	}}
	w := NewDefendSweepWorker(lister, eventbus.NewInProcess(nil), nil)

	_, err := w.Sweep(context.Background(), "l1")
	assert.ErrorContains(t, err, "db down")
}
