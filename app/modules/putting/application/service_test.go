package puttingservice

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/frolf-club/app/modules/league/infrastructure/repositories"
	puttingdomain "github.com/Black-And-White-Club/frolf-club/app/modules/putting/domain"
	"github.com/Black-And-White-Club/frolf-club/pkg/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/trace/noop"
)

var t0 = time.Date(2026, 6, 2, 18, 0, 0, 0, time.UTC)

func newTestService(store *FakeStore, archive ObjectStore, opts Options) *PuttingService {
	if opts.LeagueID == "" {
		opts.LeagueID = "test-league"
	}
	if opts.ArchivePrefix == "" {
		opts.ArchivePrefix = "putting-archives"
	}
	return NewPuttingService(
		store,
		archive,
		slog.Default(),
		observability.NewNoop(),
		noop.NewTracerProvider().Tracer("test"),
		&fakeClock{t: t0},
		sequentialIDs("id"),
		rand.New(rand.NewPCG(7, 11)),
		opts,
	)
}

// seedRoster configures the format and adds players named Ann, Ben, ...
func seedRoster(t *testing.T, svc *PuttingService, stations, rounds int, names ...string) []leaguedomain.PuttingPlayer {
	t.Helper()
	ctx := context.Background()
	_, err := svc.UpdateSettings(ctx, stations, rounds)
	require.NoError(t, err)
	out := make([]leaguedomain.PuttingPlayer, 0, len(names))
	for _, n := range names {
		p, err := svc.AddPlayer(ctx, n, leaguedomain.PoolA)
		require.NoError(t, err)
		out = append(out, p)
	}
	return out
}

// scoreCurrentRound enters made counts for every card of the current round and submits them.
func scoreCurrentRound(t *testing.T, svc *PuttingService, made func(playerID string) int) {
	t.Helper()
	ctx := context.Background()
	state, err := svc.State(ctx)
	require.NoError(t, err)
	round := state.Settings.CurrentRound
	for _, c := range state.CardsByRound[round] {
		for station := 1; station <= state.Settings.StationCount; station++ {
			for _, id := range c.MemberIDs {
				require.NoError(t, svc.SetMade(ctx, round, station, id, made(id)))
			}
		}
		require.NoError(t, svc.SubmitCard(ctx, round, c.ID))
	}
}

func TestPuttingService_FullLeague(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	archive := &FakeArchive{}
	svc := newTestService(store, archive, Options{})
	players := seedRoster(t, svc, 2, 2, "Ann", "Ben", "Cat", "Dee", "Eve")
	best := players[0].ID

	cards, err := svc.RandomizeCards(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cards)
	seated := 0
	for _, c := range cards {
		assert.GreaterOrEqual(t, len(c.MemberIDs), leaguedomain.MinCardSize)
		seated += len(c.MemberIDs)
	}
	assert.Equal(t, 5, seated)

	_, err = svc.BeginRound(ctx, false)
	assert.ErrorIs(t, err, leaguedomain.ErrUnauthorized)
	settings, err := svc.BeginRound(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 1, settings.CurrentRound)

	scoreCurrentRound(t, svc, func(id string) int {
		if id == best {
			return 4
		}
		return 1
	})

	next, err := svc.AdvanceRound(ctx, true)
	require.NoError(t, err)
	require.NotEmpty(t, next)
	assert.Contains(t, next[0].MemberIDs, best, "leader is seeded on the first card")

	scoreCurrentRound(t, svc, func(string) int { return 2 })

	standings, err := svc.Finalize(ctx, false)
	require.NoError(t, err)
	require.Len(t, standings, 5)
	assert.Equal(t, best, standings[0].PlayerID)
	// 2 stations * 5 points, then 2 stations * 2 points.
	assert.Equal(t, 14, standings[0].Total)
	assert.Equal(t, []int{10, 4}, standings[0].RoundTotals)

	objects := archive.Objects()
	require.Len(t, objects, 1)
	assert.Equal(t, "putting-archives/test-league/20260602T180000Z.xlsx", objects[0].Key)
	assert.Equal(t, XLSXContentType, objects[0].ContentType)

	err = svc.SetMade(ctx, 2, 1, best, 0)
	assert.True(t, leaguedomain.IsState(err), "finalized league is read-only")
}

func TestPuttingService_FinalizeRequiresAdmin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewFakeStore(), nil, Options{FinalizeRequiresAdmin: true})
	players := seedRoster(t, svc, 1, 1, "Ann", "Ben")
	_, err := svc.CreateCard(ctx, []string{players[0].ID, players[1].ID})
	require.NoError(t, err)
	_, err = svc.BeginRound(ctx, true)
	require.NoError(t, err)
	scoreCurrentRound(t, svc, func(string) int { return 3 })

	_, err = svc.Finalize(ctx, false)
	assert.ErrorIs(t, err, leaguedomain.ErrUnauthorized)

	_, err = svc.Finalize(ctx, true)
	require.NoError(t, err)
}

func TestPuttingService_ArchiveFailureDoesNotFailFinalize(t *testing.T) {
	ctx := context.Background()
	archive := &FakeArchive{PutFunc: func(context.Context, string, []byte, string) error {
		return errors.New("bucket unavailable")
	}}
	svc := newTestService(NewFakeStore(), archive, Options{})
	players := seedRoster(t, svc, 1, 1, "Ann", "Ben")
	_, err := svc.CreateCard(ctx, []string{players[0].ID, players[1].ID})
	require.NoError(t, err)
	_, err = svc.BeginRound(ctx, true)
	require.NoError(t, err)
	scoreCurrentRound(t, svc, func(string) int { return 1 })

	_, err = svc.Finalize(ctx, false)
	require.NoError(t, err)

	state, err := svc.State(ctx)
	require.NoError(t, err)
	assert.True(t, state.Settings.Finalized)
}

func TestPuttingService_WritePaths(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	svc := newTestService(store, nil, Options{})
	players := seedRoster(t, svc, 1, 1, "Ann", "Ben")
	_, err := svc.CreateCard(ctx, []string{players[0].ID, players[1].ID})
	require.NoError(t, err)
	_, err = svc.BeginRound(ctx, true)
	require.NoError(t, err)

	tests := []struct {
		name string
		op   func() error
		want []string
	}{
		{
			name: "set made is transactional",
			op:   func() error { return svc.SetMade(ctx, 1, 1, players[0].ID, 2) },
			want: []string{"Transact"},
		},
		{
			name: "pool change is transactional",
			op:   func() error { return svc.SetPool(ctx, players[1].ID, leaguedomain.PoolB, true) },
			want: []string{"Transact"},
		},
		{
			name: "pool change needs admin",
			op:   func() error { return svc.SetPool(ctx, players[0].ID, leaguedomain.PoolC, false) },
			want: []string{},
		},
		{
			name: "adjustment is transactional",
			op:   func() error { return svc.SetFinalTotal(ctx, players[0].ID, 20, true) },
			want: []string{"Transact"},
		},
		{
			name: "adjustment needs admin",
			op:   func() error { return svc.ClearAdjustment(ctx, players[0].ID, false) },
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := len(store.Trace())
			_ = tt.op()
			assert.Equal(t, tt.want, store.Trace()[before:])
		})
	}

	rows, err := svc.Leaderboard(ctx, leaguedomain.PoolB)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Ben", rows[0].Name)

	rows, err = svc.Leaderboard(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, "Ann", rows[0].Name)
	assert.Equal(t, 20, rows[0].Total)
	assert.Equal(t, 18, rows[0].Adjustment)
}

func TestPuttingService_SetupCommitsBlind(t *testing.T) {
	store := NewFakeStore()
	svc := newTestService(store, nil, Options{})

	_, err := svc.AddPlayer(context.Background(), "  Ann ", "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Read", "Commit"}, store.Trace())

	state, err := svc.State(context.Background())
	require.NoError(t, err)
	require.Len(t, state.Players, 1)
	assert.Equal(t, "Ann", state.Players[0].Name)
	assert.Equal(t, leaguedomain.PoolA, state.Players[0].Pool)
}

func TestPuttingService_CardStatus(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewFakeStore(), nil, Options{})
	players := seedRoster(t, svc, 2, 2, "Ann", "Ben")
	_, err := svc.CreateCard(ctx, []string{players[0].ID, players[1].ID})
	require.NoError(t, err)

	draft, err := svc.CardStatus(ctx, 0)
	require.NoError(t, err)
	require.Len(t, draft, 1)
	assert.Len(t, draft[0].Missing, 4)

	_, err = svc.BeginRound(ctx, true)
	require.NoError(t, err)
	require.NoError(t, svc.SetMade(ctx, 1, 1, players[0].ID, 4))

	statuses, err := svc.CardStatus(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, statuses[0].Missing, 3)
	assert.Equal(t, 5, statuses[0].Totals[players[0].ID])

	_, err = svc.CardStatus(ctx, 3)
	assert.True(t, leaguedomain.IsValidation(err))
}

func TestPuttingService_Reset(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	svc := newTestService(store, nil, Options{})
	seedRoster(t, svc, 3, 2, "Ann", "Ben")

	assert.ErrorIs(t, svc.Reset(ctx, false), leaguedomain.ErrUnauthorized)
	require.NoError(t, svc.Reset(ctx, true))

	state, err := svc.State(ctx)
	require.NoError(t, err)
	assert.Empty(t, state.Players)
	assert.Equal(t, leaguedomain.DefaultStation, state.Settings.StationCount)
}

func TestPuttingService_ExportXLSX(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(NewFakeStore(), nil, Options{})
	seedRoster(t, svc, 1, 1, "Ann", "Ben")

	data, err := svc.ExportXLSX(ctx)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(standingsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Rank", "Player", "Pool", "Adjustment", "Total"}, rows[0])
	assert.Equal(t, "Ann", rows[1][1])
}

func TestPuttingService_StoreFailureIsWrapped(t *testing.T) {
	store := NewFakeStore()
	store.ReadFunc = func(context.Context) (leaguedomain.League, error) {
		return leaguedomain.League{}, errors.New("connection refused")
	}
	svc := newTestService(store, nil, Options{})

	_, err := svc.Leaderboard(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, "Leaderboard: connection refused", err.Error())
}

// scoredCard returns a service in round 1 with one fully scored, unsubmitted card.
func scoredCard(t *testing.T, store *FakeStore) (*PuttingService, string) {
	t.Helper()
	ctx := context.Background()
	svc := newTestService(store, nil, Options{})
	players := seedRoster(t, svc, 2, 1, "Ann", "Ben")
	card, err := svc.CreateCard(ctx, []string{players[0].ID, players[1].ID})
	require.NoError(t, err)
	_, err = svc.BeginRound(ctx, true)
	require.NoError(t, err)
	for station := 1; station <= 2; station++ {
		for _, p := range players {
			require.NoError(t, svc.SetMade(ctx, 1, station, p.ID, 3))
		}
	}
	return svc, card.ID
}

func TestPuttingService_SubmitCardRetryRechecksSubmission(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	svc, cardID := scoredCard(t, store)

	// The second scorekeeper submits after the first has read its snapshot but
	// before the first writes, so the first write loses the version check.
	var rivalDone atomic.Bool
	var rivalErr error
	store.TransactFunc = func(ctx context.Context, fn leaguedb.TxFunc) (leaguedomain.League, error) {
		return store.inner.Transact(ctx, func(l leaguedomain.League) (leaguedomain.Patch, error) {
			patch, err := fn(l)
			if rivalDone.CompareAndSwap(false, true) {
				rivalErr = svc.SubmitCard(ctx, 1, cardID)
			}
			return patch, err
		})
	}

	err := svc.SubmitCard(ctx, 1, cardID)
	require.NoError(t, rivalErr, "the rival submit lands first")
	assert.ErrorIs(t, err, puttingdomain.ErrCardAlreadySubmitted, "the retry sees the rival's mark")

	state, err := svc.State(ctx)
	require.NoError(t, err)
	assert.True(t, state.IsSubmitted(1, cardID))
}

func TestPuttingService_ConcurrentSubmitOneWins(t *testing.T) {
	ctx := context.Background()
	store := NewFakeStore()
	svc, cardID := scoredCard(t, store)

	const scorekeepers = 4
	errs := make([]error, scorekeepers)
	var wg sync.WaitGroup
	for i := 0; i < scorekeepers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = svc.SubmitCard(ctx, 1, cardID)
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, puttingdomain.ErrCardAlreadySubmitted)
	}
	assert.Equal(t, 1, succeeded)
}
