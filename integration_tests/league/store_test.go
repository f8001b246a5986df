//go:build integration

package league_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	leaguedb "github.com/Black-And-White-Club/frolf-club/app/modules/league/infrastructure/repositories"
	"github.com/Black-And-White-Club/frolf-club/integration_tests/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newStore(t *testing.T, maxAttempts int) *leaguedb.BunStore {
	t.Helper()
	require.NoError(t, env.Reset(context.Background()))
	return leaguedb.NewBunStore(leaguedb.NewRepository(env.DB), "it-league", maxAttempts, testutils.Logger())
}

func TestBunStore_EnsureAndCommit(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 0)

	l, err := store.Ensure(ctx)
	require.NoError(t, err)
	assert.Equal(t, "it-league", l.ID)
	assert.Empty(t, l.Players)
	assert.Equal(t, 9, l.Putting.Settings.StationCount)

	again, err := store.Ensure(ctx)
	require.NoError(t, err)
	assert.Equal(t, l.ID, again.ID, "Ensure is idempotent")

	players := []leaguedomain.Player{{ID: "p1", Name: "Ann", StartingPosition: 1}}
	_, err = store.Commit(ctx, leaguedomain.Patch{Players: &players})
	require.NoError(t, err)

	// A later commit of another section leaves players alone.
	defend := leaguedomain.DefendState{Enabled: true, Scope: leaguedomain.ScopeAll}
	_, err = store.Commit(ctx, leaguedomain.Patch{DefendMode: &defend})
	require.NoError(t, err)

	got, err := store.Read(ctx)
	require.NoError(t, err)
	require.Len(t, got.Players, 1)
	assert.Equal(t, "Ann", got.Players[0].Name)
	assert.True(t, got.DefendMode.Enabled)
}

func TestBunStore_ConcurrentTransactions(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 50)
	_, err := store.Ensure(ctx)
	require.NoError(t, err)

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := store.Transact(ctx, func(l leaguedomain.League) (leaguedomain.Patch, error) {
				players := append(l.Players, leaguedomain.Player{ID: fmt.Sprintf("p%d", i), Name: fmt.Sprintf("Player %d", i)})
				return leaguedomain.Patch{Players: &players}, nil
			})
			errs <- err
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	l, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, l.Players, writers, "no lost updates")
}

func TestBunStore_ConflictExhaustsRetries(t *testing.T) {
	ctx := context.Background()
	store := newStore(t, 2)
	_, err := store.Ensure(ctx)
	require.NoError(t, err)

	_, err = store.Transact(ctx, func(l leaguedomain.League) (leaguedomain.Patch, error) {
		// A blind write lands between every read and the conditional write.
		players := []leaguedomain.Player{{ID: "intruder", Name: "Intruder"}}
		if _, err := store.Commit(ctx, leaguedomain.Patch{Players: &players}); err != nil {
			return leaguedomain.Patch{}, err
		}
		log := append(l.RankingLog, leaguedomain.MatchResult{ID: "m1"})
		return leaguedomain.Patch{RankingLog: &log}, nil
	})
	assert.ErrorIs(t, err, leaguedb.ErrConflict)
}
