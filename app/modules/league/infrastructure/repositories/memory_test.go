package leaguedb

import (
	"context"
	"errors"
	"testing"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addPlayerPatch(l leaguedomain.League, id string) leaguedomain.Patch {
	players := append(l.Players, leaguedomain.Player{ID: id, Name: id, StartingPosition: len(l.Players) + 1})
	return leaguedomain.Patch{Players: &players}
}

func TestMemoryStore_EnsureIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("club", 3)

	_, err := s.Read(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	l, err := s.Ensure(ctx)
	require.NoError(t, err)
	assert.Equal(t, "club", l.ID)
	assert.NotNil(t, l.Players)

	_, err = s.Commit(ctx, addPlayerPatch(l, "a"))
	require.NoError(t, err)

	again, err := s.Ensure(ctx)
	require.NoError(t, err)
	assert.Len(t, again.Players, 1, "ensure must not overwrite an existing document")
}

func TestMemoryStore_CommitWritesOnlyPatchedSections(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("club", 3)
	base, err := s.Ensure(ctx)
	require.NoError(t, err)

	// Two writers start from the same snapshot and touch different sections.
	_, err = s.Commit(ctx, addPlayerPatch(base, "a"))
	require.NoError(t, err)

	putting := base.Putting
	putting.Settings.StationCount = 4
	l, err := s.Commit(ctx, leaguedomain.PuttingPatch(putting))
	require.NoError(t, err)

	assert.Len(t, l.Players, 1)
	assert.Equal(t, 4, l.Putting.Settings.StationCount)
}

func TestMemoryStore_TransactRetriesOnConflict(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("club", 3)
	_, err := s.Ensure(ctx)
	require.NoError(t, err)

	interfered := false
	s.beforeWrite = func() {
		if interfered {
			return
		}
		interfered = true
		s.beforeWrite = nil
		l, _ := s.Read(ctx)
		_, _ = s.Commit(ctx, addPlayerPatch(l, "concurrent"))
	}

	calls := 0
	l, err := s.Transact(ctx, func(snapshot leaguedomain.League) (leaguedomain.Patch, error) {
		calls++
		return addPlayerPatch(snapshot, "mine"), nil
	})
	require.NoError(t, err)

	assert.Equal(t, 2, calls, "body re-runs against the fresh snapshot")
	require.Len(t, l.Players, 2)
	assert.Equal(t, "concurrent", l.Players[0].ID)
	assert.Equal(t, "mine", l.Players[1].ID)
	assert.Equal(t, 2, l.Players[1].StartingPosition)
}

func TestMemoryStore_TransactGivesUp(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("club", 2)
	_, err := s.Ensure(ctx)
	require.NoError(t, err)

	s.beforeWrite = func() {
		s.mu.Lock()
		s.version++
		s.mu.Unlock()
	}

	_, err = s.Transact(ctx, func(snapshot leaguedomain.League) (leaguedomain.Patch, error) {
		return addPlayerPatch(snapshot, "x"), nil
	})
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryStore_TransactBodyErrorWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("club", 3)
	_, err := s.Ensure(ctx)
	require.NoError(t, err)
	before := s.Version()

	boom := errors.New("boom")
	_, err = s.Transact(ctx, func(leaguedomain.League) (leaguedomain.Patch, error) {
		return leaguedomain.Patch{}, boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = s.Transact(ctx, func(leaguedomain.League) (leaguedomain.Patch, error) {
		return leaguedomain.Patch{}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, before, s.Version())
}

func TestMemoryStore_SnapshotsAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("club", 3)
	l, err := s.Ensure(ctx)
	require.NoError(t, err)

	l.DefendMode.Expirations[1] = l.DefendMode.Expirations[1].AddDate(1, 0, 0)
	l.Putting.Adjustments["x"] = 3

	fresh, err := s.Read(ctx)
	require.NoError(t, err)
	assert.Empty(t, fresh.DefendMode.Expirations)
	assert.Empty(t, fresh.Putting.Adjustments)
}
