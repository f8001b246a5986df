package puttingservice

import (
	"context"
	"strings"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	puttingdomain "github.com/Black-And-White-Club/frolf-club/app/modules/putting/domain"
)

// AddPlayer registers a putting player while the league is in setup.
func (s *PuttingService) AddPlayer(ctx context.Context, name string, pool leaguedomain.Pool) (leaguedomain.PuttingPlayer, error) {
	id := s.newID()
	name = strings.TrimSpace(name)
	return run(s, ctx, "AddPlayer", name, func(ctx context.Context) (leaguedomain.PuttingPlayer, error) {
		saved, err := s.commit(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			return puttingdomain.AddPlayer(p, id, name, pool)
		})
		if err != nil {
			return leaguedomain.PuttingPlayer{}, err
		}
		pl, _ := saved.Player(id)
		return pl, nil
	})
}

func (s *PuttingService) RemovePlayer(ctx context.Context, playerID string) error {
	_, err := run(s, ctx, "RemovePlayer", playerID, func(ctx context.Context) (struct{}, error) {
		_, err := s.commit(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			return puttingdomain.RemovePlayer(p, playerID)
		})
		return struct{}{}, err
	})
	return err
}

// SetPool reassigns a player's pool. Pools are admin-assigned and may change during
// a live round, so it goes through a transaction.
func (s *PuttingService) SetPool(ctx context.Context, playerID string, pool leaguedomain.Pool, admin bool) error {
	_, err := run(s, ctx, "SetPool", playerID, func(ctx context.Context) (struct{}, error) {
		if err := requireAdmin(admin); err != nil {
			return struct{}{}, err
		}
		_, err := s.transact(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			return puttingdomain.SetPool(p, playerID, pool)
		})
		return struct{}{}, err
	})
	return err
}

func (s *PuttingService) SetCheckedIn(ctx context.Context, playerID string, checkedIn bool) error {
	_, err := run(s, ctx, "SetCheckedIn", playerID, func(ctx context.Context) (struct{}, error) {
		_, err := s.commit(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			return puttingdomain.SetCheckedIn(p, playerID, checkedIn)
		})
		return struct{}{}, err
	})
	return err
}

func (s *PuttingService) UpdateSettings(ctx context.Context, stations, rounds int) (leaguedomain.PuttingSettings, error) {
	return run(s, ctx, "UpdateSettings", "", func(ctx context.Context) (leaguedomain.PuttingSettings, error) {
		saved, err := s.commit(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			return puttingdomain.UpdateSettings(p, stations, rounds)
		})
		return saved.Settings, err
	})
}
