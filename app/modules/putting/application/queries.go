package puttingservice

import (
	"context"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	puttingdomain "github.com/Black-And-White-Club/frolf-club/app/modules/putting/domain"
)

func (s *PuttingService) State(ctx context.Context) (leaguedomain.PuttingLeague, error) {
	return run(s, ctx, "State", "", func(ctx context.Context) (leaguedomain.PuttingLeague, error) {
		l, err := s.store.Read(ctx)
		if err != nil {
			return leaguedomain.PuttingLeague{}, err
		}
		return l.Putting, nil
	})
}

// Leaderboard ranks players by cumulative total. An empty pool includes everyone.
func (s *PuttingService) Leaderboard(ctx context.Context, pool leaguedomain.Pool) ([]puttingdomain.Standing, error) {
	return run(s, ctx, "Leaderboard", string(pool), func(ctx context.Context) ([]puttingdomain.Standing, error) {
		if pool != "" && !pool.Valid() {
			return nil, leaguedomain.Invalid("unknown pool %q", pool)
		}
		l, err := s.store.Read(ctx)
		if err != nil {
			return nil, err
		}
		return puttingdomain.Leaderboard(l.Putting, pool), nil
	})
}

// CardStatus reports completeness of every card in round. Round 0 means the
// current round, or the round-1 draft during setup.
func (s *PuttingService) CardStatus(ctx context.Context, round int) ([]puttingdomain.CardStatus, error) {
	return run(s, ctx, "CardStatus", "", func(ctx context.Context) ([]puttingdomain.CardStatus, error) {
		l, err := s.store.Read(ctx)
		if err != nil {
			return nil, err
		}
		p := l.Putting
		if round == 0 {
			round = max(p.Settings.CurrentRound, 1)
		}
		if round < 1 || round > p.Settings.TotalRounds {
			return nil, leaguedomain.Invalid("round %d is out of range", round)
		}
		return puttingdomain.CardStatuses(p, round), nil
	})
}
