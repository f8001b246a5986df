package puttingservice

import (
	"context"
	"fmt"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	puttingdomain "github.com/Black-And-White-Club/frolf-club/app/modules/putting/domain"
)

// Score entry runs concurrently across cards, so every write here is transactional.

func (s *PuttingService) SetMade(ctx context.Context, round, station int, playerID string, made int) error {
	id := fmt.Sprintf("r%d/s%d/%s", round, station, playerID)
	_, err := run(s, ctx, "SetMade", id, func(ctx context.Context) (struct{}, error) {
		_, err := s.transact(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			return puttingdomain.SetMade(p, round, station, playerID, made)
		})
		return struct{}{}, err
	})
	return err
}

func (s *PuttingService) ClearMade(ctx context.Context, round, station int, playerID string) error {
	id := fmt.Sprintf("r%d/s%d/%s", round, station, playerID)
	_, err := run(s, ctx, "ClearMade", id, func(ctx context.Context) (struct{}, error) {
		_, err := s.transact(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			return puttingdomain.ClearMade(p, round, station, playerID)
		})
		return struct{}{}, err
	})
	return err
}

func (s *PuttingService) SubmitCard(ctx context.Context, round int, cardID string) error {
	_, err := run(s, ctx, "SubmitCard", cardID, func(ctx context.Context) (struct{}, error) {
		_, err := s.transact(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			return puttingdomain.SubmitCard(p, round, cardID)
		})
		return struct{}{}, err
	})
	return err
}

// SetFinalTotal stores the offset that makes the player's cumulative total equal total.
func (s *PuttingService) SetFinalTotal(ctx context.Context, playerID string, total int, admin bool) error {
	_, err := run(s, ctx, "SetFinalTotal", playerID, func(ctx context.Context) (struct{}, error) {
		if err := requireAdmin(admin); err != nil {
			return struct{}{}, err
		}
		_, err := s.transact(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			return puttingdomain.SetFinalTotal(p, playerID, total)
		})
		return struct{}{}, err
	})
	return err
}

func (s *PuttingService) ClearAdjustment(ctx context.Context, playerID string, admin bool) error {
	_, err := run(s, ctx, "ClearAdjustment", playerID, func(ctx context.Context) (struct{}, error) {
		if err := requireAdmin(admin); err != nil {
			return struct{}{}, err
		}
		_, err := s.transact(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			return puttingdomain.ClearAdjustment(p, playerID)
		})
		return struct{}{}, err
	})
	return err
}
