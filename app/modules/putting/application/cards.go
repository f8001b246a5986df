package puttingservice

import (
	"context"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	puttingdomain "github.com/Black-And-White-Club/frolf-club/app/modules/putting/domain"
)

// CreateCard drafts a round-1 card from the given members.
func (s *PuttingService) CreateCard(ctx context.Context, memberIDs []string) (leaguedomain.Card, error) {
	id := s.newID()
	return run(s, ctx, "CreateCard", id, func(ctx context.Context) (leaguedomain.Card, error) {
		saved, err := s.commit(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			return puttingdomain.CreateCard(p, id, memberIDs)
		})
		if err != nil {
			return leaguedomain.Card{}, err
		}
		c, _ := saved.Card(1, id)
		return c, nil
	})
}

func (s *PuttingService) DeleteCard(ctx context.Context, cardID string) error {
	_, err := run(s, ctx, "DeleteCard", cardID, func(ctx context.Context) (struct{}, error) {
		_, err := s.commit(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			return puttingdomain.DeleteCard(p, cardID)
		})
		return struct{}{}, err
	})
	return err
}

// RandomizeCards replaces the round-1 draft with a random allocation of checked-in players.
func (s *PuttingService) RandomizeCards(ctx context.Context) ([]leaguedomain.Card, error) {
	return run(s, ctx, "RandomizeCards", "", func(ctx context.Context) ([]leaguedomain.Card, error) {
		saved, err := s.commit(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			s.rngMu.Lock()
			defer s.rngMu.Unlock()
			return puttingdomain.RandomizeCards(p, s.rng)
		})
		if err != nil {
			return nil, err
		}
		return saved.CardsByRound[1], nil
	})
}
