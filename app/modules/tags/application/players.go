package tagservice

import (
	"context"
	"strings"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	tagdomain "github.com/Black-And-White-Club/frolf-club/app/modules/tags/domain"
)

// AddPlayerRequest adds a player holding an unclaimed tag.
type AddPlayerRequest struct {
	Name             string `json:"name"`
	StartingPosition int    `json:"startingPosition"`
}

// AddPlayer adds a ladder player. The write is a blind commit of the players section.
func (s *TagService) AddPlayer(ctx context.Context, req AddPlayerRequest) (leaguedomain.Player, error) {
	name := strings.TrimSpace(req.Name)
	return run(s, ctx, "AddPlayer", name, func(ctx context.Context) (leaguedomain.Player, error) {
		l, err := s.store.Read(ctx)
		if err != nil {
			return leaguedomain.Player{}, err
		}
		ranking := tagdomain.ComputeRanking(l.Players, l.RankingLog)
		if err := tagdomain.ValidateNewPlayer(ranking, name, req.StartingPosition); err != nil {
			return leaguedomain.Player{}, err
		}

		player := leaguedomain.Player{ID: s.newID(), Name: name, StartingPosition: req.StartingPosition}
		players := append(l.Players, player)
		if _, err := s.store.Commit(ctx, leaguedomain.Patch{Players: &players}); err != nil {
			return leaguedomain.Player{}, err
		}
		return player, nil
	})
}

// Reset clears players, the ranking log and history, and returns defend mode to defaults.
func (s *TagService) Reset(ctx context.Context, admin bool) error {
	_, err := run(s, ctx, "ResetTags", "", func(ctx context.Context) (struct{}, error) {
		if err := requireAdmin(admin); err != nil {
			return struct{}{}, err
		}
		fresh := leaguedomain.NewLeague("")
		_, err := s.store.Commit(ctx, leaguedomain.TagsPatch(fresh))
		return struct{}{}, err
	})
	return err
}
