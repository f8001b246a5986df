package tagservice

import (
	"context"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	tagdomain "github.com/Black-And-White-Club/frolf-club/app/modules/tags/domain"
)

// ActivateDefend turns defend mode on with fresh deadlines on every in-scope position.
func (s *TagService) ActivateDefend(ctx context.Context, settings tagdomain.DefendSettings, admin bool) (leaguedomain.DefendState, error) {
	return run(s, ctx, "ActivateDefend", string(settings.Scope), func(ctx context.Context) (leaguedomain.DefendState, error) {
		if err := requireAdmin(admin); err != nil {
			return leaguedomain.DefendState{}, err
		}
		l, err := s.store.Read(ctx)
		if err != nil {
			return leaguedomain.DefendState{}, err
		}
		ranking := tagdomain.ComputeRanking(l.Players, l.RankingLog)
		state, err := tagdomain.Activate(settings, ranking, s.clock.Now())
		if err != nil {
			return leaguedomain.DefendState{}, err
		}
		return s.commitDefend(ctx, state)
	})
}

// ApplyDefendSettings changes scope or duration while defend mode is on.
func (s *TagService) ApplyDefendSettings(ctx context.Context, settings tagdomain.DefendSettings, admin bool) (leaguedomain.DefendState, error) {
	return run(s, ctx, "ApplyDefendSettings", string(settings.Scope), func(ctx context.Context) (leaguedomain.DefendState, error) {
		if err := requireAdmin(admin); err != nil {
			return leaguedomain.DefendState{}, err
		}
		l, err := s.store.Read(ctx)
		if err != nil {
			return leaguedomain.DefendState{}, err
		}
		if !l.DefendMode.Enabled {
			return leaguedomain.DefendState{}, leaguedomain.Rejected("defend mode is off")
		}
		ranking := tagdomain.ComputeRanking(l.Players, l.RankingLog)
		state, err := tagdomain.ApplySettings(l.DefendMode, settings, ranking, s.clock.Now())
		if err != nil {
			return leaguedomain.DefendState{}, err
		}
		return s.commitDefend(ctx, state)
	})
}

// DisableDefend turns defend mode off.
func (s *TagService) DisableDefend(ctx context.Context, admin bool) (leaguedomain.DefendState, error) {
	return run(s, ctx, "DisableDefend", "", func(ctx context.Context) (leaguedomain.DefendState, error) {
		if err := requireAdmin(admin); err != nil {
			return leaguedomain.DefendState{}, err
		}
		l, err := s.store.Read(ctx)
		if err != nil {
			return leaguedomain.DefendState{}, err
		}
		return s.commitDefend(ctx, tagdomain.Disable(l.DefendMode))
	})
}

// DropExpired records a system round moving every expired holder to the bottom
// and re-arms their positions.
func (s *TagService) DropExpired(ctx context.Context, admin bool) (tagdomain.DefendDrop, error) {
	id := s.newID()
	return run(s, ctx, "DropExpired", id, func(ctx context.Context) (tagdomain.DefendDrop, error) {
		if err := requireAdmin(admin); err != nil {
			return tagdomain.DefendDrop{}, err
		}
		now := s.clock.Now()

		var out tagdomain.DefendDrop
		_, err := s.store.Transact(ctx, func(l leaguedomain.League) (leaguedomain.Patch, error) {
			ranking := tagdomain.ComputeRanking(l.Players, l.RankingLog)
			drop, err := tagdomain.DropExpiredRound(l.DefendMode, ranking, id, now)
			if err != nil {
				return leaguedomain.Patch{}, err
			}
			log := append(l.RankingLog, drop.Round)
			out = drop
			return leaguedomain.Patch{RankingLog: &log, DefendMode: &drop.State}, nil
		})
		if err != nil {
			return tagdomain.DefendDrop{}, err
		}
		return out, nil
	})
}

func (s *TagService) commitDefend(ctx context.Context, state leaguedomain.DefendState) (leaguedomain.DefendState, error) {
	l, err := s.store.Commit(ctx, leaguedomain.Patch{DefendMode: &state})
	if err != nil {
		return leaguedomain.DefendState{}, err
	}
	return l.DefendMode, nil
}
