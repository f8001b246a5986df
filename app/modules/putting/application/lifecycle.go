package puttingservice

import (
	"context"
	"fmt"
	"log/slog"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	puttingdomain "github.com/Black-And-White-Club/frolf-club/app/modules/putting/domain"
)

// BeginRound locks the roster and starts round 1.
func (s *PuttingService) BeginRound(ctx context.Context, admin bool) (leaguedomain.PuttingSettings, error) {
	return run(s, ctx, "BeginRound", "", func(ctx context.Context) (leaguedomain.PuttingSettings, error) {
		saved, err := s.transact(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			return puttingdomain.BeginRound(p, admin)
		})
		return saved.Settings, err
	})
}

// AdvanceRound re-cards the field by standings and returns the new round's cards.
func (s *PuttingService) AdvanceRound(ctx context.Context, admin bool) ([]leaguedomain.Card, error) {
	return run(s, ctx, "AdvanceRound", "", func(ctx context.Context) ([]leaguedomain.Card, error) {
		saved, err := s.transact(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			return puttingdomain.AdvanceRound(p, admin)
		})
		if err != nil {
			return nil, err
		}
		return saved.CardsByRound[saved.Settings.CurrentRound], nil
	})
}

// Finalize freezes the league and archives the final standings when an archive is configured.
func (s *PuttingService) Finalize(ctx context.Context, admin bool) ([]puttingdomain.Standing, error) {
	return run(s, ctx, "Finalize", "", func(ctx context.Context) ([]puttingdomain.Standing, error) {
		saved, err := s.transact(ctx, func(p leaguedomain.PuttingLeague) (leaguedomain.PuttingLeague, error) {
			return puttingdomain.Finalize(p, admin, s.opts.FinalizeRequiresAdmin)
		})
		if err != nil {
			return nil, err
		}
		s.archiveStandings(ctx, saved)
		return puttingdomain.Leaderboard(saved, ""), nil
	})
}

func (s *PuttingService) archiveStandings(ctx context.Context, p leaguedomain.PuttingLeague) {
	if s.archive == nil {
		return
	}
	body, err := BuildStandingsWorkbook(p)
	if err != nil {
		s.logger.ErrorContext(ctx, "Failed to build standings archive", slog.Any("error", err))
		return
	}
	key := fmt.Sprintf("%s/%s/%s.xlsx", s.opts.ArchivePrefix, s.opts.LeagueID, s.clock.Now().Format("20060102T150405Z"))
	if err := s.archive.Put(ctx, key, body, XLSXContentType); err != nil {
		s.logger.ErrorContext(ctx, "Failed to archive final standings",
			slog.String("key", key),
			slog.Any("error", err),
		)
		return
	}
	s.logger.InfoContext(ctx, "Archived final standings", slog.String("key", key))
}

// Reset discards the putting league. The tag ladder is untouched.
func (s *PuttingService) Reset(ctx context.Context, admin bool) error {
	_, err := run(s, ctx, "Reset", "", func(ctx context.Context) (struct{}, error) {
		fresh, err := puttingdomain.Reset(admin)
		if err != nil {
			return struct{}{}, err
		}
		_, err = s.store.Commit(ctx, leaguedomain.PuttingPatch(fresh))
		return struct{}{}, err
	})
	return err
}
