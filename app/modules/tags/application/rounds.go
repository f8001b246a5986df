package tagservice

import (
	"context"
	"strings"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	tagdomain "github.com/Black-And-White-Club/frolf-club/app/modules/tags/domain"
)

// RecordRoundRequest is a played round submitted by a player.
type RecordRoundRequest struct {
	Entries []leaguedomain.MatchEntry `json:"entries"`
	Comment string                    `json:"comment"`
	// PlayedAt is free text such as "yesterday 6pm" or an RFC 3339 timestamp.
	// Empty means now.
	PlayedAt string `json:"playedAt"`
}

// RecordedRound is the result of recording a round.
type RecordedRound struct {
	Match   leaguedomain.MatchResult      `json:"match"`
	Swaps   tagdomain.RoundSwaps          `json:"swaps"`
	History leaguedomain.RoundHistoryItem `json:"history"`
}

// PreviewRound shows what recording entries would do, without writing.
func (s *TagService) PreviewRound(ctx context.Context, entries []leaguedomain.MatchEntry) (tagdomain.RoundSwaps, error) {
	return run(s, ctx, "PreviewRound", "", func(ctx context.Context) (tagdomain.RoundSwaps, error) {
		l, err := s.store.Read(ctx)
		if err != nil {
			return tagdomain.RoundSwaps{}, err
		}
		ranking := tagdomain.ComputeRanking(l.Players, l.RankingLog)
		if err := tagdomain.ValidateRound(ranking, entries); err != nil {
			return tagdomain.RoundSwaps{}, err
		}
		return tagdomain.ComputeRoundSwaps(ranking, entries), nil
	})
}

// RecordRound appends a match to the ranking log, adds its history item and restarts
// defend deadlines of the positions that played.
func (s *TagService) RecordRound(ctx context.Context, req RecordRoundRequest) (RecordedRound, error) {
	id := s.newID()
	return run(s, ctx, "RecordRound", id, func(ctx context.Context) (RecordedRound, error) {
		now := s.clock.Now()
		playedAt, err := ParsePlayedAt(req.PlayedAt, now)
		if err != nil {
			return RecordedRound{}, err
		}
		comment := strings.TrimSpace(req.Comment)

		var out RecordedRound
		_, err = s.store.Transact(ctx, func(l leaguedomain.League) (leaguedomain.Patch, error) {
			ranking := tagdomain.ComputeRanking(l.Players, l.RankingLog)
			if err := tagdomain.ValidateRound(ranking, req.Entries); err != nil {
				return leaguedomain.Patch{}, err
			}
			swaps := tagdomain.ComputeRoundSwaps(ranking, req.Entries)
			match := leaguedomain.MatchResult{
				ID:        id,
				Timestamp: playedAt,
				Entries:   req.Entries,
			}
			history := tagdomain.HistoryItem(l.Players, swaps, id, playedAt, comment)

			log := append(l.RankingLog, match)
			items := append(l.RoundHistory, history)
			defend := tagdomain.OnMatchRecorded(l.DefendMode, ranking, swaps.PreRoundPositions(), now)

			out = RecordedRound{Match: match, Swaps: swaps, History: history}
			return leaguedomain.Patch{RankingLog: &log, RoundHistory: &items, DefendMode: &defend}, nil
		})
		if err != nil {
			return RecordedRound{}, err
		}
		return out, nil
	})
}

// DeleteLastRound removes the newest match result and its history item.
func (s *TagService) DeleteLastRound(ctx context.Context, admin bool) error {
	_, err := run(s, ctx, "DeleteLastRound", "", func(ctx context.Context) (struct{}, error) {
		if err := requireAdmin(admin); err != nil {
			return struct{}{}, err
		}
		l, err := s.store.Read(ctx)
		if err != nil {
			return struct{}{}, err
		}
		log, history, err := tagdomain.DeleteLast(l.RankingLog, l.RoundHistory)
		if err != nil {
			return struct{}{}, err
		}
		_, err = s.store.Commit(ctx, leaguedomain.Patch{RankingLog: &log, RoundHistory: &history})
		return struct{}{}, err
	})
	return err
}

// DropPlayerToLast records a system round that moves the player to the bottom of the ladder.
func (s *TagService) DropPlayerToLast(ctx context.Context, playerID string, admin bool) (leaguedomain.MatchResult, error) {
	id := s.newID()
	return run(s, ctx, "DropPlayerToLast", playerID, func(ctx context.Context) (leaguedomain.MatchResult, error) {
		if err := requireAdmin(admin); err != nil {
			return leaguedomain.MatchResult{}, err
		}
		now := s.clock.Now()

		var out leaguedomain.MatchResult
		_, err := s.store.Transact(ctx, func(l leaguedomain.League) (leaguedomain.Patch, error) {
			ranking := tagdomain.ComputeRanking(l.Players, l.RankingLog)
			match, err := tagdomain.DropToLastRound(ranking, playerID, id, now)
			if err != nil {
				return leaguedomain.Patch{}, err
			}
			swaps := tagdomain.ComputeRoundSwaps(ranking, match.Entries)
			log := append(l.RankingLog, match)
			defend := tagdomain.OnMatchRecorded(l.DefendMode, ranking, swaps.PreRoundPositions(), now)

			out = match
			return leaguedomain.Patch{RankingLog: &log, DefendMode: &defend}, nil
		})
		if err != nil {
			return leaguedomain.MatchResult{}, err
		}
		return out, nil
	})
}
