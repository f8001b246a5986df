package tagservice

import (
	"context"
	"slices"
	"strconv"
	"time"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	tagdomain "github.com/Black-And-White-Club/frolf-club/app/modules/tags/domain"
)

// LeaderboardRow is one tag holder with their defend status.
type LeaderboardRow struct {
	Position       int        `json:"position"`
	PlayerID       string     `json:"playerId"`
	Name           string     `json:"name"`
	DefendDeadline *time.Time `json:"defendDeadline,omitempty"`
	Countdown      string     `json:"countdown,omitempty"`
	Expired        bool       `json:"expired,omitempty"`
}

// Leaderboard is the ladder as shown to players.
type Leaderboard struct {
	Rows        []LeaderboardRow         `json:"rows"`
	Defend      leaguedomain.DefendState `json:"defendMode"`
	RoundsTotal int                      `json:"roundsTotal"`
	GeneratedAt time.Time                `json:"generatedAt"`
}

// ExpiredHolder is a player whose in-scope position passed its deadline.
type ExpiredHolder struct {
	Position int       `json:"position"`
	PlayerID string    `json:"playerId"`
	Name     string    `json:"name"`
	Deadline time.Time `json:"deadline"`
}

// Leaderboard returns standings in position order with countdowns for in-scope positions.
func (s *TagService) Leaderboard(ctx context.Context) (Leaderboard, error) {
	return run(s, ctx, "Leaderboard", "", func(ctx context.Context) (Leaderboard, error) {
		l, err := s.store.Read(ctx)
		if err != nil {
			return Leaderboard{}, err
		}
		return buildLeaderboard(l, s.clock.Now()), nil
	})
}

func buildLeaderboard(l leaguedomain.League, now time.Time) Leaderboard {
	ranking := tagdomain.ComputeRanking(l.Players, l.RankingLog)
	standings := tagdomain.Standings(l.Players, ranking)

	inScope := map[int]bool{}
	if l.DefendMode.Enabled {
		for _, pos := range tagdomain.ScopePositions(l.DefendMode.Scope, ranking) {
			inScope[pos] = true
		}
	}

	rows := make([]LeaderboardRow, 0, len(standings))
	for _, st := range standings {
		row := LeaderboardRow{Position: st.Position, PlayerID: st.PlayerID, Name: st.Name}
		if deadline, ok := l.DefendMode.Expirations[st.Position]; ok && inScope[st.Position] && !deadline.IsZero() {
			d := deadline
			row.DefendDeadline = &d
			row.Countdown = tagdomain.Countdown(deadline, now)
			row.Expired = !now.Before(deadline)
		}
		rows = append(rows, row)
	}

	return Leaderboard{
		Rows:        rows,
		Defend:      l.DefendMode,
		RoundsTotal: len(l.RankingLog),
		GeneratedAt: now,
	}
}

// History returns user-recorded rounds newest first. limit <= 0 returns all.
func (s *TagService) History(ctx context.Context, limit int) ([]leaguedomain.RoundHistoryItem, error) {
	return run(s, ctx, "History", strconv.Itoa(limit), func(ctx context.Context) ([]leaguedomain.RoundHistoryItem, error) {
		l, err := s.store.Read(ctx)
		if err != nil {
			return nil, err
		}
		items := slices.Clone(l.RoundHistory)
		slices.Reverse(items)
		if limit > 0 && len(items) > limit {
			items = items[:limit]
		}
		return items, nil
	})
}

// ExpiredHolders lists holders of in-scope positions whose deadline has passed.
// It never writes.
func (s *TagService) ExpiredHolders(ctx context.Context) ([]ExpiredHolder, error) {
	return run(s, ctx, "ExpiredHolders", "", func(ctx context.Context) ([]ExpiredHolder, error) {
		l, err := s.store.Read(ctx)
		if err != nil {
			return nil, err
		}
		ranking := tagdomain.ComputeRanking(l.Players, l.RankingLog)
		out := []ExpiredHolder{}
		for _, pos := range tagdomain.ExpiredPositions(l.DefendMode, ranking, s.clock.Now()) {
			id, ok := tagdomain.HolderOf(ranking, pos)
			if !ok {
				continue
			}
			out = append(out, ExpiredHolder{
				Position: pos,
				PlayerID: id,
				Name:     l.PlayerName(id),
				Deadline: l.DefendMode.Expirations[pos],
			})
		}
		return out, nil
	})
}

// PositionChart renders a PNG of the player's position over time.
func (s *TagService) PositionChart(ctx context.Context, playerID string) ([]byte, error) {
	return run(s, ctx, "PositionChart", playerID, func(ctx context.Context) ([]byte, error) {
		l, err := s.store.Read(ctx)
		if err != nil {
			return nil, err
		}
		points, err := tagdomain.PositionHistory(l.Players, l.RankingLog, playerID)
		if err != nil {
			return nil, err
		}
		return GeneratePositionChart(l.PlayerName(playerID), points, DefaultPalette)
	})
}
