package tagdomain

import (
	"slices"
	"sort"
	"time"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
)

// DropToLastReason is stored on synthetic rounds created by the admin drop action.
const DropToLastReason = "Admin drop-to-last"

// Finish is a participant's result in one round, in finish order.
type Finish struct {
	PlayerID    string `json:"playerId"`
	Score       int    `json:"score"`
	OldPosition int    `json:"oldPosition"`
	NewPosition int    `json:"newPosition"`
}

// RoundSwaps is the outcome of applying one round to a ranking.
type RoundSwaps struct {
	FinishOrder  []Finish             `json:"finishOrder"`
	NewPositions leaguedomain.Ranking `json:"newPositions"`
}

// PreRoundPositions returns the positions held by participants before the round, ascending.
// These are the positions that changed hands.
func (r RoundSwaps) PreRoundPositions() []int {
	out := make([]int, 0, len(r.FinishOrder))
	for _, f := range r.FinishOrder {
		out = append(out, f.OldPosition)
	}
	sort.Ints(out)
	return out
}

// Apply returns a copy of ranking with the round's new positions.
func (r RoundSwaps) Apply(ranking leaguedomain.Ranking) leaguedomain.Ranking {
	out := make(leaguedomain.Ranking, len(ranking))
	for id, pos := range ranking {
		out[id] = pos
	}
	for id, pos := range r.NewPositions {
		out[id] = pos
	}
	return out
}

// ComputeRanking replays the match log over the players' starting positions.
func ComputeRanking(players []leaguedomain.Player, log []leaguedomain.MatchResult) leaguedomain.Ranking {
	ranking := make(leaguedomain.Ranking, len(players))
	for _, p := range players {
		ranking[p.ID] = p.StartingPosition
	}
	for _, match := range log {
		swaps := ComputeRoundSwaps(ranking, match.Entries)
		for id, pos := range swaps.NewPositions {
			ranking[id] = pos
		}
	}
	return ranking
}

// ComputeRoundSwaps applies a single round to ranking without modifying it.
// Entries whose player has no position, and repeats of a player, are ignored.
// Fewer than two usable entries produce an empty result.
func ComputeRoundSwaps(ranking leaguedomain.Ranking, scores []leaguedomain.MatchEntry) RoundSwaps {
	seen := make(map[string]bool, len(scores))
	participants := make([]Finish, 0, len(scores))
	for _, e := range scores {
		pos, ok := ranking[e.PlayerID]
		if !ok || seen[e.PlayerID] {
			continue
		}
		seen[e.PlayerID] = true
		participants = append(participants, Finish{PlayerID: e.PlayerID, Score: e.Score, OldPosition: pos})
	}
	if len(participants) < 2 {
		return RoundSwaps{NewPositions: leaguedomain.Ranking{}}
	}

	positions := make([]int, len(participants))
	for i, p := range participants {
		positions[i] = p.OldPosition
	}
	sort.Ints(positions)

	// Ties keep entry order.
	sort.SliceStable(participants, func(i, j int) bool {
		return participants[i].Score < participants[j].Score
	})

	newPositions := make(leaguedomain.Ranking, len(participants))
	for i := range participants {
		participants[i].NewPosition = positions[i]
		newPositions[participants[i].PlayerID] = positions[i]
	}
	return RoundSwaps{FinishOrder: participants, NewPositions: newPositions}
}

// ValidateRound checks a round before it is recorded.
func ValidateRound(ranking leaguedomain.Ranking, scores []leaguedomain.MatchEntry) error {
	if len(scores) < 2 {
		return leaguedomain.Invalid("select at least 2 players")
	}
	seen := make(map[string]bool, len(scores))
	for _, e := range scores {
		if _, ok := ranking[e.PlayerID]; !ok {
			return leaguedomain.Invalid("unknown player %q", e.PlayerID)
		}
		if seen[e.PlayerID] {
			return leaguedomain.Invalid("player %q is entered more than once", e.PlayerID)
		}
		seen[e.PlayerID] = true
	}
	return nil
}

// Standing is one row of the ordered leaderboard.
type Standing struct {
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// Standings orders players by current position.
func Standings(players []leaguedomain.Player, ranking leaguedomain.Ranking) []Standing {
	out := make([]Standing, 0, len(players))
	for _, p := range players {
		pos, ok := ranking[p.ID]
		if !ok {
			continue
		}
		out = append(out, Standing{PlayerID: p.ID, Name: p.Name, Position: pos})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

// MaxPosition returns the highest position number held, or 0 for an empty ranking.
func MaxPosition(ranking leaguedomain.Ranking) int {
	highest := 0
	for _, pos := range ranking {
		highest = max(highest, pos)
	}
	return highest
}

// HolderOf returns the player holding pos.
func HolderOf(ranking leaguedomain.Ranking, pos int) (string, bool) {
	for id, p := range ranking {
		if p == pos {
			return id, true
		}
	}
	return "", false
}

// ValidateNewPlayer checks a player about to join the ladder.
func ValidateNewPlayer(ranking leaguedomain.Ranking, name string, startingPosition int) error {
	if name == "" {
		return leaguedomain.Invalid("name is required")
	}
	if startingPosition < 1 {
		return leaguedomain.Invalid("tag must be a positive number")
	}
	if _, taken := HolderOf(ranking, startingPosition); taken {
		return leaguedomain.Invalid("tag #%d is already taken", startingPosition)
	}
	return nil
}

// DropToLastRound builds the synthetic round that moves targetID below everyone
// ranked under them. Players between shift up one position.
func DropToLastRound(ranking leaguedomain.Ranking, targetID, id string, now time.Time) (leaguedomain.MatchResult, error) {
	targetPos, ok := ranking[targetID]
	if !ok {
		return leaguedomain.MatchResult{}, leaguedomain.Invalid("unknown player %q", targetID)
	}

	type holder struct {
		id  string
		pos int
	}
	var affected []holder
	for pid, pos := range ranking {
		if pos > targetPos {
			affected = append(affected, holder{pid, pos})
		}
	}
	if len(affected) == 0 {
		return leaguedomain.MatchResult{}, leaguedomain.Rejected("player already holds the last tag (#%d)", targetPos)
	}
	slices.SortFunc(affected, func(a, b holder) int { return a.pos - b.pos })

	entries := make([]leaguedomain.MatchEntry, 0, len(affected)+1)
	for i, h := range affected {
		entries = append(entries, leaguedomain.MatchEntry{PlayerID: h.id, Score: i + 1})
	}
	entries = append(entries, leaguedomain.MatchEntry{PlayerID: targetID, Score: len(affected) + 1})

	return leaguedomain.MatchResult{
		ID:        id,
		Timestamp: now,
		Entries:   entries,
		System:    true,
		Reason:    DropToLastReason,
	}, nil
}

// HistoryItem builds the display record for a user-recorded round.
func HistoryItem(players []leaguedomain.Player, swaps RoundSwaps, id string, now time.Time, comment string) leaguedomain.RoundHistoryItem {
	names := make(map[string]string, len(players))
	for _, p := range players {
		names[p.ID] = p.Name
	}
	entries := make([]leaguedomain.HistoryEntry, 0, len(swaps.FinishOrder))
	for _, f := range swaps.FinishOrder {
		name, ok := names[f.PlayerID]
		if !ok {
			name = "Unknown"
		}
		entries = append(entries, leaguedomain.HistoryEntry{
			PlayerID:    f.PlayerID,
			Name:        name,
			Score:       f.Score,
			OldPosition: f.OldPosition,
			NewPosition: f.NewPosition,
		})
	}
	return leaguedomain.RoundHistoryItem{
		ID:        id,
		Timestamp: now,
		Entries:   entries,
		Comment:   comment,
	}
}

// DeleteLast removes the newest match result and, when it was user-recorded,
// its history item. Defend deadlines are not touched.
func DeleteLast(log []leaguedomain.MatchResult, history []leaguedomain.RoundHistoryItem) ([]leaguedomain.MatchResult, []leaguedomain.RoundHistoryItem, error) {
	if len(log) == 0 {
		return nil, nil, leaguedomain.Rejected("no rounds to delete")
	}
	last := log[len(log)-1]
	newLog := slices.Clone(log[:len(log)-1])

	newHistory := make([]leaguedomain.RoundHistoryItem, 0, len(history))
	for _, h := range history {
		if h.ID == last.ID {
			continue
		}
		newHistory = append(newHistory, h)
	}
	return newLog, newHistory, nil
}

// PositionPoint is a player's position after a match.
type PositionPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Position  int       `json:"position"`
}

// PositionHistory replays the log and records playerID's position after every
// match it took part in. The first point is the starting position, stamped with
// the first match's time.
func PositionHistory(players []leaguedomain.Player, log []leaguedomain.MatchResult, playerID string) ([]PositionPoint, error) {
	ranking := make(leaguedomain.Ranking, len(players))
	for _, p := range players {
		ranking[p.ID] = p.StartingPosition
	}
	start, ok := ranking[playerID]
	if !ok {
		return nil, leaguedomain.Invalid("unknown player %q", playerID)
	}

	var points []PositionPoint
	for _, match := range log {
		swaps := ComputeRoundSwaps(ranking, match.Entries)
		if len(points) == 0 {
			points = append(points, PositionPoint{Timestamp: match.Timestamp, Position: start})
		}
		if pos, played := swaps.NewPositions[playerID]; played {
			points = append(points, PositionPoint{Timestamp: match.Timestamp, Position: pos})
		}
		for id, pos := range swaps.NewPositions {
			ranking[id] = pos
		}
	}
	return points, nil
}
