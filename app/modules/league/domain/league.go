package leaguedomain

import (
	"slices"
	"time"
)

// League is the single document holding every piece of persistent state for one league.
// Tag data (Players, RankingLog, RoundHistory, DefendMode) and putting data (Putting) are
// written through disjoint Patch sections.
type League struct {
	ID           string             `json:"id"`
	Players      []Player           `json:"players"`
	RankingLog   []MatchResult      `json:"rankingLog"`
	RoundHistory []RoundHistoryItem `json:"roundHistory"`
	DefendMode   DefendState        `json:"defendMode"`
	Putting      PuttingLeague      `json:"puttingLeague"`
}

// Player is a bag tag ladder participant.
type Player struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	StartingPosition int    `json:"startingPosition"`
}

// MatchEntry is one participant's stroke count in a match. Lower is better.
type MatchEntry struct {
	PlayerID string `json:"playerId"`
	Score    int    `json:"score"`
}

// MatchResult is an immutable entry of the ranking log.
type MatchResult struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Entries   []MatchEntry `json:"entries"`
	// System marks rounds synthesized by admin actions rather than played.
	System bool   `json:"system,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// HistoryEntry is the display form of a participant's result in a recorded round.
type HistoryEntry struct {
	PlayerID    string `json:"playerId"`
	Name        string `json:"name"`
	Score       int    `json:"score"`
	OldPosition int    `json:"oldPosition"`
	NewPosition int    `json:"newPosition"`
}

// RoundHistoryItem is the audit entry shown to players for a user-recorded round.
type RoundHistoryItem struct {
	ID        string         `json:"id"`
	Timestamp time.Time      `json:"timestamp"`
	Entries   []HistoryEntry `json:"entries"`
	Comment   string         `json:"comment"`
}

// Ranking maps player ID to current position. Lower is better.
type Ranking map[string]int

// Scope selects which positions carry a defend deadline.
type Scope string

const (
	ScopePodium Scope = "podium"
	ScopeAll    Scope = "all"
)

// DurationMode selects how long a defend deadline lasts.
type DurationMode string

const (
	DurationWeeks      DurationMode = "weeks"
	DurationTestMinute DurationMode = "testMinute"
)

// DefendState holds the defend timer configuration and per-position deadlines.
type DefendState struct {
	Enabled      bool              `json:"enabled"`
	Scope        Scope             `json:"scope"`
	DurationMode DurationMode      `json:"durationMode"`
	Weeks        int               `json:"weeks"`
	Expirations  map[int]time.Time `json:"expirations"`
}

// DefaultDefendState is the state of a fresh league.
func DefaultDefendState() DefendState {
	return DefendState{
		Enabled:      false,
		Scope:        ScopePodium,
		DurationMode: DurationWeeks,
		Weeks:        2,
		Expirations:  map[int]time.Time{},
	}
}

// NewLeague returns the default document created at bootstrap.
func NewLeague(id string) League {
	return League{
		ID:           id,
		Players:      []Player{},
		RankingLog:   []MatchResult{},
		RoundHistory: []RoundHistoryItem{},
		DefendMode:   DefaultDefendState(),
		Putting:      NewPuttingLeague(),
	}
}

// PlayerName returns the display name of a tag player, or "Unknown".
func (l League) PlayerName(id string) string {
	for _, p := range l.Players {
		if p.ID == id {
			return p.Name
		}
	}
	return "Unknown"
}

// Clone returns a deep copy so transaction bodies can mutate freely.
func (l League) Clone() League {
	out := l
	out.Players = slices.Clone(l.Players)
	out.RankingLog = make([]MatchResult, len(l.RankingLog))
	for i, r := range l.RankingLog {
		r.Entries = slices.Clone(r.Entries)
		out.RankingLog[i] = r
	}
	out.RoundHistory = make([]RoundHistoryItem, len(l.RoundHistory))
	for i, h := range l.RoundHistory {
		h.Entries = slices.Clone(h.Entries)
		out.RoundHistory[i] = h
	}
	out.DefendMode = l.DefendMode.Clone()
	out.Putting = l.Putting.Clone()
	return out
}

// Clone copies the expiration map.
func (d DefendState) Clone() DefendState {
	out := d
	out.Expirations = make(map[int]time.Time, len(d.Expirations))
	for k, v := range d.Expirations {
		out.Expirations[k] = v
	}
	return out
}

// Normalize fills nil collections left by decoding an older or partial document,
// so readers never see JSON nulls.
func (l League) Normalize() League {
	if l.Players == nil {
		l.Players = []Player{}
	}
	if l.RankingLog == nil {
		l.RankingLog = []MatchResult{}
	}
	if l.RoundHistory == nil {
		l.RoundHistory = []RoundHistoryItem{}
	}
	if l.DefendMode.Scope == "" {
		l.DefendMode.Scope = ScopePodium
	}
	if l.DefendMode.DurationMode == "" {
		l.DefendMode.DurationMode = DurationWeeks
	}
	if l.DefendMode.Weeks == 0 {
		l.DefendMode.Weeks = 2
	}
	if l.DefendMode.Expirations == nil {
		l.DefendMode.Expirations = map[int]time.Time{}
	}
	l.Putting = l.Putting.Normalize()
	return l
}
