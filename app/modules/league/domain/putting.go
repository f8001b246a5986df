package leaguedomain

import "slices"

// Pool is an administrative leaderboard segment for putting players.
type Pool string

const (
	PoolA Pool = "A"
	PoolB Pool = "B"
	PoolC Pool = "C"
)

// Valid reports whether p is one of the known pools.
func (p Pool) Valid() bool {
	return p == PoolA || p == PoolB || p == PoolC
}

// Pools lists the pools in display order.
var Pools = []Pool{PoolA, PoolB, PoolC}

const (
	MinStations    = 1
	MaxStations    = 10
	MinRounds      = 1
	MaxRounds      = 5
	MinMade        = 0
	MaxMade        = 4
	MinCardSize    = 2
	MaxCardSize    = 4
	DefaultStation = 9
	DefaultRounds  = 3
)

// PuttingPlayer is a putting league participant.
type PuttingPlayer struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Pool      Pool   `json:"pool"`
	CheckedIn bool   `json:"checkedIn"`
}

// Card is a scoring group of 2 to 4 players for one round.
type Card struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"memberIds"`
}

// PuttingSettings is the format and lifecycle position of the putting league.
type PuttingSettings struct {
	StationCount int  `json:"stationCount"`
	TotalRounds  int  `json:"totalRounds"`
	Locked       bool `json:"locked"`
	CurrentRound int  `json:"currentRound"`
	Finalized    bool `json:"finalized"`
}

// Status is the canonical lifecycle state derived from PuttingSettings.
type Status string

const (
	StatusSetup       Status = "SETUP"
	StatusRoundActive Status = "ROUND_ACTIVE"
	StatusFinalized   Status = "FINALIZED"
)

// Status derives the lifecycle state.
func (s PuttingSettings) Status() Status {
	switch {
	case s.Finalized:
		return StatusFinalized
	case s.Locked:
		return StatusRoundActive
	default:
		return StatusSetup
	}
}

// Scores maps round -> station -> player ID -> made-putt count.
// A missing key means "not yet recorded" and is distinct from a recorded 0.
type Scores map[int]map[int]map[string]int

// PuttingLeague is the putting section of the league document.
type PuttingLeague struct {
	Settings     PuttingSettings         `json:"settings"`
	Players      []PuttingPlayer         `json:"players"`
	CardsByRound map[int][]Card          `json:"cardsByRound"`
	Scores       Scores                  `json:"scores"`
	Submitted    map[int]map[string]bool `json:"submitted"`
	Adjustments  map[string]int          `json:"adjustments"`
}

// NewPuttingLeague returns a fresh league in SETUP.
func NewPuttingLeague() PuttingLeague {
	return PuttingLeague{
		Settings: PuttingSettings{
			StationCount: DefaultStation,
			TotalRounds:  DefaultRounds,
		},
		Players:      []PuttingPlayer{},
		CardsByRound: map[int][]Card{},
		Scores:       Scores{},
		Submitted:    map[int]map[string]bool{},
		Adjustments:  map[string]int{},
	}
}

// Made returns the recorded made-putt count and whether one was recorded.
func (p PuttingLeague) Made(round, station int, playerID string) (int, bool) {
	byStation, ok := p.Scores[round]
	if !ok {
		return 0, false
	}
	byPlayer, ok := byStation[station]
	if !ok {
		return 0, false
	}
	v, ok := byPlayer[playerID]
	return v, ok
}

// Player looks up a putting player by ID.
func (p PuttingLeague) Player(id string) (PuttingPlayer, bool) {
	for _, pl := range p.Players {
		if pl.ID == id {
			return pl, true
		}
	}
	return PuttingPlayer{}, false
}

// Card looks up a card of a round by ID.
func (p PuttingLeague) Card(round int, id string) (Card, bool) {
	for _, c := range p.CardsByRound[round] {
		if c.ID == id {
			return c, true
		}
	}
	return Card{}, false
}

// CardOf returns the card a player belongs to in a round.
func (p PuttingLeague) CardOf(round int, playerID string) (Card, bool) {
	for _, c := range p.CardsByRound[round] {
		for _, m := range c.MemberIDs {
			if m == playerID {
				return c, true
			}
		}
	}
	return Card{}, false
}

// IsSubmitted reports whether a card of a round carries a submission mark.
func (p PuttingLeague) IsSubmitted(round int, cardID string) bool {
	return p.Submitted[round][cardID]
}

// CheckedIn returns the IDs of checked-in players in roster order.
func (p PuttingLeague) CheckedIn() []string {
	ids := make([]string, 0, len(p.Players))
	for _, pl := range p.Players {
		if pl.CheckedIn {
			ids = append(ids, pl.ID)
		}
	}
	return ids
}

// Clone deep-copies every map and slice.
func (p PuttingLeague) Clone() PuttingLeague {
	out := p
	out.Players = slices.Clone(p.Players)

	out.CardsByRound = make(map[int][]Card, len(p.CardsByRound))
	for r, cards := range p.CardsByRound {
		cp := make([]Card, len(cards))
		for i, c := range cards {
			c.MemberIDs = slices.Clone(c.MemberIDs)
			cp[i] = c
		}
		out.CardsByRound[r] = cp
	}

	out.Scores = make(Scores, len(p.Scores))
	for r, byStation := range p.Scores {
		out.Scores[r] = make(map[int]map[string]int, len(byStation))
		for s, byPlayer := range byStation {
			out.Scores[r][s] = make(map[string]int, len(byPlayer))
			for id, v := range byPlayer {
				out.Scores[r][s][id] = v
			}
		}
	}

	out.Submitted = make(map[int]map[string]bool, len(p.Submitted))
	for r, marks := range p.Submitted {
		out.Submitted[r] = make(map[string]bool, len(marks))
		for id, v := range marks {
			out.Submitted[r][id] = v
		}
	}

	out.Adjustments = make(map[string]int, len(p.Adjustments))
	for id, v := range p.Adjustments {
		out.Adjustments[id] = v
	}
	return out
}

// Normalize fills nil collections and zero settings with defaults.
func (p PuttingLeague) Normalize() PuttingLeague {
	if p.Settings.StationCount == 0 {
		p.Settings.StationCount = DefaultStation
	}
	if p.Settings.TotalRounds == 0 {
		p.Settings.TotalRounds = DefaultRounds
	}
	if p.Players == nil {
		p.Players = []PuttingPlayer{}
	}
	if p.CardsByRound == nil {
		p.CardsByRound = map[int][]Card{}
	}
	if p.Scores == nil {
		p.Scores = Scores{}
	}
	if p.Submitted == nil {
		p.Submitted = map[int]map[string]bool{}
	}
	if p.Adjustments == nil {
		p.Adjustments = map[string]int{}
	}
	return p
}
