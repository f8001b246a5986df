package puttingdomain

import (
	"sort"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
)

// pointsTable maps made putts to points. A perfect station is worth 5.
var pointsTable = [...]int{0, 1, 2, 3, 5}

// ErrCardAlreadySubmitted is returned when a submitted card is submitted or scored again.
var ErrCardAlreadySubmitted error = &leaguedomain.StateError{Msg: "card has already been submitted"}

// PointsForMade converts a made-putt count into points.
func PointsForMade(made int) (int, error) {
	if made < leaguedomain.MinMade || made > leaguedomain.MaxMade {
		return 0, leaguedomain.Invalid("made putts must be between %d and %d", leaguedomain.MinMade, leaguedomain.MaxMade)
	}
	return pointsTable[made], nil
}

func points(made int) int {
	if made < 0 || made >= len(pointsTable) {
		return 0
	}
	return pointsTable[made]
}

// RoundTotal sums a player's points for a round. Unrecorded stations count as 0.
func RoundTotal(p leaguedomain.PuttingLeague, playerID string, round int) int {
	total := 0
	for station := 1; station <= p.Settings.StationCount; station++ {
		if made, ok := p.Made(round, station, playerID); ok {
			total += points(made)
		}
	}
	return total
}

// RoundTotals returns RoundTotal for every member of the round's cards.
func RoundTotals(p leaguedomain.PuttingLeague, round int) map[string]int {
	totals := map[string]int{}
	for _, c := range p.CardsByRound[round] {
		for _, id := range c.MemberIDs {
			totals[id] = RoundTotal(p, id, round)
		}
	}
	return totals
}

// BaseTotal sums round totals over rounds 1..CurrentRound.
func BaseTotal(p leaguedomain.PuttingLeague, playerID string) int {
	total := 0
	for round := 1; round <= p.Settings.CurrentRound; round++ {
		total += RoundTotal(p, playerID, round)
	}
	return total
}

// CumulativeTotal is BaseTotal plus the player's adjustment.
func CumulativeTotal(p leaguedomain.PuttingLeague, playerID string) int {
	return BaseTotal(p, playerID) + p.Adjustments[playerID]
}

// MissingEntries lists the (station, member) pairs of a card without a recorded score,
// station by station in member order.
func MissingEntries(p leaguedomain.PuttingLeague, card leaguedomain.Card, round int) []leaguedomain.MissingEntry {
	var missing []leaguedomain.MissingEntry
	for station := 1; station <= p.Settings.StationCount; station++ {
		for _, id := range card.MemberIDs {
			if _, ok := p.Made(round, station, id); !ok {
				missing = append(missing, leaguedomain.MissingEntry{Station: station, PlayerID: id})
			}
		}
	}
	return missing
}

// IsCardComplete reports whether every member has a score at every station. Zero counts.
func IsCardComplete(p leaguedomain.PuttingLeague, card leaguedomain.Card, round int) bool {
	return len(MissingEntries(p, card, round)) == 0
}

// AllCardsSubmitted reports whether every card of round is submitted. A round without cards is not.
func AllCardsSubmitted(p leaguedomain.PuttingLeague, round int) bool {
	cards := p.CardsByRound[round]
	if len(cards) == 0 {
		return false
	}
	for _, c := range cards {
		if !p.IsSubmitted(round, c.ID) {
			return false
		}
	}
	return true
}

// PendingCards lists the names of round cards without a submission mark.
func PendingCards(p leaguedomain.PuttingLeague, round int) []string {
	var names []string
	for _, c := range p.CardsByRound[round] {
		if !p.IsSubmitted(round, c.ID) {
			names = append(names, c.Name)
		}
	}
	return names
}

func requireRoundSubmitted(p leaguedomain.PuttingLeague, round int) error {
	if AllCardsSubmitted(p, round) {
		return nil
	}
	return &leaguedomain.RoundNotSubmittedError{Round: round, CardNames: PendingCards(p, round)}
}

// scorable checks that (round, playerID) may be written and returns the player's card.
func scorable(p leaguedomain.PuttingLeague, round, station int, playerID string) (leaguedomain.Card, error) {
	if err := requireStatus(p, leaguedomain.StatusRoundActive); err != nil {
		return leaguedomain.Card{}, err
	}
	if round != p.Settings.CurrentRound {
		return leaguedomain.Card{}, leaguedomain.Rejected("only round %d can be scored", p.Settings.CurrentRound)
	}
	if station < 1 || station > p.Settings.StationCount {
		return leaguedomain.Card{}, leaguedomain.Invalid("station must be between 1 and %d", p.Settings.StationCount)
	}
	card, ok := p.CardOf(round, playerID)
	if !ok {
		return leaguedomain.Card{}, leaguedomain.Invalid("player is not on a card in round %d", round)
	}
	if p.IsSubmitted(round, card.ID) {
		return leaguedomain.Card{}, ErrCardAlreadySubmitted
	}
	return card, nil
}

// SetMade records a made-putt count.
func SetMade(p leaguedomain.PuttingLeague, round, station int, playerID string, made int) (leaguedomain.PuttingLeague, error) {
	if _, err := scorable(p, round, station, playerID); err != nil {
		return p, err
	}
	if _, err := PointsForMade(made); err != nil {
		return p, err
	}
	out := p.Clone()
	if out.Scores[round] == nil {
		out.Scores[round] = map[int]map[string]int{}
	}
	if out.Scores[round][station] == nil {
		out.Scores[round][station] = map[string]int{}
	}
	out.Scores[round][station][playerID] = made
	return out, nil
}

// ClearMade removes a recorded count so the pair reads as unrecorded again.
func ClearMade(p leaguedomain.PuttingLeague, round, station int, playerID string) (leaguedomain.PuttingLeague, error) {
	if _, err := scorable(p, round, station, playerID); err != nil {
		return p, err
	}
	out := p.Clone()
	if byStation, ok := out.Scores[round]; ok {
		if byPlayer, ok := byStation[station]; ok {
			delete(byPlayer, playerID)
			if len(byPlayer) == 0 {
				delete(byStation, station)
			}
		}
		if len(byStation) == 0 {
			delete(out.Scores, round)
		}
	}
	return out, nil
}

// SubmitCard sets the submission mark of a complete card.
func SubmitCard(p leaguedomain.PuttingLeague, round int, cardID string) (leaguedomain.PuttingLeague, error) {
	if err := requireStatus(p, leaguedomain.StatusRoundActive); err != nil {
		return p, err
	}
	if round != p.Settings.CurrentRound {
		return p, leaguedomain.Rejected("only round %d can be submitted", p.Settings.CurrentRound)
	}
	card, ok := p.Card(round, cardID)
	if !ok {
		return p, leaguedomain.Invalid("card %q does not exist in round %d", cardID, round)
	}
	if p.IsSubmitted(round, cardID) {
		return p, ErrCardAlreadySubmitted
	}
	if missing := MissingEntries(p, card, round); len(missing) > 0 {
		return p, &leaguedomain.IncompleteCardError{CardName: card.Name, Missing: missing}
	}
	out := p.Clone()
	if out.Submitted[round] == nil {
		out.Submitted[round] = map[string]bool{}
	}
	out.Submitted[round][cardID] = true
	return out, nil
}

// SetFinalTotal stores the offset that makes playerID's cumulative total equal total.
func SetFinalTotal(p leaguedomain.PuttingLeague, playerID string, total int) (leaguedomain.PuttingLeague, error) {
	if p.Settings.Finalized {
		return p, errFinalized
	}
	if _, ok := p.Player(playerID); !ok {
		return p, leaguedomain.Invalid("unknown player %q", playerID)
	}
	out := p.Clone()
	delta := total - BaseTotal(p, playerID)
	if delta == 0 {
		delete(out.Adjustments, playerID)
	} else {
		out.Adjustments[playerID] = delta
	}
	return out, nil
}

// ClearAdjustment removes a player's adjustment.
func ClearAdjustment(p leaguedomain.PuttingLeague, playerID string) (leaguedomain.PuttingLeague, error) {
	if p.Settings.Finalized {
		return p, errFinalized
	}
	out := p.Clone()
	delete(out.Adjustments, playerID)
	return out, nil
}

// Standing is one row of the putting leaderboard.
type Standing struct {
	Rank        int               `json:"rank"`
	PlayerID    string            `json:"playerId"`
	Name        string            `json:"name"`
	Pool        leaguedomain.Pool `json:"pool"`
	RoundTotals []int             `json:"roundTotals"`
	Base        int               `json:"base"`
	Adjustment  int               `json:"adjustment"`
	Total       int               `json:"total"`
}

// Leaderboard ranks roster players by cumulative total, highest first. Equal totals
// share a rank and keep roster order. A non-empty pool restricts the rows.
func Leaderboard(p leaguedomain.PuttingLeague, pool leaguedomain.Pool) []Standing {
	rows := make([]Standing, 0, len(p.Players))
	for _, pl := range p.Players {
		if pool != "" && pl.Pool != pool {
			continue
		}
		totals := make([]int, 0, p.Settings.CurrentRound)
		for round := 1; round <= p.Settings.CurrentRound; round++ {
			totals = append(totals, RoundTotal(p, pl.ID, round))
		}
		base := BaseTotal(p, pl.ID)
		adj := p.Adjustments[pl.ID]
		rows = append(rows, Standing{
			PlayerID:    pl.ID,
			Name:        pl.Name,
			Pool:        pl.Pool,
			RoundTotals: totals,
			Base:        base,
			Adjustment:  adj,
			Total:       base + adj,
		})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Total > rows[j].Total })
	for i := range rows {
		if i > 0 && rows[i].Total == rows[i-1].Total {
			rows[i].Rank = rows[i-1].Rank
		} else {
			rows[i].Rank = i + 1
		}
	}
	return rows
}

// CardStatus summarizes a card for scorekeepers.
type CardStatus struct {
	Card      leaguedomain.Card           `json:"card"`
	Complete  bool                        `json:"complete"`
	Submitted bool                        `json:"submitted"`
	Missing   []leaguedomain.MissingEntry `json:"missing"`
	Totals    map[string]int              `json:"totals"`
}

// CardStatuses reports every card of a round.
func CardStatuses(p leaguedomain.PuttingLeague, round int) []CardStatus {
	cards := p.CardsByRound[round]
	out := make([]CardStatus, 0, len(cards))
	for _, c := range cards {
		missing := MissingEntries(p, c, round)
		totals := make(map[string]int, len(c.MemberIDs))
		for _, id := range c.MemberIDs {
			totals[id] = RoundTotal(p, id, round)
		}
		out = append(out, CardStatus{
			Card:      c,
			Complete:  len(missing) == 0,
			Submitted: p.IsSubmitted(round, c.ID),
			Missing:   missing,
			Totals:    totals,
		})
	}
	return out
}
