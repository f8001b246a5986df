package puttingdomain

import (
	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
)

var errFinalized = leaguedomain.Rejected("the putting league is finalized")

func requireStatus(p leaguedomain.PuttingLeague, want leaguedomain.Status) error {
	got := p.Settings.Status()
	if got == want {
		return nil
	}
	switch got {
	case leaguedomain.StatusFinalized:
		return errFinalized
	case leaguedomain.StatusRoundActive:
		return leaguedomain.Rejected("round %d is in progress; roster, settings and cards are frozen", p.Settings.CurrentRound)
	default:
		return leaguedomain.Rejected("no round is in progress")
	}
}

// CheckedInRoster returns the checked-in players in roster order.
func CheckedInRoster(p leaguedomain.PuttingLeague) []leaguedomain.PuttingPlayer {
	out := make([]leaguedomain.PuttingPlayer, 0, len(p.Players))
	for _, pl := range p.Players {
		if pl.CheckedIn {
			out = append(out, pl)
		}
	}
	return out
}

// BeginRound locks the league and starts round 1 with the drafted cards.
func BeginRound(p leaguedomain.PuttingLeague, authorized bool) (leaguedomain.PuttingLeague, error) {
	if !authorized {
		return p, leaguedomain.ErrUnauthorized
	}
	if err := requireStatus(p, leaguedomain.StatusSetup); err != nil {
		return p, err
	}
	roster := CheckedInRoster(p)
	if len(roster) < 2 {
		return p, leaguedomain.Invalid("at least 2 players must be checked in")
	}
	cards := p.CardsByRound[1]
	if len(cards) == 0 {
		return p, leaguedomain.Invalid("create or randomize cards before starting")
	}
	if err := ValidateManualAllocation(cards, roster); err != nil {
		return p, err
	}

	out := p.Clone()
	for r := range out.CardsByRound {
		if r != 1 {
			delete(out.CardsByRound, r)
		}
	}
	out.Scores = leaguedomain.Scores{}
	out.Submitted = map[int]map[string]bool{}
	out.Settings.Locked = true
	out.Settings.CurrentRound = 1
	return out, nil
}

// AdvanceRound closes the current round and seeds the next one from its totals.
func AdvanceRound(p leaguedomain.PuttingLeague, authorized bool) (leaguedomain.PuttingLeague, error) {
	if !authorized {
		return p, leaguedomain.ErrUnauthorized
	}
	if err := requireStatus(p, leaguedomain.StatusRoundActive); err != nil {
		return p, err
	}
	k := p.Settings.CurrentRound
	if k >= p.Settings.TotalRounds {
		return p, leaguedomain.Rejected("round %d is the last round; finalize instead", k)
	}
	if err := requireRoundSubmitted(p, k); err != nil {
		return p, err
	}

	// Roster order breaks ties.
	onCards := map[string]bool{}
	for _, c := range p.CardsByRound[k] {
		for _, id := range c.MemberIDs {
			onCards[id] = true
		}
	}
	roster := make([]string, 0, len(onCards))
	for _, pl := range p.Players {
		if onCards[pl.ID] {
			roster = append(roster, pl.ID)
		}
	}

	out := p.Clone()
	out.CardsByRound[k+1] = BuildRankedAllocation(k+1, roster, RoundTotals(p, k))
	out.Settings.CurrentRound = k + 1
	return out, nil
}

// Finalize freezes all scores. requireAdmin makes it an admin-gated action.
func Finalize(p leaguedomain.PuttingLeague, authorized, requireAdmin bool) (leaguedomain.PuttingLeague, error) {
	if requireAdmin && !authorized {
		return p, leaguedomain.ErrUnauthorized
	}
	if err := requireStatus(p, leaguedomain.StatusRoundActive); err != nil {
		return p, err
	}
	k := p.Settings.CurrentRound
	if k != p.Settings.TotalRounds {
		return p, leaguedomain.Rejected("round %d of %d is in progress; advance before finalizing", k, p.Settings.TotalRounds)
	}
	if err := requireRoundSubmitted(p, k); err != nil {
		return p, err
	}
	out := p.Clone()
	out.Settings.Finalized = true
	return out, nil
}

// Reset discards the whole putting league.
func Reset(authorized bool) (leaguedomain.PuttingLeague, error) {
	if !authorized {
		return leaguedomain.PuttingLeague{}, leaguedomain.ErrUnauthorized
	}
	return leaguedomain.NewPuttingLeague(), nil
}
