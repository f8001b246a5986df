package puttingdomain

import (
	"math/rand/v2"
	"strings"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
)

// AddPlayer appends a player to the roster, checked in.
func AddPlayer(p leaguedomain.PuttingLeague, id, name string, pool leaguedomain.Pool) (leaguedomain.PuttingLeague, error) {
	if err := requireStatus(p, leaguedomain.StatusSetup); err != nil {
		return p, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return p, leaguedomain.Invalid("name is required")
	}
	if pool == "" {
		pool = leaguedomain.PoolA
	}
	if !pool.Valid() {
		return p, leaguedomain.Invalid("pool must be A, B or C")
	}
	for _, pl := range p.Players {
		if strings.EqualFold(pl.Name, name) {
			return p, leaguedomain.Invalid("%s is already on the roster", name)
		}
	}
	out := p.Clone()
	out.Players = append(out.Players, leaguedomain.PuttingPlayer{ID: id, Name: name, Pool: pool, CheckedIn: true})
	return out, nil
}

// RemovePlayer drops a player from the roster and from any drafted card.
func RemovePlayer(p leaguedomain.PuttingLeague, id string) (leaguedomain.PuttingLeague, error) {
	if err := requireStatus(p, leaguedomain.StatusSetup); err != nil {
		return p, err
	}
	if _, ok := p.Player(id); !ok {
		return p, leaguedomain.Invalid("unknown player %q", id)
	}
	out := p.Clone()
	players := out.Players[:0]
	for _, pl := range out.Players {
		if pl.ID != id {
			players = append(players, pl)
		}
	}
	out.Players = players
	dropFromDraft(out, id)
	delete(out.Adjustments, id)
	return out, nil
}

// SetPool moves a player to another pool. Allowed until the league is finalized.
func SetPool(p leaguedomain.PuttingLeague, id string, pool leaguedomain.Pool) (leaguedomain.PuttingLeague, error) {
	if p.Settings.Finalized {
		return p, errFinalized
	}
	if !pool.Valid() {
		return p, leaguedomain.Invalid("pool must be A, B or C")
	}
	out := p.Clone()
	for i := range out.Players {
		if out.Players[i].ID == id {
			out.Players[i].Pool = pool
			return out, nil
		}
	}
	return p, leaguedomain.Invalid("unknown player %q", id)
}

// SetCheckedIn toggles attendance. Checking a player out removes them from drafted cards.
func SetCheckedIn(p leaguedomain.PuttingLeague, id string, checkedIn bool) (leaguedomain.PuttingLeague, error) {
	if err := requireStatus(p, leaguedomain.StatusSetup); err != nil {
		return p, err
	}
	out := p.Clone()
	for i := range out.Players {
		if out.Players[i].ID != id {
			continue
		}
		out.Players[i].CheckedIn = checkedIn
		if !checkedIn {
			dropFromDraft(out, id)
		}
		return out, nil
	}
	return p, leaguedomain.Invalid("unknown player %q", id)
}

// UpdateSettings changes the format before the league starts.
func UpdateSettings(p leaguedomain.PuttingLeague, stations, rounds int) (leaguedomain.PuttingLeague, error) {
	if err := requireStatus(p, leaguedomain.StatusSetup); err != nil {
		return p, err
	}
	if stations < leaguedomain.MinStations || stations > leaguedomain.MaxStations {
		return p, leaguedomain.Invalid("stations must be between %d and %d", leaguedomain.MinStations, leaguedomain.MaxStations)
	}
	if rounds < leaguedomain.MinRounds || rounds > leaguedomain.MaxRounds {
		return p, leaguedomain.Invalid("rounds must be between %d and %d", leaguedomain.MinRounds, leaguedomain.MaxRounds)
	}
	out := p.Clone()
	out.Settings.StationCount = stations
	out.Settings.TotalRounds = rounds
	return out, nil
}

// CreateCard drafts a round-1 card from checked-in players not already on a card.
func CreateCard(p leaguedomain.PuttingLeague, id string, memberIDs []string) (leaguedomain.PuttingLeague, error) {
	if err := requireStatus(p, leaguedomain.StatusSetup); err != nil {
		return p, err
	}
	if n := len(memberIDs); n < leaguedomain.MinCardSize || n > leaguedomain.MaxCardSize {
		return p, leaguedomain.Invalid("a card needs %d to %d players", leaguedomain.MinCardSize, leaguedomain.MaxCardSize)
	}
	seen := map[string]bool{}
	for _, mid := range memberIDs {
		pl, ok := p.Player(mid)
		if !ok || !pl.CheckedIn {
			return p, leaguedomain.Invalid("player %q is not checked in", mid)
		}
		if seen[mid] {
			return p, leaguedomain.Invalid("%s is listed twice", pl.Name)
		}
		seen[mid] = true
		if c, taken := p.CardOf(1, mid); taken {
			return p, leaguedomain.Invalid("%s is already on %s", pl.Name, c.Name)
		}
	}
	out := p.Clone()
	cards := out.CardsByRound[1]
	cards = append(cards, leaguedomain.Card{
		ID:        id,
		Name:      CardName(len(cards) + 1),
		MemberIDs: append([]string(nil), memberIDs...),
	})
	out.CardsByRound[1] = cards
	return out, nil
}

// DeleteCard removes a drafted card and renumbers the remaining card names.
func DeleteCard(p leaguedomain.PuttingLeague, id string) (leaguedomain.PuttingLeague, error) {
	if err := requireStatus(p, leaguedomain.StatusSetup); err != nil {
		return p, err
	}
	if _, ok := p.Card(1, id); !ok {
		return p, leaguedomain.Invalid("card %q does not exist", id)
	}
	out := p.Clone()
	kept := make([]leaguedomain.Card, 0, len(out.CardsByRound[1]))
	for _, c := range out.CardsByRound[1] {
		if c.ID != id {
			c.Name = CardName(len(kept) + 1)
			kept = append(kept, c)
		}
	}
	out.CardsByRound[1] = kept
	return out, nil
}

// RandomizeCards replaces the drafted cards with a random allocation of the checked-in roster.
func RandomizeCards(p leaguedomain.PuttingLeague, rng *rand.Rand) (leaguedomain.PuttingLeague, error) {
	if err := requireStatus(p, leaguedomain.StatusSetup); err != nil {
		return p, err
	}
	ids := p.CheckedIn()
	if len(ids) < 2 {
		return p, leaguedomain.Invalid("at least 2 players must be checked in")
	}
	out := p.Clone()
	out.CardsByRound[1] = BuildRandomAllocation(1, ids, rng)
	return out, nil
}

func dropFromDraft(p leaguedomain.PuttingLeague, id string) {
	if cards, ok := p.CardsByRound[1]; ok {
		p.CardsByRound[1] = withoutMember(cards, id)
	}
}

func withoutMember(cards []leaguedomain.Card, id string) []leaguedomain.Card {
	out := make([]leaguedomain.Card, 0, len(cards))
	for _, c := range cards {
		members := make([]string, 0, len(c.MemberIDs))
		for _, m := range c.MemberIDs {
			if m != id {
				members = append(members, m)
			}
		}
		if len(members) == 0 {
			continue
		}
		c.MemberIDs = members
		out = append(out, c)
	}
	return out
}
