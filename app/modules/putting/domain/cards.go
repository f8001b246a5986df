package puttingdomain

import (
	"fmt"
	"math/rand/v2"
	"sort"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
)

// groupKey orders partitions: fewest 2s, then most 4s, then fewest groups.
type groupKey struct {
	twos, threes, fours int
}

func (k groupKey) groups() int { return k.twos + k.threes + k.fours }

func (k groupKey) better(o groupKey) bool {
	if k.twos != o.twos {
		return k.twos < o.twos
	}
	if k.fours != o.fours {
		return k.fours > o.fours
	}
	return k.groups() < o.groups()
}

// ComputeGroupSizes partitions n players into card sizes between 2 and 4.
// The result lists 4s first, then 3s, then 2s. n of 1 to 4 is a single group.
func ComputeGroupSizes(n int) []int {
	if n <= 0 {
		return nil
	}
	if n <= leaguedomain.MaxCardSize {
		return []int{n}
	}

	best := make([]*groupKey, n+1)
	best[0] = &groupKey{}
	for sum := 2; sum <= n; sum++ {
		for _, size := range []int{2, 3, 4} {
			prev := sum - size
			if prev < 0 || best[prev] == nil {
				continue
			}
			cand := *best[prev]
			switch size {
			case 2:
				cand.twos++
			case 3:
				cand.threes++
			case 4:
				cand.fours++
			}
			if best[sum] == nil || cand.better(*best[sum]) {
				c := cand
				best[sum] = &c
			}
		}
	}

	k := best[n]
	sizes := make([]int, 0, k.groups())
	for i := 0; i < k.fours; i++ {
		sizes = append(sizes, 4)
	}
	for i := 0; i < k.threes; i++ {
		sizes = append(sizes, 3)
	}
	for i := 0; i < k.twos; i++ {
		sizes = append(sizes, 2)
	}
	return sizes
}

// CardID is the deterministic identifier of a generated card.
func CardID(round, index int) string {
	return fmt.Sprintf("r%d-card-%d", round, index)
}

// CardName is the display name of the index-th card, 1-based.
func CardName(index int) string {
	return fmt.Sprintf("Card %d", index)
}

func slice(round int, ids []string) []leaguedomain.Card {
	sizes := ComputeGroupSizes(len(ids))
	cards := make([]leaguedomain.Card, 0, len(sizes))
	start := 0
	for i, size := range sizes {
		members := append([]string(nil), ids[start:start+size]...)
		cards = append(cards, leaguedomain.Card{
			ID:        CardID(round, i+1),
			Name:      CardName(i + 1),
			MemberIDs: members,
		})
		start += size
	}
	return cards
}

// BuildRandomAllocation shuffles the roster with rng and slices it into cards.
func BuildRandomAllocation(round int, roster []string, rng *rand.Rand) []leaguedomain.Card {
	ids := append([]string(nil), roster...)
	rng.Shuffle(len(ids), func(i, j int) { ids[i], ids[j] = ids[j], ids[i] })
	return slice(round, ids)
}

// BuildRankedAllocation groups players by prior-round total, best first.
// Ties keep roster order.
func BuildRankedAllocation(round int, roster []string, totals map[string]int) []leaguedomain.Card {
	ids := append([]string(nil), roster...)
	sort.SliceStable(ids, func(i, j int) bool {
		return totals[ids[i]] > totals[ids[j]]
	})
	return slice(round, ids)
}

// ValidateManualAllocation checks that cards cover the roster exactly once with legal sizes.
func ValidateManualAllocation(cards []leaguedomain.Card, roster []leaguedomain.PuttingPlayer) error {
	known := make(map[string]leaguedomain.PuttingPlayer, len(roster))
	for _, p := range roster {
		known[p.ID] = p
	}

	for _, c := range cards {
		if n := len(c.MemberIDs); n < leaguedomain.MinCardSize || n > leaguedomain.MaxCardSize {
			return leaguedomain.Invalid("%s has %d players; cards need %d to %d", c.Name, n, leaguedomain.MinCardSize, leaguedomain.MaxCardSize)
		}
	}

	for _, c := range cards {
		for _, id := range c.MemberIDs {
			if _, ok := known[id]; !ok {
				return leaguedomain.Invalid("%s includes a player who is not checked in", c.Name)
			}
		}
	}

	assigned := make(map[string]string, len(roster))
	for _, c := range cards {
		for _, id := range c.MemberIDs {
			if other, dup := assigned[id]; dup {
				return leaguedomain.Invalid("%s is on both %s and %s", known[id].Name, other, c.Name)
			}
			assigned[id] = c.Name
		}
	}

	for _, p := range roster {
		if _, ok := assigned[p.ID]; !ok {
			return leaguedomain.Invalid("%s is not on any card", p.Name)
		}
	}
	return nil
}
