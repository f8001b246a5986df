package tagdomain

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
)

const (
	// TestDuration is the deadline length of the testMinute mode.
	TestDuration = time.Minute
	day          = 24 * time.Hour
	week         = 7 * day
	defaultWeeks = 2
	maxWeeks     = 52
)

// DefendSettings is the admin input for activating or re-applying defend mode.
type DefendSettings struct {
	Scope        leaguedomain.Scope        `json:"scope"`
	DurationMode leaguedomain.DurationMode `json:"durationMode"`
	Weeks        int                       `json:"weeks"`
}

// Normalize fills defaults and validates the settings.
func (s DefendSettings) Normalize() (DefendSettings, error) {
	if s.Scope == "" {
		s.Scope = leaguedomain.ScopePodium
	}
	if s.DurationMode == "" {
		s.DurationMode = leaguedomain.DurationWeeks
	}
	if s.Weeks == 0 {
		s.Weeks = defaultWeeks
	}
	switch s.Scope {
	case leaguedomain.ScopePodium, leaguedomain.ScopeAll:
	default:
		return s, leaguedomain.Invalid("unknown defend scope %q", s.Scope)
	}
	switch s.DurationMode {
	case leaguedomain.DurationWeeks, leaguedomain.DurationTestMinute:
	default:
		return s, leaguedomain.Invalid("unknown duration mode %q", s.DurationMode)
	}
	if s.Weeks < 1 || s.Weeks > maxWeeks {
		return s, leaguedomain.Invalid("weeks must be between 1 and %d", maxWeeks)
	}
	return s, nil
}

// DurationFor returns the length of a defend deadline.
func DurationFor(mode leaguedomain.DurationMode, weeks int) time.Duration {
	if mode == leaguedomain.DurationTestMinute {
		return TestDuration
	}
	if weeks <= 0 {
		weeks = defaultWeeks
	}
	return time.Duration(weeks) * week
}

// ScopePositions enumerates the positions covered by scope.
func ScopePositions(scope leaguedomain.Scope, ranking leaguedomain.Ranking) []int {
	if scope == leaguedomain.ScopePodium {
		return []int{1, 2, 3}
	}
	highest := MaxPosition(ranking)
	out := make([]int, 0, highest)
	for pos := 1; pos <= highest; pos++ {
		out = append(out, pos)
	}
	return out
}

// Activate turns defend mode on with a fresh deadline on every in-scope position.
func Activate(settings DefendSettings, ranking leaguedomain.Ranking, now time.Time) (leaguedomain.DefendState, error) {
	settings, err := settings.Normalize()
	if err != nil {
		return leaguedomain.DefendState{}, err
	}
	state := leaguedomain.DefendState{
		Enabled:      true,
		Scope:        settings.Scope,
		DurationMode: settings.DurationMode,
		Weeks:        settings.Weeks,
		Expirations:  map[int]time.Time{},
	}
	deadline := now.Add(DurationFor(settings.DurationMode, settings.Weeks))
	for _, pos := range ScopePositions(settings.Scope, ranking) {
		state.Expirations[pos] = deadline
	}
	return state, nil
}

// ApplySettings re-arms every in-scope position under new settings while keeping
// deadlines of positions outside the new scope.
func ApplySettings(state leaguedomain.DefendState, settings DefendSettings, ranking leaguedomain.Ranking, now time.Time) (leaguedomain.DefendState, error) {
	settings, err := settings.Normalize()
	if err != nil {
		return leaguedomain.DefendState{}, err
	}
	out := state.Clone()
	out.Enabled = true
	out.Scope = settings.Scope
	out.DurationMode = settings.DurationMode
	out.Weeks = settings.Weeks
	deadline := now.Add(DurationFor(settings.DurationMode, settings.Weeks))
	for _, pos := range ScopePositions(settings.Scope, ranking) {
		out.Expirations[pos] = deadline
	}
	return out, nil
}

// Disable turns defend mode off. Deadlines are kept for when it is re-applied.
func Disable(state leaguedomain.DefendState) leaguedomain.DefendState {
	out := state.Clone()
	out.Enabled = false
	return out
}

// OnMatchRecorded restarts the deadline of every pre-round position inside the active scope.
// ranking is the ranking before the round.
func OnMatchRecorded(state leaguedomain.DefendState, ranking leaguedomain.Ranking, prePositions []int, now time.Time) leaguedomain.DefendState {
	if !state.Enabled {
		return state
	}
	out := state.Clone()
	inScope := scopeSet(state.Scope, ranking)
	deadline := now.Add(DurationFor(state.DurationMode, state.Weeks))
	for _, pos := range prePositions {
		if inScope[pos] {
			out.Expirations[pos] = deadline
		}
	}
	return out
}

// ExpiredPositions lists in-scope positions whose deadline has passed, ascending.
func ExpiredPositions(state leaguedomain.DefendState, ranking leaguedomain.Ranking, now time.Time) []int {
	if !state.Enabled {
		return nil
	}
	var out []int
	for _, pos := range ScopePositions(state.Scope, ranking) {
		deadline, ok := state.Expirations[pos]
		if !ok || deadline.IsZero() {
			continue
		}
		if !now.Before(deadline) {
			out = append(out, pos)
		}
	}
	return out
}

// DefendDrop is the outcome of dropping expired holders.
type DefendDrop struct {
	Round   leaguedomain.MatchResult `json:"round"`
	State   leaguedomain.DefendState `json:"defendMode"`
	Expired []int                    `json:"expired"`
	Dropped []string                 `json:"dropped"`
	Ranking leaguedomain.Ranking     `json:"ranking"`
}

// DropExpiredRound builds the synthetic round that moves every expired holder to the bottom,
// keeping relative order within both groups, and re-arms the expired positions.
func DropExpiredRound(state leaguedomain.DefendState, ranking leaguedomain.Ranking, id string, now time.Time) (DefendDrop, error) {
	if !state.Enabled {
		return DefendDrop{}, leaguedomain.Rejected("defend mode is off")
	}
	expired := ExpiredPositions(state, ranking, now)
	if len(expired) == 0 {
		return DefendDrop{}, leaguedomain.Rejected("no expired tagholders right now")
	}
	if len(ranking) < 2 {
		return DefendDrop{}, leaguedomain.Rejected("not enough players to drop anyone")
	}

	expiredSet := make(map[int]bool, len(expired))
	for _, pos := range expired {
		expiredSet[pos] = true
	}

	type holder struct {
		id  string
		pos int
	}
	ordered := make([]holder, 0, len(ranking))
	for pid, pos := range ranking {
		ordered = append(ordered, holder{pid, pos})
	}
	slices.SortFunc(ordered, func(a, b holder) int { return a.pos - b.pos })

	var kept, dropped []holder
	for _, h := range ordered {
		if expiredSet[h.pos] {
			dropped = append(dropped, h)
		} else {
			kept = append(kept, h)
		}
	}
	if len(dropped) == 0 {
		return DefendDrop{}, leaguedomain.Rejected("no expired tagholders right now")
	}

	entries := make([]leaguedomain.MatchEntry, 0, len(ordered))
	droppedIDs := make([]string, 0, len(dropped))
	for i, h := range append(kept, dropped...) {
		entries = append(entries, leaguedomain.MatchEntry{PlayerID: h.id, Score: i + 1})
	}
	for _, h := range dropped {
		droppedIDs = append(droppedIDs, h.id)
	}

	round := leaguedomain.MatchResult{
		ID:        id,
		Timestamp: now,
		Entries:   entries,
		System:    true,
		Reason:    fmt.Sprintf("Defend Mode: dropped expired tagholders (%s)", joinInts(expired)),
	}

	next := state.Clone()
	deadline := now.Add(DurationFor(state.DurationMode, state.Weeks))
	for _, pos := range expired {
		next.Expirations[pos] = deadline
	}

	swaps := ComputeRoundSwaps(ranking, entries)
	return DefendDrop{
		Round:   round,
		State:   next,
		Expired: expired,
		Dropped: droppedIDs,
		Ranking: swaps.Apply(ranking),
	}, nil
}

// Countdown formats the time left until deadline: mm:ss under a day, whole days otherwise.
func Countdown(deadline, now time.Time) string {
	left := deadline.Sub(now)
	if left < 0 {
		left = 0
	}
	if left < day {
		total := int((left + time.Second - 1) / time.Second)
		return fmt.Sprintf("%02d:%02d", total/60, total%60)
	}
	days := int((left + day - 1) / day)
	return strconv.Itoa(days) + "d"
}

func scopeSet(scope leaguedomain.Scope, ranking leaguedomain.Ranking) map[int]bool {
	positions := ScopePositions(scope, ranking)
	set := make(map[int]bool, len(positions))
	for _, pos := range positions {
		set[pos] = true
	}
	return set
}

func joinInts(xs []int) string {
	parts := make([]string, len(xs))
	for i, x := range xs {
		parts[i] = strconv.Itoa(x)
	}
	return strings.Join(parts, ", ")
}
