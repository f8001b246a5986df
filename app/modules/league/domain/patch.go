package leaguedomain

// Patch is the unit of write against the league document. Only non-nil
// sections are written; the rest of the stored document is left as is.
type Patch struct {
	Players      *[]Player           `json:"players,omitempty"`
	RankingLog   *[]MatchResult      `json:"rankingLog,omitempty"`
	RoundHistory *[]RoundHistoryItem `json:"roundHistory,omitempty"`
	DefendMode   *DefendState        `json:"defendMode,omitempty"`
	Putting      *PuttingLeague      `json:"puttingLeague,omitempty"`
}

// Empty reports whether the patch writes nothing.
func (p Patch) Empty() bool {
	return p.Players == nil && p.RankingLog == nil && p.RoundHistory == nil &&
		p.DefendMode == nil && p.Putting == nil
}

// Sections lists the document keys the patch writes.
func (p Patch) Sections() []string {
	var out []string
	if p.Players != nil {
		out = append(out, "players")
	}
	if p.RankingLog != nil {
		out = append(out, "rankingLog")
	}
	if p.RoundHistory != nil {
		out = append(out, "roundHistory")
	}
	if p.DefendMode != nil {
		out = append(out, "defendMode")
	}
	if p.Putting != nil {
		out = append(out, "puttingLeague")
	}
	return out
}

// Apply returns l with the patch sections replaced. The result shares no memory
// with l or the patch.
func (p Patch) Apply(l League) League {
	out := l
	if p.Players != nil {
		out.Players = *p.Players
	}
	if p.RankingLog != nil {
		out.RankingLog = *p.RankingLog
	}
	if p.RoundHistory != nil {
		out.RoundHistory = *p.RoundHistory
	}
	if p.DefendMode != nil {
		out.DefendMode = *p.DefendMode
	}
	if p.Putting != nil {
		out.Putting = *p.Putting
	}
	return out.Clone()
}

// TagsPatch writes every tag-ladder section of l.
func TagsPatch(l League) Patch {
	return Patch{
		Players:      &l.Players,
		RankingLog:   &l.RankingLog,
		RoundHistory: &l.RoundHistory,
		DefendMode:   &l.DefendMode,
	}
}

// PuttingPatch writes the putting section.
func PuttingPatch(p PuttingLeague) Patch {
	return Patch{Putting: &p}
}
