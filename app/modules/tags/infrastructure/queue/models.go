package tagqueue

import (
	"time"

	tagservice "github.com/Black-And-White-Club/frolf-club/app/modules/tags/application"
)

// DefendSweepJob checks one league for expired defend deadlines.
type DefendSweepJob struct {
	LeagueID string `json:"league_id"`
}

// Kind returns the job type identifier for River
func (DefendSweepJob) Kind() string { return "tags_defend_sweep" }

// DefendExpiredNotice is published on tags.defend.expired.v1.<leagueID>.
type DefendExpiredNotice struct {
	LeagueID  string                     `json:"leagueId"`
	Holders   []tagservice.ExpiredHolder `json:"holders"`
	CheckedAt time.Time                  `json:"checkedAt"`
}
