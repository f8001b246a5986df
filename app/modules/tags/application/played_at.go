package tagservice

import (
	"regexp"
	"strings"
	"time"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// futureSlack tolerates small clock skew between client and server.
const futureSlack = 5 * time.Minute

var (
	compactTime = regexp.MustCompile(`(\d{1,2})(\d{2})(am|pm)`)
	parser      = newParser()
)

func newParser() *when.Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return w
}

// ParsePlayedAt turns the "played at" text of a recorded round into a time.
// Accepts RFC 3339 or natural language ("yesterday 6pm", "last friday at 5:30 pm").
// Empty input means now. Times in the future are rejected.
func ParsePlayedAt(input string, now time.Time) (time.Time, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return now, nil
	}

	if t, err := time.Parse(time.RFC3339, input); err == nil {
		return checkPast(t.UTC(), now, input)
	}

	normalized := strings.ToLower(input)
	normalized = strings.ReplaceAll(normalized, "today ", "today at ")
	// "632pm" -> "6:32 pm"
	normalized = compactTime.ReplaceAllString(normalized, "$1:$2 $3")

	r, err := parser.Parse(normalized, now)
	if err != nil || r == nil {
		return time.Time{}, leaguedomain.Invalid("could not understand played-at time %q", input)
	}
	return checkPast(r.Time.UTC(), now, input)
}

func checkPast(t, now time.Time, input string) (time.Time, error) {
	if t.After(now.Add(futureSlack)) {
		return time.Time{}, leaguedomain.Invalid("played-at time %q is in the future", input)
	}
	return t, nil
}
