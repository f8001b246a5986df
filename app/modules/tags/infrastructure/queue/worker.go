package tagqueue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tagservice "github.com/Black-And-White-Club/frolf-club/app/modules/tags/application"
	"github.com/Black-And-White-Club/frolf-club/pkg/eventbus"
	"github.com/riverqueue/river"
)

// ExpiredLister is the read-only slice of the tag service the sweep needs.
type ExpiredLister interface {
	ExpiredHolders(ctx context.Context) ([]tagservice.ExpiredHolder, error)
}

// DefendSweepWorker announces expired holders. It never changes the ladder; an
// admin still has to drop them.
type DefendSweepWorker struct {
	river.WorkerDefaults[DefendSweepJob]

	tags   ExpiredLister
	bus    eventbus.EventBus
	logger *slog.Logger
	now    func() time.Time

	mu   sync.Mutex
	last map[string]string
}

func NewDefendSweepWorker(tags ExpiredLister, bus eventbus.EventBus, logger *slog.Logger) *DefendSweepWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &DefendSweepWorker{
		tags:   tags,
		bus:    bus,
		logger: logger,
		now:    time.Now,
		last:   map[string]string{},
	}
}

func (w *DefendSweepWorker) Work(ctx context.Context, job *river.Job[DefendSweepJob]) error {
	_, err := w.Sweep(ctx, job.Args.LeagueID)
	return err
}

// Timeout bounds one sweep.
func (w *DefendSweepWorker) Timeout(*river.Job[DefendSweepJob]) time.Duration {
	return 30 * time.Second
}

// Sweep publishes a notice when the set of expired holders differs from the last
// one announced. It reports whether a notice went out.
func (w *DefendSweepWorker) Sweep(ctx context.Context, leagueID string) (bool, error) {
	holders, err := w.tags.ExpiredHolders(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list expired holders: %w", err)
	}

	key := fingerprint(holders)
	w.mu.Lock()
	unchanged := w.last[leagueID] == key
	w.last[leagueID] = key
	w.mu.Unlock()
	if unchanged || len(holders) == 0 {
		return false, nil
	}

	msg, err := eventbus.NewJSONMessage(DefendExpiredNotice{
		LeagueID:  leagueID,
		Holders:   holders,
		CheckedAt: w.now().UTC(),
	})
	if err != nil {
		return false, err
	}
	if err := eventbus.PublishWithLeagueScope(w.bus, eventbus.DefendExpiredV1, leagueID, msg); err != nil {
		w.mu.Lock()
		delete(w.last, leagueID)
		w.mu.Unlock()
		return false, err
	}

	w.logger.InfoContext(ctx, "Announced expired defend holders",
		slog.String("league_id", leagueID),
		slog.Int("count", len(holders)),
	)
	return true, nil
}

func fingerprint(holders []tagservice.ExpiredHolder) string {
	var b strings.Builder
	for _, h := range holders {
		fmt.Fprintf(&b, "%d:%s:%d;", h.Position, h.PlayerID, h.Deadline.Unix())
	}
	return b.String()
}
