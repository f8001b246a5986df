package leaguedb

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	leaguedomain "github.com/Black-And-White-Club/frolf-club/app/modules/league/domain"
	"github.com/Black-And-White-Club/frolf-club/pkg/eventbus"
)

// PublishingStore decorates a Store and broadcasts every written snapshot on
// league.updated.v1.<leagueID>.
type PublishingStore struct {
	Store
	bus      eventbus.EventBus
	leagueID string
	logger   *slog.Logger
}

// NewPublishingStore wraps inner.
func NewPublishingStore(inner Store, bus eventbus.EventBus, leagueID string, logger *slog.Logger) *PublishingStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PublishingStore{Store: inner, bus: bus, leagueID: leagueID, logger: logger}
}

func (p *PublishingStore) Commit(ctx context.Context, patch leaguedomain.Patch) (leaguedomain.League, error) {
	l, err := p.Store.Commit(ctx, patch)
	if err != nil {
		return l, err
	}
	if !patch.Empty() {
		p.publish(ctx, l)
	}
	return l, nil
}

func (p *PublishingStore) Transact(ctx context.Context, fn TxFunc) (leaguedomain.League, error) {
	wrote := false
	l, err := p.Store.Transact(ctx, func(snapshot leaguedomain.League) (leaguedomain.Patch, error) {
		patch, err := fn(snapshot)
		wrote = err == nil && !patch.Empty()
		return patch, err
	})
	if err != nil {
		return l, err
	}
	if wrote {
		p.publish(ctx, l)
	}
	return l, nil
}

// publish never fails the write; the document is already committed.
func (p *PublishingStore) publish(ctx context.Context, l leaguedomain.League) {
	msg, err := eventbus.NewJSONMessage(l)
	if err == nil {
		err = eventbus.PublishWithLeagueScope(p.bus, eventbus.LeagueUpdatedV1, p.leagueID, msg)
	}
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to publish league snapshot",
			slog.String("league_id", p.leagueID),
			slog.Any("error", err),
		)
	}
}

// Subscribe calls onChange with every published snapshot until ctx ends or the
// returned cancel func is called.
func (p *PublishingStore) Subscribe(ctx context.Context, onChange func(leaguedomain.League)) (func(), error) {
	ctx, cancel := context.WithCancel(ctx)
	topic := eventbus.FormatLeagueScopedTopic(eventbus.LeagueUpdatedV1, p.leagueID)
	messages, err := p.bus.Subscribe(ctx, topic)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("failed to subscribe to league updates: %w", err)
	}

	go func() {
		for msg := range messages {
			var l leaguedomain.League
			if err := json.Unmarshal(msg.Payload, &l); err != nil {
				p.logger.Warn("Dropping undecodable league snapshot",
					slog.String("message_id", msg.UUID),
					slog.Any("error", err),
				)
				msg.Ack()
				continue
			}
			onChange(l.Normalize())
			msg.Ack()
		}
	}()

	return cancel, nil
}
