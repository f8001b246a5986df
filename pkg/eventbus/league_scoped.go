package eventbus

import (
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

const (
	// LeagueUpdatedV1 carries the full league document after every write.
	LeagueUpdatedV1 = "league.updated.v1"
	// DefendExpiredV1 announces in-scope positions whose defend deadline has passed.
	DefendExpiredV1 = "tags.defend.expired.v1"
)

// PublishWithLeagueScope publishes msg on {baseTopic}.{leagueID}.
//
// Example:
//   - baseTopic: "league.updated.v1"
//   - leagueID: "default-league"
//   - result: "league.updated.v1.default-league"
func PublishWithLeagueScope(bus EventBus, baseTopic string, leagueID string, msg *message.Message) error {
	if leagueID == "" {
		return fmt.Errorf("leagueID cannot be empty for league-scoped publish")
	}
	return bus.Publish(FormatLeagueScopedTopic(baseTopic, leagueID), msg)
}

// FormatLeagueScopedTopic formats a topic with the league suffix without publishing.
func FormatLeagueScopedTopic(baseTopic string, leagueID string) string {
	return fmt.Sprintf("%s.%s", baseTopic, leagueID)
}

// NewJSONMessage marshals payload into a new message.
func NewJSONMessage(payload any) (*message.Message, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	msg := message.NewMessage(watermill.NewUUID(), b)
	msg.Metadata.Set("content_type", "application/json")
	return msg, nil
}
