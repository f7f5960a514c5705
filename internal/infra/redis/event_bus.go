package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"careerpath-service/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// EventBus fans team events out across instances over Redis pub/sub on
// team:{teamID}:events.
type EventBus struct {
	client *redis.Client
	buffer int
	log    zerolog.Logger
}

func NewEventBus(client *redis.Client, buffer int, log zerolog.Logger) *EventBus {
	if buffer <= 0 {
		buffer = 8
	}
	return &EventBus{
		client: client,
		buffer: buffer,
		log:    log.With().Str("component", "redis_event_bus").Logger(),
	}
}

func (b *EventBus) Publish(ctx context.Context, event domain.TeamEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode team event: %w", err)
	}
	if err := b.client.Publish(ctx, eventsChannel(event.TeamID), payload).Err(); err != nil {
		return fmt.Errorf("publish team event: %w", err)
	}
	return nil
}

// Subscribe returns once the subscription is active, so events published
// after it returns are delivered. The caller must invoke cancel.
func (b *EventBus) Subscribe(ctx context.Context, teamID string) (<-chan domain.TeamEvent, func(), error) {
	pubsub := b.client.Subscribe(ctx, eventsChannel(teamID))
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe team events: %w", err)
	}

	out := make(chan domain.TeamEvent, b.buffer)
	done := make(chan struct{})
	go func() {
		defer close(out)
		for msg := range pubsub.Channel() {
			var event domain.TeamEvent
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.log.Warn().Err(err).Str("team_id", teamID).Msg("dropping malformed team event")
				continue
			}
			select {
			case out <- event:
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			close(done)
			_ = pubsub.Close()
		})
	}
	return out, cancel, nil
}

func eventsChannel(teamID string) string {
	return "team:" + teamID + ":events"
}
