package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/homematch/assistant-api/internal/domain/delivery"
)

const channelPrefix = "conversation:"

// RedisBroadcaster publishes conversation events over Redis pub/sub. Gateway
// instances holding the websocket connections subscribe to the conversation
// channel and fan out to clients.
type RedisBroadcaster struct {
	client *redis.Client
	log    zerolog.Logger
}

var _ delivery.Broadcaster = (*RedisBroadcaster)(nil)

func NewRedisBroadcaster(client *redis.Client, log zerolog.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{
		client: client,
		log:    log.With().Str("component", "broadcaster").Logger(),
	}
}

// Publish sends one event to the conversation channel.
func (b *RedisBroadcaster) Publish(ctx context.Context, conversationID string, ev delivery.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if err := b.client.Publish(ctx, channelPrefix+conversationID, payload).Err(); err != nil {
		return fmt.Errorf("publish %s to %s: %w", ev.Type, conversationID, err)
	}
	return nil
}
