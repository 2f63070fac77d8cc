package realtime

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/homematch/assistant-api/internal/domain/delivery"
)

// NoopBroadcaster drops events. Used when no Redis is configured; messages
// are still persisted and reachable through the HTTP API.
type NoopBroadcaster struct {
	log zerolog.Logger
}

var _ delivery.Broadcaster = (*NoopBroadcaster)(nil)

func NewNoopBroadcaster(log zerolog.Logger) *NoopBroadcaster {
	return &NoopBroadcaster{log: log.With().Str("component", "broadcaster").Logger()}
}

func (b *NoopBroadcaster) Publish(_ context.Context, conversationID string, ev delivery.Event) error {
	b.log.Debug().
		Str("conversation_id", conversationID).
		Str("event", string(ev.Type)).
		Msg("event dropped, realtime delivery disabled")
	return nil
}
