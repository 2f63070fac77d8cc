package conversation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// ContextBuilder assembles the ephemeral Context consumed by the intent
// classifier and the response generator.
type ContextBuilder struct {
	repo     Repository
	profiles ProfileReader
	window   int
	log      zerolog.Logger
}

// NewContextBuilder wires the builder with its collaborators. window bounds
// how many recent turns are pulled into the prompt context.
func NewContextBuilder(repo Repository, profiles ProfileReader, window int, log zerolog.Logger) *ContextBuilder {
	if window <= 0 {
		window = 10
	}
	return &ContextBuilder{
		repo:     repo,
		profiles: profiles,
		window:   window,
		log:      log.With().Str("component", "context-builder").Logger(),
	}
}

// Build assembles the conversation context for one pipeline invocation.
// A conversation with zero prior turns or without a subject listing is a
// valid state, not an error.
func (b *ContextBuilder) Build(ctx context.Context, userID string, conv *Conversation) (Context, error) {
	profile, err := b.profiles.Profile(ctx, userID)
	if err != nil {
		return Context{}, fmt.Errorf("load profile %s: %w", userID, err)
	}

	messages, err := b.repo.RecentMessages(ctx, conv.PublicID, b.window)
	if err != nil {
		return Context{}, fmt.Errorf("load recent messages %s: %w", conv.PublicID, err)
	}

	turns := make([]Turn, 0, len(messages))
	for _, msg := range messages {
		turns = append(turns, Turn{
			Role:      msg.SenderRole,
			Text:      msg.Content,
			Timestamp: msg.CreatedAt,
			Metadata:  msg.Metadata,
		})
	}

	b.log.Debug().
		Str("conversation_id", conv.PublicID).
		Int("turns", len(turns)).
		Bool("has_listing", conv.Listing != nil).
		Msg("built conversation context")

	return Context{
		Turns:   turns,
		Listing: conv.Listing,
		Profile: profile,
	}, nil
}
