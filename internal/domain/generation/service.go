package generation

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/domain/intent"
	"github.com/homematch/assistant-api/internal/infrastructure/metrics"
)

// Options carries the generator's operational bounds.
type Options struct {
	ProviderTimeout time.Duration
	MaxPromptChars  int
	MinReplyChars   int
	MaxReplyChars   int
}

// Service produces a reply for every query: read-through cache, then the
// ordered provider chain, then the deterministic synthesizer. Generate never
// returns an error for provider-related reasons; every external call is
// expected to fail.
type Service struct {
	clients []ProviderClient
	cache   Cache
	opts    Options
	log     zerolog.Logger
}

// NewService wires the generator. clients is the fixed fallback order;
// cache may not be nil (use the in-memory cache when Redis is absent).
func NewService(clients []ProviderClient, cache Cache, opts Options, log zerolog.Logger) *Service {
	if opts.ProviderTimeout <= 0 {
		opts.ProviderTimeout = 10 * time.Second
	}
	if opts.MinReplyChars <= 0 {
		opts.MinReplyChars = 10
	}
	if opts.MaxReplyChars <= 0 {
		opts.MaxReplyChars = 2000
	}
	return &Service{
		clients: clients,
		cache:   cache,
		opts:    opts,
		log:     log.With().Str("component", "response-generator").Logger(),
	}
}

// Generate returns a non-empty reply for the query. Cache hits short-circuit
// the provider chain entirely; a successful provider reply is written to the
// cache before returning.
func (s *Service) Generate(
	ctx context.Context,
	profile conversation.UserProfile,
	query string,
	conv *conversation.Conversation,
	convCtx conversation.Context,
	res intent.Result,
) Reply {
	key := CacheKey(profile.ID, query, conv.PublicID)

	if cached, err := s.cache.Get(ctx, key); err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conv.PublicID).Msg("reply cache read failed")
	} else if cached != nil {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		cached.Cached = true
		return *cached
	}
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

	prompt := BuildPrompt(convCtx, query, s.opts.MaxPromptChars)

	for _, client := range s.clients {
		if !client.Configured() {
			continue
		}

		text, err := s.invoke(ctx, client, prompt)
		if err != nil {
			metrics.ProviderCallsTotal.WithLabelValues(string(client.Vendor()), "error").Inc()
			s.log.Warn().
				Err(err).
				Str("provider", string(client.Vendor())).
				Str("conversation_id", conv.PublicID).
				Msg("provider failed, advancing to next")
			continue
		}

		if err := validateReply(text, s.opts.MinReplyChars, s.opts.MaxReplyChars); err != nil {
			metrics.ProviderCallsTotal.WithLabelValues(string(client.Vendor()), "invalid").Inc()
			s.log.Warn().
				Err(err).
				Str("provider", string(client.Vendor())).
				Str("conversation_id", conv.PublicID).
				Msg("provider reply rejected by validation")
			continue
		}

		metrics.ProviderCallsTotal.WithLabelValues(string(client.Vendor()), "ok").Inc()
		metrics.RepliesTotal.WithLabelValues(string(SourceGenerated)).Inc()

		reply := Reply{
			Text:   text,
			Source: SourceGenerated,
			Metadata: map[string]any{
				"provider": string(client.Vendor()),
			},
		}
		if err := s.cache.Set(ctx, key, reply); err != nil {
			s.log.Warn().Err(err).Str("conversation_id", conv.PublicID).Msg("reply cache write failed")
		}
		return reply
	}

	metrics.RepliesTotal.WithLabelValues(string(SourceFallback)).Inc()
	return Reply{
		Text:   Synthesize(res, convCtx),
		Source: SourceFallback,
		Metadata: map[string]any{
			"intent": string(res.Label),
		},
	}
}

// invoke runs one provider call under the short timeout, converting panics
// in client code into ordinary errors so the chain keeps advancing.
func (s *Service) invoke(ctx context.Context, client ProviderClient, prompt Prompt) (text string, err error) {
	callCtx, cancel := context.WithTimeout(ctx, s.opts.ProviderTimeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("provider panic: %v", r)
		}
	}()

	start := time.Now()
	text, err = client.Complete(callCtx, prompt)
	metrics.ProviderDuration.WithLabelValues(string(client.Vendor())).Observe(time.Since(start).Seconds())
	return text, err
}
