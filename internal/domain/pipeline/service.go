package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/domain/delivery"
	"github.com/homematch/assistant-api/internal/domain/engagement"
	"github.com/homematch/assistant-api/internal/domain/followup"
	"github.com/homematch/assistant-api/internal/domain/generation"
	"github.com/homematch/assistant-api/internal/domain/intent"
	"github.com/homematch/assistant-api/internal/infrastructure/metrics"
	"github.com/homematch/assistant-api/internal/utils/idgen"
)

const errorReplyText = "I'm having trouble responding right now. Please try again in a moment, or ask to speak with one of our agents."

// Job is one inbound user message awaiting an assistant response.
type Job struct {
	ConversationID string
	UserID         string
	Query          string
}

// Options holds the pipeline's pacing knobs.
type Options struct {
	BotUserID      string
	TypingPerChar  time.Duration
	TypingDelayCap time.Duration
}

// Service runs the full response pipeline for one inbound message: classify,
// aggregate context, generate, persist, analyze engagement, deliver, and
// maybe schedule a follow-up.
type Service struct {
	repo       conversation.Repository
	contexts   *conversation.ContextBuilder
	classifier *intent.Classifier
	generator  *generation.Service
	analyzer   *engagement.Analyzer
	scheduler  *followup.Scheduler
	broadcast  delivery.Broadcaster
	opts       Options
	log        zerolog.Logger

	// sleep is swapped out in tests so typing pauses don't slow the suite.
	sleep func(time.Duration)
}

func NewService(
	repo conversation.Repository,
	contexts *conversation.ContextBuilder,
	classifier *intent.Classifier,
	generator *generation.Service,
	analyzer *engagement.Analyzer,
	scheduler *followup.Scheduler,
	broadcast delivery.Broadcaster,
	opts Options,
	log zerolog.Logger,
) *Service {
	if opts.TypingPerChar <= 0 {
		opts.TypingPerChar = 30 * time.Millisecond
	}
	if opts.TypingDelayCap <= 0 {
		opts.TypingDelayCap = 3 * time.Second
	}
	return &Service{
		repo:       repo,
		contexts:   contexts,
		classifier: classifier,
		generator:  generator,
		analyzer:   analyzer,
		scheduler:  scheduler,
		broadcast:  broadcast,
		opts:       opts,
		log:        log.With().Str("component", "response-pipeline").Logger(),
		sleep:      time.Sleep,
	}
}

// Process handles one job end to end. It never returns an error to the
// caller: any failure is converted into a friendly assistant reply plus a
// bot_error event, so the conversation is never left hanging.
func (s *Service) Process(ctx context.Context, job Job) {
	start := time.Now()
	status := "ok"

	defer func() {
		if r := recover(); r != nil {
			status = "panic"
			s.log.Error().
				Interface("panic", r).
				Str("conversation_id", job.ConversationID).
				Msg("pipeline panicked")
			s.deliverErrorReply(ctx, job)
		}
		metrics.PipelineDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())
	}()

	if err := s.process(ctx, job); err != nil {
		status = "error"
		s.log.Error().
			Err(err).
			Str("conversation_id", job.ConversationID).
			Msg("pipeline failed")
		s.deliverErrorReply(ctx, job)
	}
}

func (s *Service) process(ctx context.Context, job Job) error {
	conv, err := s.repo.FindByPublicID(ctx, job.ConversationID)
	if err != nil {
		return fmt.Errorf("load conversation: %w", err)
	}

	if err := s.broadcast.Publish(ctx, conv.PublicID, delivery.NewTypingEvent(s.opts.BotUserID)); err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conv.PublicID).Msg("typing indicator failed")
	}

	convCtx, err := s.contexts.Build(ctx, job.UserID, conv)
	if err != nil {
		return fmt.Errorf("build context: %w", err)
	}

	res := s.classifier.Classify(job.Query, convCtx)

	genStart := time.Now()
	reply := s.generator.Generate(ctx, convCtx.Profile, job.Query, conv, convCtx, res)
	generationTime := time.Since(genStart)

	s.sleep(delivery.TypingDelay(len(reply.Text), s.opts.TypingPerChar, s.opts.TypingDelayCap))

	metadata := map[string]any{
		"intent":             string(res.Label),
		"confidence":         res.Confidence,
		"source":             string(reply.Source),
		"generation_time_ms": generationTime.Milliseconds(),
	}
	if len(res.Entities) > 0 {
		metadata["entities"] = res.Entities
	}
	for k, v := range reply.Metadata {
		metadata[k] = v
	}

	msg := &conversation.Message{
		PublicID:       idgen.MustGenerateSecureID("msg", 16),
		ConversationID: conv.PublicID,
		SenderRole:     conversation.RoleAssistant,
		SenderID:       s.opts.BotUserID,
		Content:        reply.Text,
		MessageType:    conversation.MessageTypeText,
		Metadata:       metadata,
		CreatedAt:      time.Now(),
	}
	if err := s.repo.AppendMessage(ctx, msg); err != nil {
		return fmt.Errorf("persist reply: %w", err)
	}

	signal, err := s.analyzer.HandoffSignal(ctx, conv)
	if err != nil {
		// Engagement analysis is advisory. The reply still goes out.
		s.log.Warn().Err(err).Str("conversation_id", conv.PublicID).Msg("handoff analysis failed")
	}

	if err := s.broadcast.Publish(ctx, conv.PublicID, delivery.NewBotResponseEvent(msg, res.Label, signal.ShouldHandoff)); err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conv.PublicID).Msg("reply broadcast failed")
	}

	if _, err := s.scheduler.MaybeSchedule(ctx, conv, job.UserID, res); err != nil {
		s.log.Warn().Err(err).Str("conversation_id", conv.PublicID).Msg("followup scheduling failed")
	}

	s.log.Info().
		Str("conversation_id", conv.PublicID).
		Str("intent", string(res.Label)).
		Float64("confidence", res.Confidence).
		Str("source", string(reply.Source)).
		Bool("cached", reply.Cached).
		Dur("generation_time", generationTime).
		Msg("reply delivered")
	return nil
}

// deliverErrorReply persists a friendly apology and raises a bot_error event
// so subscribed clients stop showing the typing indicator.
func (s *Service) deliverErrorReply(ctx context.Context, job Job) {
	msg := &conversation.Message{
		PublicID:       idgen.MustGenerateSecureID("msg", 16),
		ConversationID: job.ConversationID,
		SenderRole:     conversation.RoleAssistant,
		SenderID:       s.opts.BotUserID,
		Content:        errorReplyText,
		MessageType:    conversation.MessageTypeText,
		Metadata:       map[string]any{"source": "error"},
		CreatedAt:      time.Now(),
	}
	if err := s.repo.AppendMessage(ctx, msg); err != nil {
		s.log.Error().Err(err).Str("conversation_id", job.ConversationID).Msg("persist error reply failed")
	}
	if err := s.broadcast.Publish(ctx, job.ConversationID, delivery.NewBotErrorEvent(s.opts.BotUserID)); err != nil {
		s.log.Warn().Err(err).Str("conversation_id", job.ConversationID).Msg("bot_error broadcast failed")
	}
}
