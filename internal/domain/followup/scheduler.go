package followup

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/domain/intent"
	"github.com/homematch/assistant-api/internal/infrastructure/metrics"
	"github.com/homematch/assistant-api/internal/utils/idgen"
)

// SchedulerConfig holds the per-scenario delays and the confidence gate.
type SchedulerConfig struct {
	ConfidenceThreshold float64
	SearchDelay         time.Duration
	ApplicationDelay    time.Duration
	MaintenanceDelay    time.Duration
}

// DefaultSchedulerConfig mirrors the production defaults.
func DefaultSchedulerConfig() SchedulerConfig {
	return SchedulerConfig{
		ConfidenceThreshold: 0.7,
		SearchDelay:         24 * time.Hour,
		ApplicationDelay:    72 * time.Hour,
		MaintenanceDelay:    48 * time.Hour,
	}
}

// Scheduler decides, after each classified message, whether a follow-up
// should be queued. Only a small allow-list of intents qualifies and only
// when classification was confident.
type Scheduler struct {
	queue Queue
	cfg   SchedulerConfig
	log   zerolog.Logger
}

func NewScheduler(queue Queue, cfg SchedulerConfig, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		queue: queue,
		cfg:   cfg,
		log:   log.With().Str("component", "followup-scheduler").Logger(),
	}
}

// MaybeSchedule queues a follow-up task when the classified intent qualifies.
// It returns the enqueued task, or nil when no follow-up applies. Queue
// failures are returned so the caller can log them; the chat reply itself
// never depends on this call.
func (s *Scheduler) MaybeSchedule(ctx context.Context, conv *conversation.Conversation, userID string, res intent.Result) (*Task, error) {
	kind, delay, ok := s.scenarioFor(res.Label)
	if !ok {
		return nil, nil
	}
	if res.Confidence <= s.cfg.ConfidenceThreshold {
		return nil, nil
	}

	task := &Task{
		PublicID:       idgen.MustGenerateSecureID("fut", 16),
		ConversationID: conv.PublicID,
		UserID:         userID,
		Kind:           kind,
		ScheduledFor:   time.Now().Add(delay),
		CreatedAt:      time.Now(),
	}
	if err := s.queue.Enqueue(ctx, task); err != nil {
		return nil, fmt.Errorf("enqueue followup for %s: %w", conv.PublicID, err)
	}

	metrics.FollowupsTotal.WithLabelValues(string(kind), "scheduled").Inc()
	s.log.Info().
		Str("conversation_id", conv.PublicID).
		Str("kind", string(kind)).
		Time("scheduled_for", task.ScheduledFor).
		Msg("followup scheduled")
	return task, nil
}

func (s *Scheduler) scenarioFor(label intent.Label) (Kind, time.Duration, bool) {
	switch label {
	case intent.LabelPropertySearch:
		return KindSearchNudge, s.cfg.SearchDelay, true
	case intent.LabelApplicationGuidance:
		return KindApplicationCheck, s.cfg.ApplicationDelay, true
	case intent.LabelMaintenanceFollowup:
		return KindMaintenanceCheck, s.cfg.MaintenanceDelay, true
	default:
		return "", 0, false
	}
}
