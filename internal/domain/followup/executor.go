package followup

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/domain/delivery"
	"github.com/homematch/assistant-api/internal/infrastructure/metrics"
	"github.com/homematch/assistant-api/internal/utils/idgen"
)

const (
	dequeueBatchSize = 20

	// staleClaimAge bounds how long a claim may sit in_progress before it is
	// treated as abandoned. Sweeps run every minute, so any claim this old
	// belongs to an executor that died mid-batch.
	staleClaimAge = 10 * time.Minute
)

// Executor drains due follow-up tasks, re-checks that each one is still
// worth sending, and delivers the re-engagement message. A task is skipped
// when the user came back on their own after it was scheduled.
type Executor struct {
	queue       Queue
	repo        conversation.Repository
	broadcaster delivery.Broadcaster
	botUserID   string
	log         zerolog.Logger
}

func NewExecutor(queue Queue, repo conversation.Repository, broadcaster delivery.Broadcaster, botUserID string, log zerolog.Logger) *Executor {
	return &Executor{
		queue:       queue,
		repo:        repo,
		broadcaster: broadcaster,
		botUserID:   botUserID,
		log:         log.With().Str("component", "followup-executor").Logger(),
	}
}

// RunDue processes every task due at now. Individual task failures are
// logged and marked, never propagated: one broken task must not wedge the
// rest of the batch.
func (e *Executor) RunDue(ctx context.Context, now time.Time) {
	requeued, err := e.queue.RequeueStale(ctx, now.Add(-staleClaimAge))
	if err != nil {
		e.log.Error().Err(err).Msg("requeue stale followup claims")
	} else if requeued > 0 {
		e.log.Warn().Int("count", requeued).Msg("re-pended abandoned followup claims")
	}

	tasks, err := e.queue.DequeueDue(ctx, now, dequeueBatchSize)
	if err != nil {
		e.log.Error().Err(err).Msg("dequeue due followups")
		return
	}

	for _, task := range tasks {
		if err := e.execute(ctx, task); err != nil {
			e.log.Error().Err(err).
				Str("task_id", task.PublicID).
				Str("conversation_id", task.ConversationID).
				Msg("followup execution failed")
			if markErr := e.queue.MarkFailed(ctx, task.PublicID); markErr != nil {
				e.log.Error().Err(markErr).Str("task_id", task.PublicID).Msg("mark followup failed")
			}
			metrics.FollowupsTotal.WithLabelValues(string(task.Kind), "failed").Inc()
		}
	}
}

func (e *Executor) execute(ctx context.Context, task Task) error {
	skip, err := e.shouldSkip(ctx, task)
	if err != nil {
		return err
	}
	if skip {
		if err := e.queue.MarkSkipped(ctx, task.PublicID); err != nil {
			return err
		}
		metrics.FollowupsTotal.WithLabelValues(string(task.Kind), "skipped").Inc()
		e.log.Info().
			Str("task_id", task.PublicID).
			Str("conversation_id", task.ConversationID).
			Msg("followup skipped, user already re-engaged")
		return nil
	}

	now := time.Now()
	msg := &conversation.Message{
		PublicID:       idgen.MustGenerateSecureID("msg", 16),
		ConversationID: task.ConversationID,
		SenderRole:     conversation.RoleAssistant,
		SenderID:       e.botUserID,
		Content:        reengagementText(task.Kind),
		MessageType:    conversation.MessageTypeText,
		Metadata: map[string]any{
			"type":          "followup",
			"followup_kind": string(task.Kind),
			"followup_task": task.PublicID,
			"generated_at":  now.Format(time.RFC3339),
		},
		CreatedAt: now,
	}
	if err := e.repo.AppendMessage(ctx, msg); err != nil {
		return err
	}
	if err := e.broadcaster.Publish(ctx, task.ConversationID, delivery.NewFollowupEvent(msg, string(task.Kind))); err != nil {
		// Message is persisted, only live delivery failed. Clients pick it
		// up on their next fetch.
		e.log.Warn().Err(err).Str("conversation_id", task.ConversationID).Msg("followup broadcast failed")
	}

	if err := e.queue.MarkCompleted(ctx, task.PublicID); err != nil {
		return err
	}
	metrics.FollowupsTotal.WithLabelValues(string(task.Kind), "completed").Inc()
	return nil
}

// shouldSkip re-checks conversation state at execution time. The schedule
// decision is stale by days; a nudge only goes out when the user has been
// silent and inactive since it was queued.
func (e *Executor) shouldSkip(ctx context.Context, task Task) (bool, error) {
	last, err := e.repo.LastMessageByRole(ctx, task.ConversationID, conversation.RoleUser)
	if err != nil {
		return false, err
	}
	if last != nil && last.CreatedAt.After(task.CreatedAt) {
		return true, nil
	}

	active, err := e.repo.HasUserActivitySince(ctx, task.ConversationID, task.UserID, task.CreatedAt)
	if err != nil {
		return false, err
	}
	return active, nil
}

func reengagementText(kind Kind) string {
	switch kind {
	case KindSearchNudge:
		return "Hi again! A few new listings matching your search just went live. Want me to send over the highlights?"
	case KindApplicationCheck:
		return "Just checking in on your application. Is there anything you need help with, like documents or next steps?"
	case KindMaintenanceCheck:
		return "Following up on your maintenance request. Has the issue been resolved, or should I escalate it?"
	default:
		return "Just checking in. Is there anything I can help you with?"
	}
}
