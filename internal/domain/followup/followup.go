package followup

import (
	"context"
	"time"
)

// Kind identifies the re-engagement scenario a task was scheduled for.
type Kind string

const (
	KindSearchNudge      Kind = "search_nudge"
	KindApplicationCheck Kind = "application_check"
	KindMaintenanceCheck Kind = "maintenance_check"
)

// Status of a scheduled task. Tasks are single-shot: once resolved they are
// never picked up again.
type Status string

const (
	StatusPending Status = "pending"
	// StatusInProgress marks a claimed task. Claims abandoned by a crashed
	// executor are returned to pending by RequeueStale.
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusSkipped    Status = "skipped"
	StatusFailed     Status = "failed"
)

// Task is one pending follow-up for a conversation.
type Task struct {
	ID             uint      `json:"-"`
	PublicID       string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	UserID         string    `json:"user_id"`
	Kind           Kind      `json:"kind"`
	ScheduledFor   time.Time `json:"scheduled_for"`
	CreatedAt      time.Time `json:"created_at"`
}

// Queue is the durable follow-up store. DequeueDue claims due pending tasks
// so that concurrent executors never double-deliver.
type Queue interface {
	Enqueue(ctx context.Context, task *Task) error
	DequeueDue(ctx context.Context, now time.Time, limit int) ([]Task, error)
	// RequeueStale returns in_progress tasks claimed before olderThan to
	// pending and reports how many were re-pended.
	RequeueStale(ctx context.Context, olderThan time.Time) (int, error)
	MarkCompleted(ctx context.Context, taskID string) error
	MarkSkipped(ctx context.Context, taskID string) error
	MarkFailed(ctx context.Context, taskID string) error
}
