package followuprepo

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/homematch/assistant-api/internal/domain/followup"
	"github.com/homematch/assistant-api/internal/infrastructure/database/entities"
)

// PostgresQueue implements followup.Queue on the followup_tasks table.
// DequeueDue claims rows with FOR UPDATE SKIP LOCKED so concurrent executor
// instances never pick up the same task.
type PostgresQueue struct {
	db  *gorm.DB
	log zerolog.Logger
}

var _ followup.Queue = (*PostgresQueue)(nil)

// NewPostgresQueue creates a new PostgreSQL-backed follow-up queue.
func NewPostgresQueue(db *gorm.DB, log zerolog.Logger) *PostgresQueue {
	return &PostgresQueue{
		db:  db,
		log: log.With().Str("component", "followup-queue").Logger(),
	}
}

// Enqueue stores a new pending task.
func (q *PostgresQueue) Enqueue(ctx context.Context, task *followup.Task) error {
	record := entities.NewSchemaFollowupTask(task)
	if err := q.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("enqueue followup: %w", err)
	}
	task.ID = record.ID
	task.CreatedAt = record.CreatedAt
	return nil
}

// DequeueDue claims up to limit due pending tasks. Claimed rows move to
// in_progress inside the same transaction that locked them.
func (q *PostgresQueue) DequeueDue(ctx context.Context, now time.Time, limit int) ([]followup.Task, error) {
	var claimed []entities.FollowupTask

	err := q.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Raw("SELECT * FROM followup_tasks WHERE status = ? AND scheduled_for <= ? ORDER BY scheduled_for ASC LIMIT ? FOR UPDATE SKIP LOCKED",
				string(followup.StatusPending), now, limit).
			Scan(&claimed).Error; err != nil {
			return err
		}
		if len(claimed) == 0 {
			return nil
		}

		ids := make([]uint, len(claimed))
		for i, task := range claimed {
			ids[i] = task.ID
		}
		return tx.Model(&entities.FollowupTask{}).
			Where("id IN ?", ids).
			Update("status", string(followup.StatusInProgress)).Error
	})
	if err != nil {
		return nil, fmt.Errorf("dequeue due followups: %w", err)
	}

	tasks := make([]followup.Task, len(claimed))
	for i, record := range claimed {
		tasks[i] = record.EtoD()
	}
	return tasks, nil
}

// RequeueStale returns abandoned claims to pending. The claim update bumps
// updated_at, so only claims older than olderThan match; a live executor
// finalizes its batch well inside that window.
func (q *PostgresQueue) RequeueStale(ctx context.Context, olderThan time.Time) (int, error) {
	result := q.db.WithContext(ctx).
		Model(&entities.FollowupTask{}).
		Where("status = ? AND updated_at < ?", string(followup.StatusInProgress), olderThan).
		Update("status", string(followup.StatusPending))
	if result.Error != nil {
		return 0, fmt.Errorf("requeue stale followups: %w", result.Error)
	}
	return int(result.RowsAffected), nil
}

// MarkCompleted finalizes a delivered task.
func (q *PostgresQueue) MarkCompleted(ctx context.Context, taskID string) error {
	return q.mark(ctx, taskID, followup.StatusCompleted)
}

// MarkSkipped finalizes a task whose user re-engaged on their own.
func (q *PostgresQueue) MarkSkipped(ctx context.Context, taskID string) error {
	return q.mark(ctx, taskID, followup.StatusSkipped)
}

// MarkFailed finalizes a task that could not be delivered.
func (q *PostgresQueue) MarkFailed(ctx context.Context, taskID string) error {
	return q.mark(ctx, taskID, followup.StatusFailed)
}

func (q *PostgresQueue) mark(ctx context.Context, taskID string, status followup.Status) error {
	result := q.db.WithContext(ctx).
		Model(&entities.FollowupTask{}).
		Where("public_id = ?", taskID).
		Update("status", string(status))
	if result.Error != nil {
		return fmt.Errorf("mark followup %s %s: %w", taskID, status, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("followup task not found: %s", taskID)
	}
	return nil
}
