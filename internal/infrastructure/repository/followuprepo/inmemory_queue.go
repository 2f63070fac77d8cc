package followuprepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/homematch/assistant-api/internal/domain/followup"
)

// InMemoryQueue is a thread-safe follow-up queue useful for demos/tests.
type InMemoryQueue struct {
	mu      sync.Mutex
	tasks   map[string]followup.Task
	status  map[string]followup.Status
	claimed map[string]time.Time
}

var _ followup.Queue = (*InMemoryQueue)(nil)

// NewInMemoryQueue creates an empty in-memory queue.
func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		tasks:   make(map[string]followup.Task),
		status:  make(map[string]followup.Status),
		claimed: make(map[string]time.Time),
	}
}

func (q *InMemoryQueue) Enqueue(_ context.Context, task *followup.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if task.CreatedAt.IsZero() {
		task.CreatedAt = time.Now()
	}
	q.tasks[task.PublicID] = *task
	q.status[task.PublicID] = followup.StatusPending
	return nil
}

func (q *InMemoryQueue) DequeueDue(_ context.Context, now time.Time, limit int) ([]followup.Task, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []followup.Task
	for id, task := range q.tasks {
		if q.status[id] == followup.StatusPending && !task.ScheduledFor.After(now) {
			due = append(due, task)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].ScheduledFor.Before(due[j].ScheduledFor) })
	if len(due) > limit {
		due = due[:limit]
	}
	for _, task := range due {
		q.status[task.PublicID] = followup.StatusInProgress
		q.claimed[task.PublicID] = now
	}
	return due, nil
}

func (q *InMemoryQueue) RequeueStale(_ context.Context, olderThan time.Time) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	requeued := 0
	for id, claimedAt := range q.claimed {
		if q.status[id] == followup.StatusInProgress && claimedAt.Before(olderThan) {
			q.status[id] = followup.StatusPending
			delete(q.claimed, id)
			requeued++
		}
	}
	return requeued, nil
}

func (q *InMemoryQueue) MarkCompleted(_ context.Context, taskID string) error {
	return q.mark(taskID, followup.StatusCompleted)
}

func (q *InMemoryQueue) MarkSkipped(_ context.Context, taskID string) error {
	return q.mark(taskID, followup.StatusSkipped)
}

func (q *InMemoryQueue) MarkFailed(_ context.Context, taskID string) error {
	return q.mark(taskID, followup.StatusFailed)
}

// Status reports a task's lifecycle state, for tests.
func (q *InMemoryQueue) Status(taskID string) followup.Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.status[taskID]
}

func (q *InMemoryQueue) mark(taskID string, status followup.Status) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if _, ok := q.tasks[taskID]; !ok {
		return fmt.Errorf("followup task not found: %s", taskID)
	}
	q.status[taskID] = status
	return nil
}
