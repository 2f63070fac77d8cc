package entities

import (
	"time"

	"github.com/homematch/assistant-api/internal/domain/followup"
)

// FollowupTask represents the database schema for scheduled re-engagement.
type FollowupTask struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	PublicID       string    `gorm:"type:varchar(50);uniqueIndex;not null"`
	ConversationID string    `gorm:"type:varchar(50);index;not null"`
	UserID         string    `gorm:"type:varchar(64);not null"`
	Kind           string    `gorm:"type:varchar(30);not null"`
	Status         string    `gorm:"type:varchar(20);index:idx_followup_status_due;not null;default:'pending'"`
	ScheduledFor   time.Time `gorm:"index:idx_followup_status_due;not null"`
}

// TableName specifies the table name for FollowupTask.
func (FollowupTask) TableName() string {
	return "followup_tasks"
}

// EtoD converts database entity to domain model
func (t *FollowupTask) EtoD() followup.Task {
	return followup.Task{
		ID:             t.ID,
		PublicID:       t.PublicID,
		ConversationID: t.ConversationID,
		UserID:         t.UserID,
		Kind:           followup.Kind(t.Kind),
		ScheduledFor:   t.ScheduledFor,
		CreatedAt:      t.CreatedAt,
	}
}

// NewSchemaFollowupTask creates a database entity from domain model
func NewSchemaFollowupTask(t *followup.Task) *FollowupTask {
	return &FollowupTask{
		ID:             t.ID,
		PublicID:       t.PublicID,
		ConversationID: t.ConversationID,
		UserID:         t.UserID,
		Kind:           string(t.Kind),
		Status:         string(followup.StatusPending),
		ScheduledFor:   t.ScheduledFor,
		CreatedAt:      t.CreatedAt,
	}
}
