package entities

import "time"

// ActivityEvent records marketplace actions used by the follow-up executor
// to tell whether a user re-engaged on their own.
type ActivityEvent struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_activity_user_created"`

	UserID         string `gorm:"type:varchar(64);index:idx_activity_user_created;not null"`
	ConversationID string `gorm:"type:varchar(50);index"`
	Kind           string `gorm:"type:varchar(30);not null"`
}

// TableName specifies the table name for ActivityEvent.
func (ActivityEvent) TableName() string {
	return "activity_events"
}
