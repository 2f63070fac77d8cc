package entities

import (
	"time"

	"github.com/homematch/assistant-api/internal/domain/conversation"
)

// UserProfile represents the database schema for marketplace users as seen
// by the assistant.
type UserProfile struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`

	UserID             string  `gorm:"type:varchar(64);uniqueIndex;not null"`
	Role               string  `gorm:"type:varchar(20);not null;default:'tenant'"`
	AccountAgeDays     int     `gorm:"not null;default:0"`
	RecentViews        int     `gorm:"not null;default:0"`
	RecentApplications int     `gorm:"not null;default:0"`
	RecentMessages     int     `gorm:"not null;default:0"`
	Preferences        JSONMap `gorm:"type:jsonb"`
}

// TableName specifies the table name for UserProfile.
func (UserProfile) TableName() string {
	return "user_profiles"
}

// EtoD converts database entity to domain model
func (p *UserProfile) EtoD() conversation.UserProfile {
	preferences := make(map[string]string)
	if p.Preferences != nil {
		preferences = p.Preferences
	}
	return conversation.UserProfile{
		ID:                 p.UserID,
		Role:               p.Role,
		AccountAgeDays:     p.AccountAgeDays,
		RecentViews:        p.RecentViews,
		RecentApplications: p.RecentApplications,
		RecentMessages:     p.RecentMessages,
		Preferences:        preferences,
	}
}
