package entities

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"

	"github.com/homematch/assistant-api/internal/domain/conversation"
)

// Message represents the database schema for conversation messages.
type Message struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"autoCreateTime;index:idx_message_conversation_created"`

	PublicID       string         `gorm:"type:varchar(50);uniqueIndex;not null"`
	ConversationID string         `gorm:"type:varchar(50);index:idx_message_conversation_created;not null"`
	SenderRole     string         `gorm:"type:varchar(20);index;not null"`
	SenderID       string         `gorm:"type:varchar(64);not null"`
	Content        string         `gorm:"type:text;not null"`
	MessageType    string         `gorm:"type:varchar(20);not null;default:'text'"`
	Metadata       datatypes.JSON `gorm:"type:jsonb"`
}

// TableName specifies the table name for Message.
func (Message) TableName() string {
	return "messages"
}

// EtoD converts database entity to domain model
func (m *Message) EtoD() (*conversation.Message, error) {
	var metadata map[string]any
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &metadata); err != nil {
			return nil, err
		}
	}

	return &conversation.Message{
		ID:             m.ID,
		PublicID:       m.PublicID,
		ConversationID: m.ConversationID,
		SenderRole:     conversation.Role(m.SenderRole),
		SenderID:       m.SenderID,
		Content:        m.Content,
		MessageType:    m.MessageType,
		Metadata:       metadata,
		CreatedAt:      m.CreatedAt,
	}, nil
}

// NewSchemaMessage creates a database entity from domain model
func NewSchemaMessage(m *conversation.Message) (*Message, error) {
	var metadata datatypes.JSON
	if len(m.Metadata) > 0 {
		raw, err := json.Marshal(m.Metadata)
		if err != nil {
			return nil, err
		}
		metadata = raw
	}

	return &Message{
		ID:             m.ID,
		PublicID:       m.PublicID,
		ConversationID: m.ConversationID,
		SenderRole:     string(m.SenderRole),
		SenderID:       m.SenderID,
		Content:        m.Content,
		MessageType:    m.MessageType,
		Metadata:       metadata,
		CreatedAt:      m.CreatedAt,
	}, nil
}
