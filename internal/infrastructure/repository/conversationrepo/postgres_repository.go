package conversationrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/infrastructure/database/entities"
)

// PostgresRepository persists conversations via PostgreSQL using GORM.
type PostgresRepository struct {
	db *gorm.DB
}

var _ conversation.Repository = (*PostgresRepository)(nil)
var _ conversation.ProfileReader = (*PostgresRepository)(nil)

// NewPostgresRepository creates a repository backed by the provided DB.
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindByPublicID loads a conversation with its anchored listing, if any.
func (r *PostgresRepository) FindByPublicID(ctx context.Context, publicID string) (*conversation.Conversation, error) {
	var record entities.Conversation
	err := r.db.WithContext(ctx).
		Preload("Listing").
		Where("public_id = ?", publicID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("conversation not found: %s", publicID)
		}
		return nil, fmt.Errorf("find conversation %s: %w", publicID, err)
	}
	return record.EtoD(), nil
}

// RecentMessages returns up to limit newest messages, ordered oldest first.
func (r *PostgresRepository) RecentMessages(ctx context.Context, conversationID string, limit int) ([]conversation.Message, error) {
	var records []entities.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load messages for %s: %w", conversationID, err)
	}

	// Reverse: query returns newest first, callers expect chronological order.
	messages := make([]conversation.Message, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		msg, err := records[i].EtoD()
		if err != nil {
			return nil, fmt.Errorf("decode message %s: %w", records[i].PublicID, err)
		}
		messages = append(messages, *msg)
	}
	return messages, nil
}

// AppendMessage stores a new message and backfills generated fields.
func (r *PostgresRepository) AppendMessage(ctx context.Context, msg *conversation.Message) error {
	record, err := entities.NewSchemaMessage(msg)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("append message to %s: %w", msg.ConversationID, err)
	}
	msg.ID = record.ID
	msg.CreatedAt = record.CreatedAt
	return nil
}

// LastMessageByRole returns the newest message sent by the given role, or
// nil when the role never spoke in the conversation.
func (r *PostgresRepository) LastMessageByRole(ctx context.Context, conversationID string, role conversation.Role) (*conversation.Message, error) {
	var record entities.Message
	err := r.db.WithContext(ctx).
		Where("conversation_id = ? AND sender_role = ?", conversationID, string(role)).
		Order("created_at DESC").
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("last %s message for %s: %w", role, conversationID, err)
	}
	return record.EtoD()
}

// HasUserActivitySince reports whether the user produced any marketplace
// activity after the given time. Events tied to another conversation still
// count: the user being active anywhere means a nudge is unwanted.
func (r *PostgresRepository) HasUserActivitySince(ctx context.Context, conversationID, userID string, since time.Time) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&entities.ActivityEvent{}).
		Where("user_id = ? AND created_at > ?", userID, since).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("activity check for %s: %w", userID, err)
	}
	return count > 0, nil
}

// Profile loads the marketplace profile for prompt personalization. Unknown
// users get a blank tenant profile rather than an error.
func (r *PostgresRepository) Profile(ctx context.Context, userID string) (conversation.UserProfile, error) {
	var record entities.UserProfile
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return conversation.UserProfile{ID: userID, Role: "tenant"}, nil
		}
		return conversation.UserProfile{}, fmt.Errorf("load profile %s: %w", userID, err)
	}
	return record.EtoD(), nil
}

// RecordActivity stores a marketplace activity event consumed by the
// follow-up skip check.
func (r *PostgresRepository) RecordActivity(ctx context.Context, conversationID, userID string, kind conversation.ActivityKind) error {
	record := entities.ActivityEvent{
		UserID:         userID,
		ConversationID: conversationID,
		Kind:           string(kind),
	}
	if err := r.db.WithContext(ctx).Create(&record).Error; err != nil {
		return fmt.Errorf("record activity for %s: %w", userID, err)
	}
	return nil
}
