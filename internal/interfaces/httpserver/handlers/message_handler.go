package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/domain/pipeline"
	"github.com/homematch/assistant-api/internal/utils/idgen"
)

// ErrBlankContent rejects messages with no usable text.
var ErrBlankContent = errors.New("message content is blank")

// MessageHandler ingests user messages and queues the response pipeline.
type MessageHandler struct {
	repo       conversation.Repository
	dispatcher *pipeline.Dispatcher
}

// NewMessageHandler wires dependencies for message routes.
func NewMessageHandler(repo conversation.Repository, dispatcher *pipeline.Dispatcher) *MessageHandler {
	return &MessageHandler{
		repo:       repo,
		dispatcher: dispatcher,
	}
}

// Ingest persists the user's message and dispatches response generation.
// The persisted message is returned immediately; the assistant reply arrives
// asynchronously over the realtime channel.
func (h *MessageHandler) Ingest(ctx context.Context, conversationID, senderID, content string) (*conversation.Message, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrBlankContent
	}

	conv, err := h.repo.FindByPublicID(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	msg := &conversation.Message{
		PublicID:       idgen.MustGenerateSecureID("msg", 16),
		ConversationID: conv.PublicID,
		SenderRole:     conversation.RoleUser,
		SenderID:       senderID,
		Content:        content,
		MessageType:    conversation.MessageTypeText,
		CreatedAt:      time.Now(),
	}
	if err := h.repo.AppendMessage(ctx, msg); err != nil {
		return nil, fmt.Errorf("persist user message: %w", err)
	}

	if err := h.dispatcher.Dispatch(pipeline.Job{
		ConversationID: conv.PublicID,
		UserID:         senderID,
		Query:          content,
	}); err != nil {
		return nil, err
	}
	return msg, nil
}
