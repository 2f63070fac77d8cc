package handlers

import (
	"context"

	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/domain/engagement"
)

// HandoffHandler exposes the engagement analyzer's handoff decision.
type HandoffHandler struct {
	repo     conversation.Repository
	analyzer *engagement.Analyzer
}

// NewHandoffHandler wires dependencies for handoff routes.
func NewHandoffHandler(repo conversation.Repository, analyzer *engagement.Analyzer) *HandoffHandler {
	return &HandoffHandler{
		repo:     repo,
		analyzer: analyzer,
	}
}

// Evaluate recomputes the handoff signal for the conversation.
func (h *HandoffHandler) Evaluate(ctx context.Context, conversationID string) (engagement.HandoffSignal, error) {
	conv, err := h.repo.FindByPublicID(ctx, conversationID)
	if err != nil {
		return engagement.HandoffSignal{}, err
	}
	return h.analyzer.HandoffSignal(ctx, conv)
}
