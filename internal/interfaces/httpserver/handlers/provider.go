package handlers

import (
	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/domain/engagement"
	"github.com/homematch/assistant-api/internal/domain/pipeline"
)

// Provider wires all HTTP handlers for dependency injection.
type Provider struct {
	Message *MessageHandler
	Handoff *HandoffHandler
}

// NewProvider constructs the handler provider with domain services.
func NewProvider(repo conversation.Repository, dispatcher *pipeline.Dispatcher, analyzer *engagement.Analyzer) *Provider {
	return &Provider{
		Message: NewMessageHandler(repo, dispatcher),
		Handoff: NewHandoffHandler(repo, analyzer),
	}
}
