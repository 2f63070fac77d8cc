package delivery

import (
	"context"
	"time"

	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/domain/intent"
)

// EventType names the realtime events pushed to conversation subscribers.
type EventType string

const (
	EventBotResponse     EventType = "bot_response"
	EventTypingIndicator EventType = "typing_indicator"
	EventBotError        EventType = "bot_error"
	EventFollowupMessage EventType = "followup_message"
)

// Event is the envelope published to a conversation channel.
type Event struct {
	Type      EventType      `json:"type"`
	Data      map[string]any `json:"data"`
	Timestamp time.Time      `json:"timestamp"`
}

// Broadcaster pushes events to everyone subscribed to a conversation.
// Implementations must be safe for concurrent use.
type Broadcaster interface {
	Publish(ctx context.Context, conversationID string, ev Event) error
}

// NewTypingEvent signals that the assistant is composing a reply.
func NewTypingEvent(senderID string) Event {
	return Event{
		Type: EventTypingIndicator,
		Data: map[string]any{
			"sender_id": senderID,
			"typing":    true,
		},
		Timestamp: time.Now(),
	}
}

// NewBotResponseEvent wraps a persisted assistant message for delivery. The
// payload mirrors the stored message so clients render exactly what was
// persisted.
func NewBotResponseEvent(msg *conversation.Message, label intent.Label, handoff bool) Event {
	return Event{
		Type: EventBotResponse,
		Data: map[string]any{
			"message":                MessagePayload(msg),
			"quick_actions":          QuickActions(label),
			"requires_human_handoff": handoff,
		},
		Timestamp: time.Now(),
	}
}

// NewFollowupEvent wraps a persisted re-engagement message.
func NewFollowupEvent(msg *conversation.Message, kind string) Event {
	return Event{
		Type: EventFollowupMessage,
		Data: map[string]any{
			"message": MessagePayload(msg),
			"kind":    kind,
		},
		Timestamp: time.Now(),
	}
}

// NewBotErrorEvent tells subscribers the assistant could not reply.
func NewBotErrorEvent(senderID string) Event {
	return Event{
		Type: EventBotError,
		Data: map[string]any{
			"sender_id": senderID,
			"error":     "assistant_unavailable",
		},
		Timestamp: time.Now(),
	}
}

// MessagePayload is the wire shape of one message inside an event.
func MessagePayload(msg *conversation.Message) map[string]any {
	return map[string]any{
		"id":              msg.PublicID,
		"conversation_id": msg.ConversationID,
		"sender_role":     string(msg.SenderRole),
		"sender_id":       msg.SenderID,
		"content":         msg.Content,
		"message_type":    msg.MessageType,
		"metadata":        msg.Metadata,
		"created_at":      msg.CreatedAt,
	}
}

// QuickActions suggests tappable next steps matching the classified intent.
func QuickActions(label intent.Label) []string {
	switch label {
	case intent.LabelPropertySearch:
		return []string{"Refine search", "Save search", "See top matches"}
	case intent.LabelPropertyInquiry:
		return []string{"Schedule viewing", "Ask about pets", "See similar listings"}
	case intent.LabelApplicationGuidance:
		return []string{"Start application", "Document checklist", "Talk to an agent"}
	case intent.LabelMaintenanceRequest, intent.LabelMaintenanceFollowup:
		return []string{"Check request status", "Add photos", "Mark as urgent"}
	case intent.LabelScheduling:
		return []string{"Pick a time", "Request video tour"}
	case intent.LabelPricingNegotiation:
		return []string{"Make an offer", "Talk to the landlord"}
	default:
		return []string{"Browse listings", "Talk to an agent"}
	}
}

// TypingDelay estimates a human-feeling composition pause for a reply of the
// given length, capped so long replies never stall delivery.
func TypingDelay(replyLen int, perChar, limit time.Duration) time.Duration {
	d := time.Duration(replyLen) * perChar
	if d > limit {
		return limit
	}
	return d
}
