package delivery

import (
	"testing"
	"time"

	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/domain/intent"
)

func TestTypingDelayCapped(t *testing.T) {
	perChar := 30 * time.Millisecond
	limit := 3 * time.Second

	if got := TypingDelay(10, perChar, limit); got != 300*time.Millisecond {
		t.Errorf("short reply: got %s", got)
	}
	if got := TypingDelay(5000, perChar, limit); got != limit {
		t.Errorf("long reply must be capped at %s, got %s", limit, got)
	}
	if got := TypingDelay(0, perChar, limit); got != 0 {
		t.Errorf("empty reply: got %s", got)
	}
}

func TestBotResponseEventMirrorsMessage(t *testing.T) {
	msg := &conversation.Message{
		PublicID:       "msg_abc",
		ConversationID: "conv_1",
		SenderRole:     conversation.RoleAssistant,
		SenderID:       "homematch-assistant",
		Content:        "The viewing is confirmed for Saturday.",
		MessageType:    conversation.MessageTypeText,
		Metadata:       map[string]any{"intent": "scheduling"},
		CreatedAt:      time.Now(),
	}

	ev := NewBotResponseEvent(msg, intent.LabelScheduling, true)
	if ev.Type != EventBotResponse {
		t.Fatalf("unexpected type %s", ev.Type)
	}

	payload, ok := ev.Data["message"].(map[string]any)
	if !ok {
		t.Fatal("message payload missing")
	}
	if payload["id"] != "msg_abc" || payload["content"] != msg.Content {
		t.Error("payload does not mirror persisted message")
	}
	if ev.Data["requires_human_handoff"] != true {
		t.Error("handoff flag not carried")
	}
	if actions, _ := ev.Data["quick_actions"].([]string); len(actions) == 0 {
		t.Error("expected quick actions for scheduling")
	}
}

func TestQuickActionsAlwaysPresent(t *testing.T) {
	labels := []intent.Label{
		intent.LabelPropertySearch,
		intent.LabelPropertyInquiry,
		intent.LabelApplicationGuidance,
		intent.LabelMaintenanceRequest,
		intent.LabelMaintenanceFollowup,
		intent.LabelScheduling,
		intent.LabelPricingNegotiation,
		intent.LabelGreeting,
		intent.LabelGeneralInquiry,
	}
	for _, label := range labels {
		if len(QuickActions(label)) == 0 {
			t.Errorf("no quick actions for %s", label)
		}
	}
}
