package engagement

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/homematch/assistant-api/internal/domain/conversation"
)

type fakeRepo struct {
	messages []conversation.Message
}

func (f *fakeRepo) FindByPublicID(_ context.Context, publicID string) (*conversation.Conversation, error) {
	return &conversation.Conversation{PublicID: publicID}, nil
}

func (f *fakeRepo) RecentMessages(_ context.Context, _ string, limit int) ([]conversation.Message, error) {
	if len(f.messages) > limit {
		return f.messages[len(f.messages)-limit:], nil
	}
	return f.messages, nil
}

func (f *fakeRepo) AppendMessage(_ context.Context, msg *conversation.Message) error {
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeRepo) LastMessageByRole(_ context.Context, _ string, role conversation.Role) (*conversation.Message, error) {
	for i := len(f.messages) - 1; i >= 0; i-- {
		if f.messages[i].SenderRole == role {
			return &f.messages[i], nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) HasUserActivitySince(_ context.Context, _, _ string, _ time.Time) (bool, error) {
	return false, nil
}

func human(text string, age time.Duration) conversation.Message {
	return conversation.Message{
		SenderRole: conversation.RoleUser,
		SenderID:   "user_1",
		Content:    text,
		CreatedAt:  time.Now().Add(-age),
	}
}

func assistant(text string, confidence float64, age time.Duration) conversation.Message {
	return conversation.Message{
		SenderRole: conversation.RoleAssistant,
		SenderID:   "homematch-assistant",
		Content:    text,
		Metadata:   map[string]any{"confidence": confidence},
		CreatedAt:  time.Now().Add(-age),
	}
}

func newTestAnalyzer(repo *fakeRepo) *Analyzer {
	return NewAnalyzer(repo, DefaultConfig(), zerolog.Nop())
}

func TestHandoffRepetitiveConversation(t *testing.T) {
	repo := &fakeRepo{}
	for i := 0; i < 4; i++ {
		repo.messages = append(repo.messages,
			human("is the unit still available", time.Duration(25-i*5)*time.Minute))
	}
	analyzer := newTestAnalyzer(repo)

	signal, err := analyzer.HandoffSignal(context.Background(), &conversation.Conversation{PublicID: "conv_1"})
	if err != nil {
		t.Fatal(err)
	}
	if !signal.ShouldHandoff {
		t.Fatal("four identical messages in 30 minutes must trigger handoff")
	}
	if len(signal.Reasons) != 1 || signal.Reasons[0] != ReasonRepetitive {
		t.Errorf("expected only repetitive flag, got %v", signal.Reasons)
	}
	if math.Abs(signal.Score-0.2) > 1e-9 {
		t.Errorf("expected score 0.2, got %f", signal.Score)
	}
}

func TestHandoffLowBotConfidence(t *testing.T) {
	repo := &fakeRepo{messages: []conversation.Message{
		human("tell me about the lease", 10*time.Minute),
		assistant("Sure, the lease runs twelve months.", 0.3, 9*time.Minute),
		human("what about utilities", 8*time.Minute),
		assistant("Utilities are separate.", 0.4, 7*time.Minute),
		human("and parking", 6*time.Minute),
		assistant("Parking is available on request.", 0.9, 5*time.Minute),
	}}
	analyzer := newTestAnalyzer(repo)

	signal, err := analyzer.HandoffSignal(context.Background(), &conversation.Conversation{PublicID: "conv_2"})
	if err != nil {
		t.Fatal(err)
	}
	if !signal.ShouldHandoff {
		t.Fatal("two of three low-confidence replies must trigger handoff")
	}
	found := false
	for _, r := range signal.Reasons {
		if r == ReasonLowBotConfidence {
			found = true
		}
	}
	if !found {
		t.Errorf("expected low_bot_confidence flag, got %v", signal.Reasons)
	}
}

func TestHandoffScoreNeverExceedsOne(t *testing.T) {
	repo := &fakeRepo{messages: []conversation.Message{
		human("this is unacceptable, my landlord is threatening eviction", 20*time.Minute),
		assistant("I understand this is stressful.", 0.2, 19*time.Minute),
		human("this is unacceptable, my landlord is threatening eviction", 15*time.Minute),
		assistant("Let me find out what I can.", 0.3, 14*time.Minute),
		human("this is unacceptable, my landlord is threatening eviction", 10*time.Minute),
	}}
	analyzer := newTestAnalyzer(repo)

	signal, err := analyzer.HandoffSignal(context.Background(), &conversation.Conversation{PublicID: "conv_3"})
	if err != nil {
		t.Fatal(err)
	}
	if !signal.ShouldHandoff {
		t.Fatal("expected handoff with every indicator firing")
	}
	if signal.Score > 1.0 {
		t.Errorf("score must be capped at 1.0, got %f", signal.Score)
	}
	if len(signal.Reasons) < 3 {
		t.Errorf("expected multiple flags, got %v", signal.Reasons)
	}
}

func TestHandoffMonotonicWithComplexity(t *testing.T) {
	base := []conversation.Message{
		human("when is the viewing", 10*time.Minute),
		assistant("The viewing is Saturday at noon.", 0.8, 9*time.Minute),
	}

	repo := &fakeRepo{messages: base}
	analyzer := newTestAnalyzer(repo)
	before, err := analyzer.HandoffSignal(context.Background(), &conversation.Conversation{PublicID: "conv_4"})
	if err != nil {
		t.Fatal(err)
	}

	repo.messages = append(base, human("do I need a lawyer for this lease", 5*time.Minute))
	after, err := analyzer.HandoffSignal(context.Background(), &conversation.Conversation{PublicID: "conv_4"})
	if err != nil {
		t.Fatal(err)
	}

	if after.Score < before.Score {
		t.Errorf("adding a complexity keyword lowered the score: %f -> %f", before.Score, after.Score)
	}
	if !after.ShouldHandoff {
		t.Error("lawyer mention must flag complex_queries")
	}
}

func TestHandoffCleanConversation(t *testing.T) {
	repo := &fakeRepo{messages: []conversation.Message{
		human("hi, is the loft still available", 10*time.Minute),
		assistant("Yes, it is available from July.", 0.85, 9*time.Minute),
		human("great, thanks so much", 8*time.Minute),
	}}
	analyzer := newTestAnalyzer(repo)

	signal, err := analyzer.HandoffSignal(context.Background(), &conversation.Conversation{PublicID: "conv_5"})
	if err != nil {
		t.Fatal(err)
	}
	if signal.ShouldHandoff {
		t.Errorf("healthy conversation must not trigger handoff: %v", signal.Reasons)
	}
	if signal.Score != 0 {
		t.Errorf("expected zero score, got %f", signal.Score)
	}
}

func TestSentimentTrendHumanMessagesOnly(t *testing.T) {
	repo := &fakeRepo{messages: []conversation.Message{
		human("this is terrible, the heating is broken", 20*time.Minute),
		assistant("I am happy to help with that, great question.", 0.9, 19*time.Minute),
		human("still broken and I am frustrated", 10*time.Minute),
	}}
	analyzer := newTestAnalyzer(repo)

	trend, err := analyzer.SentimentTrend(context.Background(), &conversation.Conversation{PublicID: "conv_6"})
	if err != nil {
		t.Fatal(err)
	}
	if trend != SentimentNegative {
		t.Errorf("assistant cheerfulness must not mask tenant sentiment, got %s", trend)
	}
}

func TestEngagementScore(t *testing.T) {
	repo := &fakeRepo{messages: []conversation.Message{
		human("question one", 10*time.Minute),
		assistant("Answer one.", 0.8, 9*time.Minute),
		human("question two", 8*time.Minute),
		assistant("Answer two.", 0.8, 7*time.Minute),
	}}
	analyzer := newTestAnalyzer(repo)

	score, err := analyzer.EngagementScore(context.Background(), &conversation.Conversation{PublicID: "conv_7"})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(score-0.5) > 1e-9 {
		t.Errorf("expected 0.5 with equal turn split, got %f", score)
	}

	empty := &fakeRepo{}
	score, err = newTestAnalyzer(empty).EngagementScore(context.Background(), &conversation.Conversation{PublicID: "conv_8"})
	if err != nil {
		t.Fatal(err)
	}
	if score != 0 {
		t.Errorf("empty conversation must score zero, got %f", score)
	}
}
