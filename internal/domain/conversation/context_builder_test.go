package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type fakeRepo struct {
	messages []Message
	err      error
}

func (f *fakeRepo) FindByPublicID(ctx context.Context, publicID string) (*Conversation, error) {
	return nil, nil
}

func (f *fakeRepo) RecentMessages(ctx context.Context, conversationID string, limit int) ([]Message, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(f.messages) > limit {
		return f.messages[len(f.messages)-limit:], nil
	}
	return f.messages, nil
}

func (f *fakeRepo) AppendMessage(ctx context.Context, msg *Message) error { return nil }

func (f *fakeRepo) LastMessageByRole(ctx context.Context, conversationID string, role Role) (*Message, error) {
	return nil, nil
}

func (f *fakeRepo) HasUserActivitySince(ctx context.Context, conversationID, userID string, since time.Time) (bool, error) {
	return false, nil
}

type fakeProfiles struct {
	profile UserProfile
}

func (f *fakeProfiles) Profile(ctx context.Context, userID string) (UserProfile, error) {
	return f.profile, nil
}

func TestContextBuilderEmptyConversation(t *testing.T) {
	builder := NewContextBuilder(&fakeRepo{}, &fakeProfiles{profile: UserProfile{ID: "u1", Role: "tenant"}}, 10, zerolog.Nop())

	conv := &Conversation{PublicID: "conv_1", TenantID: "u1"}
	result, err := builder.Build(context.Background(), "u1", conv)
	if err != nil {
		t.Fatalf("Build failed on empty conversation: %v", err)
	}
	if len(result.Turns) != 0 {
		t.Errorf("expected 0 turns, got %d", len(result.Turns))
	}
	if result.Listing != nil {
		t.Error("expected no listing for general conversation")
	}
	if result.Profile.ID != "u1" {
		t.Errorf("expected profile u1, got %s", result.Profile.ID)
	}
}

func TestContextBuilderWindowAndOrder(t *testing.T) {
	base := time.Now().Add(-1 * time.Hour)
	var messages []Message
	for i := 0; i < 15; i++ {
		role := RoleUser
		if i%2 == 1 {
			role = RoleAssistant
		}
		messages = append(messages, Message{
			SenderRole: role,
			Content:    string(rune('a' + i)),
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
	}

	builder := NewContextBuilder(&fakeRepo{messages: messages}, &fakeProfiles{}, 10, zerolog.Nop())

	conv := &Conversation{PublicID: "conv_2"}
	result, err := builder.Build(context.Background(), "u1", conv)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(result.Turns) != 10 {
		t.Fatalf("expected 10 turns, got %d", len(result.Turns))
	}
	for i := 1; i < len(result.Turns); i++ {
		if result.Turns[i].Timestamp.Before(result.Turns[i-1].Timestamp) {
			t.Error("turns are not ordered oldest to newest")
		}
	}
	// Window keeps the most recent turns.
	if result.Turns[len(result.Turns)-1].Text != messages[len(messages)-1].Content {
		t.Error("window did not keep the newest message")
	}
}

func TestContextBuilderCarriesListing(t *testing.T) {
	builder := NewContextBuilder(&fakeRepo{}, &fakeProfiles{}, 10, zerolog.Nop())

	conv := &Conversation{
		PublicID: "conv_3",
		Listing: &Listing{
			PublicID: "lst_1",
			Title:    "Sunny 2BR near the park",
			Location: "Maplewood",
			Price:    decimal.NewFromInt(1850),
			Bedrooms: 2,
		},
	}
	result, err := builder.Build(context.Background(), "u1", conv)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if result.Listing == nil || result.Listing.PublicID != "lst_1" {
		t.Error("listing summary not carried into context")
	}
}
