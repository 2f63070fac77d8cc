package conversationrepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/homematch/assistant-api/internal/domain/conversation"
)

// InMemoryRepository is a thread-safe repository useful for demos/tests.
type InMemoryRepository struct {
	mu            sync.RWMutex
	conversations map[string]*conversation.Conversation
	messages      map[string][]conversation.Message
	profiles      map[string]conversation.UserProfile
	activity      map[string][]time.Time
	nextID        uint
}

var _ conversation.Repository = (*InMemoryRepository)(nil)
var _ conversation.ProfileReader = (*InMemoryRepository)(nil)

// NewInMemoryRepository creates an empty in-memory store.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		conversations: make(map[string]*conversation.Conversation),
		messages:      make(map[string][]conversation.Message),
		profiles:      make(map[string]conversation.UserProfile),
		activity:      make(map[string][]time.Time),
	}
}

// PutConversation registers or replaces a conversation.
func (r *InMemoryRepository) PutConversation(conv *conversation.Conversation) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conversations[conv.PublicID] = conv
}

// PutProfile registers or replaces a user profile.
func (r *InMemoryRepository) PutProfile(profile conversation.UserProfile) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[profile.ID] = profile
}

// RecordActivity stores a marketplace activity timestamp for the user.
func (r *InMemoryRepository) RecordActivity(userID string, at time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.activity[userID] = append(r.activity[userID], at)
}

func (r *InMemoryRepository) FindByPublicID(_ context.Context, publicID string) (*conversation.Conversation, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conv, ok := r.conversations[publicID]
	if !ok {
		return nil, fmt.Errorf("conversation not found: %s", publicID)
	}
	return conv, nil
}

func (r *InMemoryRepository) RecentMessages(_ context.Context, conversationID string, limit int) ([]conversation.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.messages[conversationID]
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	out := make([]conversation.Message, len(all))
	copy(out, all)
	return out, nil
}

func (r *InMemoryRepository) AppendMessage(_ context.Context, msg *conversation.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	msg.ID = r.nextID
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	r.messages[msg.ConversationID] = append(r.messages[msg.ConversationID], *msg)
	return nil
}

func (r *InMemoryRepository) LastMessageByRole(_ context.Context, conversationID string, role conversation.Role) (*conversation.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.messages[conversationID]
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].SenderRole == role {
			msg := all[i]
			return &msg, nil
		}
	}
	return nil, nil
}

func (r *InMemoryRepository) HasUserActivitySince(_ context.Context, _, userID string, since time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, at := range r.activity[userID] {
		if at.After(since) {
			return true, nil
		}
	}
	return false, nil
}

func (r *InMemoryRepository) Profile(_ context.Context, userID string) (conversation.UserProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if profile, ok := r.profiles[userID]; ok {
		return profile, nil
	}
	return conversation.UserProfile{ID: userID, Role: "tenant"}, nil
}
