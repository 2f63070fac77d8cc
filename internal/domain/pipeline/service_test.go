package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/domain/delivery"
	"github.com/homematch/assistant-api/internal/domain/engagement"
	"github.com/homematch/assistant-api/internal/domain/followup"
	"github.com/homematch/assistant-api/internal/domain/generation"
	"github.com/homematch/assistant-api/internal/domain/intent"
)

type fakeRepo struct {
	mu       sync.Mutex
	conv     *conversation.Conversation
	findErr  error
	messages []conversation.Message
}

func (r *fakeRepo) FindByPublicID(_ context.Context, id string) (*conversation.Conversation, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if r.conv != nil {
		return r.conv, nil
	}
	return &conversation.Conversation{PublicID: id}, nil
}

func (r *fakeRepo) RecentMessages(_ context.Context, _ string, limit int) ([]conversation.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) > limit {
		return append([]conversation.Message(nil), r.messages[len(r.messages)-limit:]...), nil
	}
	return append([]conversation.Message(nil), r.messages...), nil
}

func (r *fakeRepo) AppendMessage(_ context.Context, msg *conversation.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *msg)
	return nil
}

func (r *fakeRepo) LastMessageByRole(_ context.Context, _ string, role conversation.Role) (*conversation.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := len(r.messages) - 1; i >= 0; i-- {
		if r.messages[i].SenderRole == role {
			return &r.messages[i], nil
		}
	}
	return nil, nil
}

func (r *fakeRepo) HasUserActivitySince(_ context.Context, _, _ string, _ time.Time) (bool, error) {
	return false, nil
}

type fakeProfiles struct{}

func (fakeProfiles) Profile(_ context.Context, userID string) (conversation.UserProfile, error) {
	return conversation.UserProfile{ID: userID, Role: "tenant"}, nil
}

type fakeBroadcaster struct {
	mu     sync.Mutex
	events []delivery.Event
}

func (b *fakeBroadcaster) Publish(_ context.Context, _ string, ev delivery.Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, ev)
	return nil
}

func (b *fakeBroadcaster) types() []delivery.EventType {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []delivery.EventType
	for _, ev := range b.events {
		out = append(out, ev.Type)
	}
	return out
}

type fakeProvider struct {
	text string
	err  error
}

func (p *fakeProvider) Vendor() generation.Provider { return generation.ProviderAnthropic }
func (p *fakeProvider) Configured() bool            { return true }
func (p *fakeProvider) Complete(_ context.Context, _ generation.Prompt) (string, error) {
	return p.text, p.err
}

type nullCache struct{}

func (nullCache) Get(_ context.Context, _ string) (*generation.Reply, error) { return nil, nil }
func (nullCache) Set(_ context.Context, _ string, _ generation.Reply) error  { return nil }

type nullQueue struct {
	mu    sync.Mutex
	tasks []followup.Task
}

func (q *nullQueue) Enqueue(_ context.Context, task *followup.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.tasks = append(q.tasks, *task)
	return nil
}

func (q *nullQueue) DequeueDue(_ context.Context, _ time.Time, _ int) ([]followup.Task, error) {
	return nil, nil
}
func (q *nullQueue) RequeueStale(_ context.Context, _ time.Time) (int, error) { return 0, nil }
func (q *nullQueue) MarkCompleted(_ context.Context, _ string) error          { return nil }
func (q *nullQueue) MarkSkipped(_ context.Context, _ string) error            { return nil }
func (q *nullQueue) MarkFailed(_ context.Context, _ string) error             { return nil }

func newTestService(repo *fakeRepo, broadcaster *fakeBroadcaster, provider generation.ProviderClient, queue followup.Queue) *Service {
	log := zerolog.Nop()
	var clients []generation.ProviderClient
	if provider != nil {
		clients = append(clients, provider)
	}

	svc := NewService(
		repo,
		conversation.NewContextBuilder(repo, fakeProfiles{}, 10, log),
		intent.NewClassifier(log),
		generation.NewService(clients, nullCache{}, generation.Options{MaxPromptChars: 6000}, log),
		engagement.NewAnalyzer(repo, engagement.DefaultConfig(), log),
		followup.NewScheduler(queue, followup.DefaultSchedulerConfig(), log),
		broadcaster,
		Options{BotUserID: "homematch-assistant"},
		log,
	)
	svc.sleep = func(time.Duration) {}
	return svc
}

func TestProcessHappyPath(t *testing.T) {
	repo := &fakeRepo{}
	broadcaster := &fakeBroadcaster{}
	provider := &fakeProvider{text: "We have several two bedroom places available right now."}
	queue := &nullQueue{}
	svc := newTestService(repo, broadcaster, provider, queue)

	svc.Process(context.Background(), Job{
		ConversationID: "conv_1",
		UserID:         "user_1",
		Query:          "I need a 2 bedroom apartment under $2000",
	})

	if len(repo.messages) != 1 {
		t.Fatalf("expected one persisted reply, got %d", len(repo.messages))
	}
	msg := repo.messages[0]
	if msg.SenderRole != conversation.RoleAssistant || msg.SenderID != "homematch-assistant" {
		t.Error("reply must carry the assistant identity")
	}
	if msg.Content != provider.text {
		t.Errorf("unexpected reply content: %q", msg.Content)
	}
	if msg.Metadata["intent"] != "property_search" {
		t.Errorf("metadata intent = %v", msg.Metadata["intent"])
	}
	if msg.Metadata["source"] != "generated" {
		t.Errorf("metadata source = %v", msg.Metadata["source"])
	}
	if msg.Metadata["provider"] != "anthropic" {
		t.Errorf("metadata provider = %v", msg.Metadata["provider"])
	}
	if _, ok := msg.Metadata["confidence"].(float64); !ok {
		t.Error("metadata confidence missing")
	}

	types := broadcaster.types()
	if len(types) != 2 || types[0] != delivery.EventTypingIndicator || types[1] != delivery.EventBotResponse {
		t.Errorf("expected typing then bot_response, got %v", types)
	}

	// Confident property_search schedules a re-engagement nudge.
	if len(queue.tasks) != 1 || queue.tasks[0].Kind != followup.KindSearchNudge {
		t.Errorf("expected one search nudge, got %v", queue.tasks)
	}
}

func TestProcessFallsBackWhenProviderFails(t *testing.T) {
	repo := &fakeRepo{}
	broadcaster := &fakeBroadcaster{}
	svc := newTestService(repo, broadcaster, &fakeProvider{err: errors.New("upstream 500")}, &nullQueue{})

	svc.Process(context.Background(), Job{
		ConversationID: "conv_1",
		UserID:         "user_1",
		Query:          "When can I schedule a viewing?",
	})

	if len(repo.messages) != 1 {
		t.Fatalf("expected one persisted reply, got %d", len(repo.messages))
	}
	msg := repo.messages[0]
	if msg.Metadata["source"] != "fallback" {
		t.Errorf("metadata source = %v, want fallback", msg.Metadata["source"])
	}
	if msg.Content == "" {
		t.Error("fallback reply must not be empty")
	}

	types := broadcaster.types()
	if len(types) != 2 || types[1] != delivery.EventBotResponse {
		t.Errorf("provider failure must still deliver a bot_response, got %v", types)
	}
}

func TestProcessDeliversErrorReplyOnFailure(t *testing.T) {
	repo := &fakeRepo{findErr: errors.New("database down")}
	broadcaster := &fakeBroadcaster{}
	svc := newTestService(repo, broadcaster, &fakeProvider{text: "unused"}, &nullQueue{})

	svc.Process(context.Background(), Job{
		ConversationID: "conv_1",
		UserID:         "user_1",
		Query:          "hello",
	})

	if len(repo.messages) != 1 {
		t.Fatalf("expected the apology reply, got %d messages", len(repo.messages))
	}
	if repo.messages[0].Metadata["source"] != "error" {
		t.Errorf("metadata source = %v, want error", repo.messages[0].Metadata["source"])
	}

	types := broadcaster.types()
	sawError := false
	for _, typ := range types {
		if typ == delivery.EventBotError {
			sawError = true
		}
	}
	if !sawError {
		t.Errorf("expected a bot_error event, got %v", types)
	}
}

func TestDispatcherBackpressure(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo, &fakeBroadcaster{}, &fakeProvider{text: "unused"}, &nullQueue{})
	dispatcher := NewDispatcher(svc, 1, 2, time.Second, zerolog.Nop())

	// Workers are not running, so the queue fills.
	if err := dispatcher.Dispatch(Job{ConversationID: "conv_1"}); err != nil {
		t.Fatal(err)
	}
	if err := dispatcher.Dispatch(Job{ConversationID: "conv_2"}); err != nil {
		t.Fatal(err)
	}
	if err := dispatcher.Dispatch(Job{ConversationID: "conv_3"}); !errors.Is(err, ErrQueueFull) {
		t.Errorf("expected ErrQueueFull, got %v", err)
	}
}

func TestDispatcherProcessesJobs(t *testing.T) {
	repo := &fakeRepo{}
	broadcaster := &fakeBroadcaster{}
	svc := newTestService(repo, broadcaster, &fakeProvider{text: "The unit is still available, want a tour?"}, &nullQueue{})
	dispatcher := NewDispatcher(svc, 2, 8, time.Second, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = dispatcher.Run(ctx)
		close(done)
	}()

	if err := dispatcher.Dispatch(Job{ConversationID: "conv_1", UserID: "user_1", Query: "still available?"}); err != nil {
		t.Fatal(err)
	}

	deadline := time.After(2 * time.Second)
	for {
		repo.mu.Lock()
		count := len(repo.messages)
		repo.mu.Unlock()
		if count == 1 {
			break
		}
		select {
		case <-deadline:
			t.Fatal("job was not processed in time")
		case <-time.After(10 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("dispatcher did not stop on cancel")
	}
}
