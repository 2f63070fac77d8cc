package conversation

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Role identifies who authored a message in a conversation.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// MessageType tags the persisted message payload. The pipeline only produces
// text messages; the constant exists so the store contract stays explicit.
const MessageTypeText = "text"

// Conversation is the conversation-of-record between a tenant (or landlord)
// and the assistant, optionally anchored to a listing.
type Conversation struct {
	ID         uint
	PublicID   string
	TenantID   string
	LandlordID string
	Listing    *Listing
	Metadata   map[string]string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Message is a single persisted conversation turn.
type Message struct {
	ID             uint
	PublicID       string
	ConversationID string
	SenderRole     Role
	SenderID       string
	Content        string
	MessageType    string
	Metadata       map[string]any
	CreatedAt      time.Time
}

// Listing is the referenced subject entity summary carried into prompts and
// fallback replies. Price uses decimal to avoid float drift on money.
type Listing struct {
	PublicID  string
	Title     string
	Location  string
	Price     decimal.Decimal
	Bedrooms  int
	Bathrooms int
	Amenities []string
}

// UserProfile is the profile summary of the human participant.
type UserProfile struct {
	ID             string
	Role           string // tenant or landlord
	AccountAgeDays int
	// Rolling 7-day activity counters.
	RecentViews        int
	RecentApplications int
	RecentMessages     int
	Preferences        map[string]string
}

// Turn is one entry of the bounded conversation history inside a Context.
type Turn struct {
	Role      Role
	Text      string
	Timestamp time.Time
	// Metadata carries the classifier annotations stored with assistant
	// messages (intent, confidence, source).
	Metadata map[string]any
}

// Context is the ephemeral per-request view consumed by the classifier and
// the generator. Built fresh for every invocation, never persisted.
type Context struct {
	Turns   []Turn
	Listing *Listing
	Profile UserProfile
}

// ActivityKind labels a tracked user action outside of messaging.
type ActivityKind string

const (
	ActivityViewing     ActivityKind = "viewing"
	ActivityApplication ActivityKind = "application"
	ActivityFavorite    ActivityKind = "favorite"
)

// Repository exposes read/append access to the conversation store. The store
// is append-only per conversation; this service never updates another
// component's rows.
type Repository interface {
	FindByPublicID(ctx context.Context, publicID string) (*Conversation, error)

	// RecentMessages returns up to limit most recent messages ordered
	// oldest to newest.
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]Message, error)

	AppendMessage(ctx context.Context, msg *Message) error

	// LastMessageByRole returns the newest message authored by the given
	// role, or nil when the conversation has none.
	LastMessageByRole(ctx context.Context, conversationID string, role Role) (*Message, error)

	// HasUserActivitySince reports whether the human participant sent any
	// message or performed any tracked action after the given instant.
	HasUserActivitySince(ctx context.Context, conversationID string, userID string, since time.Time) (bool, error)
}

// ProfileReader resolves the profile summary for a participant. User storage
// is an external collaborator; only this read surface is consumed.
type ProfileReader interface {
	Profile(ctx context.Context, userID string) (UserProfile, error)
}
