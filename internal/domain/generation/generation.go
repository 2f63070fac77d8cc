package generation

import (
	"context"

	"github.com/homematch/assistant-api/internal/domain/conversation"
)

// Source tells whether a reply came from a generative provider or from the
// deterministic rule-based synthesizer.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Reply is the pipeline's generated response payload.
type Reply struct {
	Text     string         `json:"text"`
	Source   Source         `json:"source"`
	Cached   bool           `json:"cached"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Provider identifies one external generative-text vendor in the fallback
// chain. The chain is a fixed ordered list; no dynamic dispatch.
type Provider string

const (
	ProviderAnthropic Provider = "anthropic"
	ProviderOpenAI    Provider = "openai"
	ProviderGoogle    Provider = "google"
)

// Prompt is the bounded input for one provider invocation.
type Prompt struct {
	System string
	Turns  []conversation.Turn
	Query  string
}

// ProviderClient is one external provider in the chain. Configured reports
// whether the vendor's credential is present; unconfigured providers are
// skipped, never treated as errors.
type ProviderClient interface {
	Vendor() Provider
	Configured() bool
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// Cache is the read-through reply cache. Entries are read-or-insert only and
// expire by TTL; there is no invalidation path. Get returns (nil, nil) on a
// miss.
type Cache interface {
	Get(ctx context.Context, key string) (*Reply, error)
	Set(ctx context.Context, key string, reply Reply) error
}
