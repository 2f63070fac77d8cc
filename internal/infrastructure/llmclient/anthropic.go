package llmclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/domain/generation"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	anthropicVersion        = "2023-06-01"
	maxReplyTokens          = 1024
)

// AnthropicClient implements generation.ProviderClient against the Anthropic
// Messages API.
type AnthropicClient struct {
	httpClient *resty.Client
	apiKey     string
	model      string
}

var _ generation.ProviderClient = (*AnthropicClient)(nil)

// NewAnthropicClient creates a Resty-backed client. baseURL falls back to the
// public API when empty.
func NewAnthropicClient(apiKey, model, baseURL string, timeout time.Duration) *AnthropicClient {
	if baseURL == "" {
		baseURL = defaultAnthropicBaseURL
	}
	return &AnthropicClient{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetHeader("anthropic-version", anthropicVersion).
			SetTimeout(timeout),
		apiKey: apiKey,
		model:  model,
	}
}

func (c *AnthropicClient) Vendor() generation.Provider { return generation.ProviderAnthropic }

func (c *AnthropicClient) Configured() bool { return c.apiKey != "" }

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete calls the Messages API and returns the first text block.
func (c *AnthropicClient) Complete(ctx context.Context, prompt generation.Prompt) (string, error) {
	messages := make([]anthropicMessage, 0, len(prompt.Turns)+1)
	for _, turn := range prompt.Turns {
		role := "user"
		if turn.Role == conversation.RoleAssistant {
			role = "assistant"
		}
		messages = append(messages, anthropicMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, anthropicMessage{Role: "user", Content: prompt.Query})

	var result anthropicResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetBody(anthropicRequest{
			Model:     c.model,
			MaxTokens: maxReplyTokens,
			System:    prompt.System,
			Messages:  messages,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	if resp.IsError() {
		if result.Error != nil {
			return "", fmt.Errorf("anthropic api error: %s %s", result.Error.Type, result.Error.Message)
		}
		return "", fmt.Errorf("anthropic api error: %s", resp.Status())
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("anthropic returned no text content")
	}
	return text, nil
}
