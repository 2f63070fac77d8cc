package llmclient

import (
	"context"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/homematch/assistant-api/internal/domain/conversation"
	"github.com/homematch/assistant-api/internal/domain/generation"
)

// OpenAIClient implements generation.ProviderClient via the official-style
// chat completions SDK.
type OpenAIClient struct {
	client *openai.Client
	apiKey string
	model  string
}

var _ generation.ProviderClient = (*OpenAIClient)(nil)

// NewOpenAIClient creates a chat-completions client. baseURL overrides the
// public endpoint for proxies and compatible gateways.
func NewOpenAIClient(apiKey, model, baseURL string, timeout time.Duration) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	cfg.HTTPClient.Timeout = timeout

	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		apiKey: apiKey,
		model:  model,
	}
}

func (c *OpenAIClient) Vendor() generation.Provider { return generation.ProviderOpenAI }

func (c *OpenAIClient) Configured() bool { return c.apiKey != "" }

// Complete runs one chat completion over the prompt.
func (c *OpenAIClient) Complete(ctx context.Context, prompt generation.Prompt) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(prompt.Turns)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: prompt.System,
	})
	for _, turn := range prompt.Turns {
		role := openai.ChatMessageRoleUser
		if turn.Role == conversation.RoleAssistant {
			role = openai.ChatMessageRoleAssistant
		}
		messages = append(messages, openai.ChatCompletionMessage{Role: role, Content: turn.Text})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt.Query,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("openai returned empty content")
	}
	return text, nil
}
