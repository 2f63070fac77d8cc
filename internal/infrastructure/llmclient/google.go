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

const defaultGoogleBaseURL = "https://generativelanguage.googleapis.com"

// GoogleClient implements generation.ProviderClient against the Gemini
// generateContent API.
type GoogleClient struct {
	httpClient *resty.Client
	apiKey     string
	model      string
}

var _ generation.ProviderClient = (*GoogleClient)(nil)

// NewGoogleClient creates a Resty-backed Gemini client.
func NewGoogleClient(apiKey, model, baseURL string, timeout time.Duration) *GoogleClient {
	if baseURL == "" {
		baseURL = defaultGoogleBaseURL
	}
	return &GoogleClient{
		httpClient: resty.New().
			SetBaseURL(baseURL).
			SetHeader("Content-Type", "application/json").
			SetTimeout(timeout),
		apiKey: apiKey,
		model:  model,
	}
}

func (c *GoogleClient) Vendor() generation.Provider { return generation.ProviderGoogle }

func (c *GoogleClient) Configured() bool { return c.apiKey != "" }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	SystemInstruction *geminiContent  `json:"system_instruction,omitempty"`
	Contents          []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Complete calls generateContent and returns the first candidate's text.
func (c *GoogleClient) Complete(ctx context.Context, prompt generation.Prompt) (string, error) {
	contents := make([]geminiContent, 0, len(prompt.Turns)+1)
	for _, turn := range prompt.Turns {
		role := "user"
		if turn.Role == conversation.RoleAssistant {
			role = "model"
		}
		contents = append(contents, geminiContent{Role: role, Parts: []geminiPart{{Text: turn.Text}}})
	}
	contents = append(contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: prompt.Query}}})

	body := geminiRequest{Contents: contents}
	if prompt.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: prompt.System}}}
	}

	var result geminiResponse
	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetQueryParam("key", c.apiKey).
		SetBody(body).
		SetResult(&result).
		SetError(&result).
		Post(fmt.Sprintf("/v1beta/models/%s:generateContent", c.model))
	if err != nil {
		return "", fmt.Errorf("gemini request: %w", err)
	}
	if resp.IsError() {
		if result.Error != nil {
			return "", fmt.Errorf("gemini api error %d: %s", result.Error.Code, result.Error.Message)
		}
		return "", fmt.Errorf("gemini api error: %s", resp.Status())
	}
	if len(result.Candidates) == 0 {
		return "", fmt.Errorf("gemini returned no candidates")
	}

	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		sb.WriteString(part.Text)
	}
	text := strings.TrimSpace(sb.String())
	if text == "" {
		return "", fmt.Errorf("gemini returned empty content")
	}
	return text, nil
}
