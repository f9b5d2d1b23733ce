package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	anthropicBaseURL   = "https://api.anthropic.com"
	anthropicModel     = "claude-3-5-sonnet-20240620"
	anthropicVersion   = "2023-06-01"
	anthropicMaxTokens = 300
)

// Anthropic calls the messages API. The system instruction is folded into
// the single user message.
type Anthropic struct {
	client *resty.Client
	model  string
}

// NewAnthropic creates an Anthropic client authenticated with apiKey. Requests are not retried.
func NewAnthropic(apiKey string, timeout time.Duration) *Anthropic {
	return &Anthropic{
		client: resty.New().
			SetBaseURL(anthropicBaseURL).
			SetTimeout(timeout).
			SetHeader("x-api-key", apiKey).
			SetHeader("anthropic-version", anthropicVersion).
			SetHeader("Content-Type", "application/json"),
		model: anthropicModel,
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

type messagesRequest struct {
	Model     string        `json:"model"`
	MaxTokens int           `json:"max_tokens"`
	Messages  []chatMessage `json:"messages"`
}

type messagesResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Complete sends "{system}\n\nUser query: {prompt}" as one user message and
// returns the first text block.
func (a *Anthropic) Complete(ctx context.Context, system, prompt string) (string, error) {
	var out messagesResponse
	var apiErr apiErrorBody

	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(messagesRequest{
			Model:     a.model,
			MaxTokens: anthropicMaxTokens,
			Messages: []chatMessage{
				{Role: "user", Content: system + "\n\nUser query: " + prompt},
			},
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("anthropic API error: status %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}

	for _, block := range out.Content {
		if block.Type == "text" {
			if text := strings.TrimSpace(block.Text); text != "" {
				return text, nil
			}
		}
	}
	return "", ErrEmptyCompletion
}
