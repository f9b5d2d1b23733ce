package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

const (
	groqBaseURL = "https://api.groq.com"
	groqModel   = "llama-3.3-70b-versatile"
)

// ErrEmptyCompletion is returned when a backend answers without any text.
var ErrEmptyCompletion = errors.New("empty completion")

// Groq calls the OpenAI-compatible chat completions endpoint.
type Groq struct {
	client *resty.Client
	model  string
}

// NewGroq creates a Groq client authenticated with apiKey. Requests are not retried.
func NewGroq(apiKey string, timeout time.Duration) *Groq {
	return &Groq{
		client: resty.New().
			SetBaseURL(groqBaseURL).
			SetAuthToken(apiKey).
			SetTimeout(timeout).
			SetHeader("Content-Type", "application/json"),
		model: groqModel,
	}
}

func (g *Groq) Name() string { return "groq" }

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

type apiErrorBody struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends system as the system message and prompt as the user message.
func (g *Groq) Complete(ctx context.Context, system, prompt string) (string, error) {
	var out chatResponse
	var apiErr apiErrorBody

	resp, err := g.client.R().
		SetContext(ctx).
		SetBody(chatRequest{
			Model: g.model,
			Messages: []chatMessage{
				{Role: "system", Content: system},
				{Role: "user", Content: prompt},
			},
		}).
		SetResult(&out).
		SetError(&apiErr).
		Post("/openai/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("groq request: %w", err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("groq API error: status %d: %s", resp.StatusCode(), apiErr.Error.Message)
	}

	if len(out.Choices) == 0 {
		return "", ErrEmptyCompletion
	}
	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}
