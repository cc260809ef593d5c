// Package llm talks to an OpenAI-compatible chat completion and embeddings
// API.
package llm

import (
	"context"
	"fmt"
	"time"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is the subset of the API the assistant uses.
type Client interface {
	Chat(ctx context.Context, messages []Message) (string, error)
	Embed(ctx context.Context, inputs []string) ([][]float64, error)
}

type Config struct {
	BaseURL        string
	APIKey         string
	Model          string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	Temperature    float64
	MaxTokens      int
}

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := e.Body
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("llm API error (status %d): %s", e.StatusCode, body)
}
