package llm

import (
	"context"
	"errors"
)

// Client abstracts LLM providers for chatbot answers.
type Client interface {
	Answer(ctx context.Context, question string) (string, error)
}

// ErrNotConfigured is returned by the placeholder client.
var ErrNotConfigured = errors.New("LLM not configured")

// PlaceholderClient is a stub implementation until provider wiring is added.
type PlaceholderClient struct{}

// Answer returns ErrNotConfigured.
func (PlaceholderClient) Answer(ctx context.Context, question string) (string, error) {
	_ = ctx
	_ = question
	return "", ErrNotConfigured
}
