package ai

import "context"

// CompletionRequest carries one prompt exchange for the engine.
type CompletionRequest struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float32
	WantJSON    bool
}

// Engine is a generative model capable of answering a single prompt exchange.
// Implementations make exactly one attempt; retry policy belongs to callers.
type Engine interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
