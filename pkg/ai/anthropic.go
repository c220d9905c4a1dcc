package ai

import (
	"context"
	"fmt"
)

// AnthropicConfig placeholder for anthropic integration configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string
}

// AnthropicEngine is a stub implementation that can be expanded once the SDK is available.
type AnthropicEngine struct{}

// NewAnthropicEngine constructs a new stub engine.
func NewAnthropicEngine(cfg AnthropicConfig) (*AnthropicEngine, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("anthropic api key is required")
	}
	return &AnthropicEngine{}, nil
}

// Complete is not yet implemented for Anthropic models.
func (a *AnthropicEngine) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	return "", fmt.Errorf("anthropic engine not implemented")
}
