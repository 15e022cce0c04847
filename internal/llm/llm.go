// Package llm provides a streaming generative-text capability. A prompt
// goes in, text deltas come back in order, and the concatenated result is
// returned once the stream ends.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/edwinckc/self-reflection-tool/internal/config"
)

// Request is one generation call.
type Request struct {
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Generator streams a model response. onDelta runs inline for every text
// fragment before the next one is read, so it must be fast; the full
// concatenated text is returned when the stream completes.
type Generator interface {
	Stream(ctx context.Context, req Request, onDelta func(string)) (string, error)
}

// New creates a Generator from the given AI config.
func New(cfg *config.AIConfig, apiKey string) (Generator, error) {
	if cfg == nil || apiKey == "" {
		return nil, fmt.Errorf("AI not configured")
	}

	client := &http.Client{Timeout: 120 * time.Second}

	switch cfg.Provider {
	case "claude":
		model := cfg.Model
		if model == "" {
			model = "claude-sonnet-4-20250514"
		}
		return &claudeProvider{apiKey: apiKey, model: model, client: client, endpoint: claudeEndpoint}, nil
	case "openai":
		model := cfg.Model
		if model == "" {
			model = "gpt-4o-mini"
		}
		return &openaiProvider{apiKey: apiKey, model: model, client: client, endpoint: openaiEndpoint}, nil
	default:
		return nil, fmt.Errorf("unknown AI provider: %q (valid: claude, openai)", cfg.Provider)
	}
}
