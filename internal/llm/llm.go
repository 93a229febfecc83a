// Package llm talks to the text-generation providers behind meal
// suggestions and meal details.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotConfigured is returned when the selected provider is missing its
// endpoint or API key.
var ErrNotConfigured = errors.New("LLM service is not configured")

// Prompt is one system + user exchange. JSON asks the provider for a
// JSON response body.
type Prompt struct {
	System      string
	User        string
	JSON        bool
	Temperature float32
}

// TextGenerator produces a single completion for a prompt.
type TextGenerator interface {
	GenerateContent(ctx context.Context, p Prompt) (string, error)
}

const (
	ProviderOpenAI = "openai"
	ProviderGemini = "gemini"
)

// Config holds provider settings from environment variables.
type Config struct {
	Provider     string // "openai" (default) or "gemini"
	APIURL       string // base URL of an OpenAI-compatible API
	APIKey       string
	Model        string
	GeminiAPIKey string
	GeminiModel  string
}

// New returns the generator for the configured provider. A provider without
// credentials yields a generator that always fails with ErrNotConfigured,
// so the server still starts.
func New(ctx context.Context, cfg Config) (TextGenerator, error) {
	switch cfg.Provider {
	case "", ProviderOpenAI:
		return NewChatClient(cfg.APIURL, cfg.APIKey, cfg.Model), nil
	case ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			return unconfigured{}, nil
		}
		return NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", cfg.Provider)
	}
}

type unconfigured struct{}

func (unconfigured) GenerateContent(context.Context, Prompt) (string, error) {
	return "", ErrNotConfigured
}
