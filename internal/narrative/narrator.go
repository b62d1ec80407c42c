package narrative

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/schema"

	"github.com/dyike/CoinCortex/config"
)

// Request is one generation call.
type Request struct {
	Messages []*schema.Message
	// Search asks the back end to ground the answer with web search. Back ends
	// without a search tool ignore it.
	Search bool
	// Schema, when set, asks for a JSON body matching it.
	Schema map[string]any
}

// Narrator performs exactly one outbound call per Generate and returns the
// generated text unmodified.
type Narrator interface {
	Provider() string
	Model() string
	Generate(ctx context.Context, req Request) (string, error)
}

// New builds the narrator for the configured provider.
func New(ctx context.Context, cfg *config.Config) (Narrator, error) {
	switch cfg.LLMProvider {
	case config.ProviderGemini:
		return NewGeminiClient(GeminiOptions{
			BaseURL: cfg.GeminiBaseURL,
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.LLMModel,
			Timeout: cfg.RequestTimeout,
		}), nil
	case config.ProviderOpenAI, config.ProviderDeepSeek:
		return NewEinoNarrator(ctx, cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}
