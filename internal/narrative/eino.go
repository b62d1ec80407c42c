package narrative

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/cloudwego/eino-ext/components/model/deepseek"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"github.com/dyike/CoinCortex/config"
	"github.com/dyike/CoinCortex/internal/apperr"
	"github.com/dyike/CoinCortex/internal/logger"
)

const maxTokens = 2000

// EinoNarrator serves the openai and deepseek providers through eino chat
// models. Web search is not available on these back ends.
type EinoNarrator struct {
	provider string
	model    string
	chat     model.BaseChatModel
	timeout  time.Duration
}

func NewEinoNarrator(ctx context.Context, cfg *config.Config) (*EinoNarrator, error) {
	var (
		chat model.BaseChatModel
		err  error
	)
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		tokens := maxTokens
		chat, err = openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL:   cfg.OpenAIBaseURL,
			APIKey:    cfg.OpenAIAPIKey,
			Model:     cfg.LLMModel,
			MaxTokens: &tokens,
		})
	case config.ProviderDeepSeek:
		chat, err = deepseek.NewChatModel(ctx, &deepseek.ChatModelConfig{
			APIKey:    cfg.DeepSeekAPIKey,
			Model:     cfg.LLMModel,
			MaxTokens: maxTokens,
		})
	default:
		return nil, fmt.Errorf("provider %q is not served by eino", cfg.LLMProvider)
	}
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrConfiguration, "create %s chat model: %w", cfg.LLMProvider, err)
	}
	return NewEinoNarratorWithModel(cfg.LLMProvider, cfg.LLMModel, chat, cfg.RequestTimeout), nil
}

// NewEinoNarratorWithModel wraps an existing chat model.
func NewEinoNarratorWithModel(provider, modelName string, chat model.BaseChatModel, timeout time.Duration) *EinoNarrator {
	return &EinoNarrator{provider: provider, model: modelName, chat: chat, timeout: timeout}
}

func (e *EinoNarrator) Provider() string { return e.provider }
func (e *EinoNarrator) Model() string    { return e.model }

func (e *EinoNarrator) Generate(ctx context.Context, req Request) (string, error) {
	if req.Search {
		logger.Debugf("%s: web search is not supported, answering from the prompt only", e.provider)
	}
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	msg, err := e.chat.Generate(ctx, req.Messages)
	if err != nil {
		return "", classifyModelError(e.provider, err)
	}
	if msg == nil {
		return "", apperr.Wrap(apperr.ErrParse, "%s returned no message", e.provider)
	}
	logger.Debugf("%s: generated %d chars", e.provider, len(msg.Content))
	return msg.Content, nil
}

var statusPattern = regexp.MustCompile(`status(?: code)?[:= ]+(\d{3})`)

// classifyModelError recovers the HTTP status from SDK error text.
func classifyModelError(provider string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperr.FromTransport(provider, err)
	}
	msg := err.Error()
	if m := statusPattern.FindStringSubmatch(strings.ToLower(msg)); m != nil {
		if code, convErr := strconv.Atoi(m[1]); convErr == nil && code >= 400 {
			return apperr.FromStatus(provider, code, msg)
		}
	}
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "unauthorized"), strings.Contains(lower, "invalid api key"), strings.Contains(lower, "incorrect api key"):
		return apperr.Wrap(apperr.ErrAuthentication, "%s: %w", provider, err)
	case strings.Contains(lower, "rate limit"), strings.Contains(lower, "too many requests"):
		return apperr.Wrap(apperr.ErrRateLimit, "%s: %w", provider, err)
	}
	return apperr.FromTransport(provider, err)
}
