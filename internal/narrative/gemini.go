package narrative

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/cloudwego/eino/schema"
	"github.com/go-resty/resty/v2"

	"github.com/dyike/CoinCortex/internal/apperr"
	"github.com/dyike/CoinCortex/internal/logger"
)

const gemini = "gemini"

type GeminiOptions struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// GeminiClient calls models/{model}:generateContent. The key travels in the
// x-goog-api-key header so it never appears in URLs or transport errors.
type GeminiClient struct {
	client *resty.Client
	apiKey string
	model  string
}

func NewGeminiClient(opts GeminiOptions) *GeminiClient {
	if opts.BaseURL == "" {
		opts.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(opts.BaseURL, "/"))
	client.SetTimeout(opts.Timeout)
	client.SetHeader("Content-Type", "application/json")

	return &GeminiClient{client: client, apiKey: opts.APIKey, model: opts.Model}
}

func (g *GeminiClient) Provider() string { return gemini }
func (g *GeminiClient) Model() string    { return g.model }

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent   `json:"contents"`
	SystemInstruction *geminiContent    `json:"systemInstruction,omitempty"`
	Tools             []map[string]any  `json:"tools,omitempty"`
	GenerationConfig  *generationConfig `json:"generationConfig,omitempty"`
}

type generationConfig struct {
	ResponseMimeType string         `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]any `json:"responseSchema,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text *string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback *struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
}

type geminiError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (g *GeminiClient) Generate(ctx context.Context, req Request) (string, error) {
	if g.apiKey == "" {
		return "", apperr.Wrap(apperr.ErrConfiguration, "gemini api key is empty")
	}

	body := buildGeminiRequest(req)
	resp, err := g.client.R().
		SetContext(ctx).
		SetHeader("x-goog-api-key", g.apiKey).
		SetPathParam("model", g.model).
		SetBody(body).
		Post("/models/{model}:generateContent")
	if err != nil {
		return "", apperr.FromTransport(gemini, err)
	}
	logger.Debugf("gemini: POST %s -> %d in %s", resp.Request.URL, resp.StatusCode(), resp.Time())

	if resp.StatusCode() != http.StatusOK {
		return "", classifyGemini(resp.StatusCode(), resp.Body())
	}
	return extractText(resp.Body())
}

func buildGeminiRequest(req Request) *geminiRequest {
	out := &geminiRequest{}
	var system []string
	for _, m := range req.Messages {
		if m == nil || m.Content == "" {
			continue
		}
		switch m.Role {
		case schema.System:
			system = append(system, m.Content)
		case schema.Assistant:
			out.Contents = append(out.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			out.Contents = append(out.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}
	if len(system) > 0 {
		out.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: strings.Join(system, "\n\n")}}}
	}
	if req.Search {
		out.Tools = []map[string]any{{"google_search": map[string]any{}}}
	}
	if req.Schema != nil {
		out.GenerationConfig = &generationConfig{
			ResponseMimeType: "application/json",
			ResponseSchema:   req.Schema,
		}
	}
	return out
}

// extractText joins the text parts of the first candidate.
func extractText(body []byte) (string, error) {
	var r geminiResponse
	if err := json.Unmarshal(body, &r); err != nil {
		return "", apperr.Wrap(apperr.ErrParse, "decode gemini response: %w", err)
	}
	if len(r.Candidates) == 0 {
		if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
			return "", apperr.Wrap(apperr.ErrUpstream, "gemini blocked the prompt: %s", r.PromptFeedback.BlockReason)
		}
		return "", apperr.Wrap(apperr.ErrParse, "gemini response has no candidates")
	}

	var texts []string
	for _, p := range r.Candidates[0].Content.Parts {
		if p.Text != nil {
			texts = append(texts, *p.Text)
		}
	}
	if len(texts) == 0 {
		return "", apperr.Wrap(apperr.ErrParse, "gemini candidate has no text (finish reason %q)", r.Candidates[0].FinishReason)
	}
	return strings.Join(texts, ""), nil
}

// classifyGemini maps error bodies. Gemini answers an invalid key with 400
// INVALID_ARGUMENT rather than 401.
func classifyGemini(status int, body []byte) error {
	var e geminiError
	msg := string(body)
	if err := json.Unmarshal(body, &e); err == nil && e.Error.Message != "" {
		msg = e.Error.Message
		if e.Error.Status != "" {
			msg = e.Error.Status + ": " + msg
		}
	}
	if status == http.StatusBadRequest && strings.Contains(strings.ToLower(msg), "api key") {
		return apperr.Wrap(apperr.ErrAuthentication, "gemini rejected the api key: %s", msg)
	}
	return apperr.FromStatus(gemini, status, msg)
}
