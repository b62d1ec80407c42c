package narrative

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cloudwego/eino/schema"

	"github.com/dyike/CoinCortex/internal/apperr"
)

type capturedRequest struct {
	path string
	key  string
	body map[string]any
}

func newGeminiServer(t *testing.T, status int, reply string) (*httptest.Server, *[]capturedRequest) {
	t.Helper()
	var got []capturedRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		var body map[string]any
		_ = json.Unmarshal(raw, &body)
		got = append(got, capturedRequest{path: r.URL.Path, key: r.Header.Get("x-goog-api-key"), body: body})
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)
	return srv, &got
}

func newTestGemini(url, key string) *GeminiClient {
	return NewGeminiClient(GeminiOptions{BaseURL: url, APIKey: key, Model: "gemini-2.5-flash", Timeout: 5 * time.Second})
}

func TestGeminiGenerate(t *testing.T) {
	reply := `{"candidates":[{"content":{"parts":[{"text":"Bitcoin looks "},{"text":"steady."}]},"finishReason":"STOP"}]}`
	srv, got := newGeminiServer(t, http.StatusOK, reply)
	g := newTestGemini(srv.URL, "secret-key")

	text, err := g.Generate(context.Background(), Request{
		Messages: []*schema.Message{schema.SystemMessage("persona"), schema.UserMessage("analyze bitcoin")},
		Search:   true,
		Schema:   VerdictSchema(),
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if text != "Bitcoin looks steady." {
		t.Fatalf("unexpected text %q", text)
	}

	if len(*got) != 1 {
		t.Fatalf("expected exactly one call, got %d", len(*got))
	}
	req := (*got)[0]
	if req.path != "/models/gemini-2.5-flash:generateContent" {
		t.Fatalf("unexpected path %q", req.path)
	}
	if req.key != "secret-key" {
		t.Fatalf("api key not sent in header, got %q", req.key)
	}
	for _, field := range []string{"contents", "systemInstruction", "tools", "generationConfig"} {
		if _, ok := req.body[field]; !ok {
			t.Errorf("request body missing %s: %v", field, req.body)
		}
	}
	contents := req.body["contents"].([]any)
	if len(contents) != 1 {
		t.Fatalf("system message should not be sent as content: %v", contents)
	}
}

func TestGeminiMinimalBody(t *testing.T) {
	srv, got := newGeminiServer(t, http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"ok"}]}}]}`)
	g := newTestGemini(srv.URL, "k")
	if _, err := g.Generate(context.Background(), Request{Messages: []*schema.Message{schema.UserMessage("hi")}}); err != nil {
		t.Fatalf("Generate: %v", err)
	}
	for _, field := range []string{"systemInstruction", "tools", "generationConfig"} {
		if _, ok := (*got)[0].body[field]; ok {
			t.Errorf("unexpected %s in plain request", field)
		}
	}
}

func TestGeminiErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		reply  string
		want   error
	}{
		{"bad key 400", http.StatusBadRequest, `{"error":{"code":400,"message":"API key not valid. Please pass a valid API key.","status":"INVALID_ARGUMENT"}}`, apperr.ErrAuthentication},
		{"unauthorized", http.StatusUnauthorized, `{"error":{"code":401,"message":"unauthenticated"}}`, apperr.ErrAuthentication},
		{"forbidden", http.StatusForbidden, `{"error":{"code":403,"message":"permission denied","status":"PERMISSION_DENIED"}}`, apperr.ErrAuthentication},
		{"quota", http.StatusTooManyRequests, `{"error":{"code":429,"message":"quota","status":"RESOURCE_EXHAUSTED"}}`, apperr.ErrRateLimit},
		{"unavailable", http.StatusServiceUnavailable, `overloaded`, apperr.ErrTransientNetwork},
		{"other 400", http.StatusBadRequest, `{"error":{"code":400,"message":"bad schema","status":"INVALID_ARGUMENT"}}`, apperr.ErrUpstream},
		{"no text", http.StatusOK, `{"candidates":[{"content":{"parts":[{}]},"finishReason":"SAFETY"}]}`, apperr.ErrParse},
		{"no candidates", http.StatusOK, `{"candidates":[]}`, apperr.ErrParse},
		{"not json", http.StatusOK, `<html>`, apperr.ErrParse},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newGeminiServer(t, tt.status, tt.reply)
			_, err := newTestGemini(srv.URL, "secret-key").Generate(context.Background(), Request{
				Messages: []*schema.Message{schema.UserMessage("hi")},
			})
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if strings.Contains(err.Error(), "secret-key") {
				t.Fatalf("error leaks the api key: %v", err)
			}
		})
	}
}

func TestGeminiMissingKey(t *testing.T) {
	srv, got := newGeminiServer(t, http.StatusOK, `{}`)
	_, err := newTestGemini(srv.URL, "").Generate(context.Background(), Request{})
	if !errors.Is(err, apperr.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if len(*got) != 0 {
		t.Fatalf("no request should be sent without a key")
	}
}
