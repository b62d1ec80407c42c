package apperr

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestFromStatus(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{404, ErrNotFound},
		{429, ErrRateLimit},
		{401, ErrAuthentication},
		{403, ErrAuthentication},
		{500, ErrTransientNetwork},
		{503, ErrTransientNetwork},
		{400, ErrUpstream},
	}
	for _, tt := range tests {
		err := FromStatus("coingecko", tt.status, `{"error":"x"}`)
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: expected %v, got %v", tt.status, tt.want, err)
		}
		if Kind(err) != tt.want {
			t.Errorf("status %d: Kind returned %v", tt.status, Kind(err))
		}
	}
}

func TestFromStatusTruncatesBody(t *testing.T) {
	err := FromStatus("gemini", 500, strings.Repeat("a", 500))
	if len(err.Error()) > 300 {
		t.Fatalf("expected truncated message, got %d chars", len(err.Error()))
	}
}

func TestFromTransport(t *testing.T) {
	if err := FromTransport("gemini", nil); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}

	err := FromTransport("gemini", fmt.Errorf("dial: %w", context.DeadlineExceeded))
	if !errors.Is(err, ErrTransientNetwork) {
		t.Fatalf("expected transient network error, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected original cause to be preserved, got %v", err)
	}

	already := Wrap(ErrRateLimit, "slow down")
	if got := FromTransport("gemini", already); got != already {
		t.Fatalf("expected classified error to pass through, got %v", got)
	}
}

func TestKindUnclassified(t *testing.T) {
	if Kind(errors.New("boom")) != nil {
		t.Fatal("expected nil kind for plain error")
	}
	if Hint(errors.New("boom")) != "" {
		t.Fatal("expected no hint for plain error")
	}
}

func TestHintNotFoundMentionsIdentifier(t *testing.T) {
	err := Wrap(ErrNotFound, "coin %q", "not-a-real-coin")
	if !strings.Contains(Hint(err), "identifier") {
		t.Fatalf("unexpected hint: %s", Hint(err))
	}
}
