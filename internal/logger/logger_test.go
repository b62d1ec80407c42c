package logger

import "testing"

func TestParseLevel(t *testing.T) {
	tests := map[string]Level{
		"debug":   LevelDebug,
		" INFO ":  LevelInfo,
		"warn":    LevelWarn,
		"error":   LevelError,
		"verbose": LevelWarn,
		"":        LevelWarn,
	}
	for in, want := range tests {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %d, want %d", in, got, want)
		}
	}
}

func TestMaskAndRedact(t *testing.T) {
	if got := Mask("abcdefgh"); got != "****efgh" {
		t.Fatalf("unexpected mask: %s", got)
	}
	if got := Mask("abc"); got != "****" {
		t.Fatalf("unexpected short mask: %s", got)
	}
	url := "https://host/v1beta/models/x:generateContent?key=secret-123456"
	if got := Redact(url, "secret-123456"); got != "https://host/v1beta/models/x:generateContent?key=****3456" {
		t.Fatalf("unexpected redaction: %s", got)
	}
	if got := Redact(url, ""); got != url {
		t.Fatalf("empty secret should leave input unchanged")
	}
}
