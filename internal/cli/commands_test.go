package cli

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dyike/CoinCortex/config"
	"github.com/dyike/CoinCortex/internal/apperr"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{config.CredentialVar, "OPENAI_API_KEY", "DEEPSEEK_API_KEY", "LLM_PROVIDER", "LLM_MODEL", "MARKET_SOURCE", "HISTORY_DAYS"} {
		t.Setenv(k, "")
	}
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestVersion(t *testing.T) {
	out, err := runCmd(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if !strings.Contains(out, "CoinCortex v"+Version) {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestAnalyzeWithoutCredentialFailsBeforePrompt(t *testing.T) {
	clearProviderEnv(t)
	missing := filepath.Join(t.TempDir(), "none.env")

	prompted := false
	old := promptAsset
	promptAsset = func() (string, error) { prompted = true; return "btc", nil }
	defer func() { promptAsset = old }()

	for _, args := range [][]string{{"--env-file", missing}, {"analyze", "btc", "--env-file", missing}} {
		_, err := runCmd(t, args...)
		if !errors.Is(err, apperr.ErrConfiguration) {
			t.Fatalf("%v: expected configuration error, got %v", args, err)
		}
	}
	if prompted {
		t.Fatal("user should not be prompted without a credential")
	}
}

func TestConfigShowMasksKey(t *testing.T) {
	clearProviderEnv(t)
	missing := filepath.Join(t.TempDir(), "none.env")

	out, err := runCmd(t, "config", "show", "-k", "abcdef123456", "--env-file", missing)
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if strings.Contains(out, "abcdef123456") {
		t.Fatalf("key leaked in output:\n%s", out)
	}
	if !strings.Contains(out, "****3456 (from flag)") {
		t.Fatalf("expected masked key, got:\n%s", out)
	}
}

func TestConfigValidate(t *testing.T) {
	clearProviderEnv(t)
	missing := filepath.Join(t.TempDir(), "none.env")

	if _, err := runCmd(t, "config", "validate", "--env-file", missing); !errors.Is(err, apperr.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	out, err := runCmd(t, "config", "validate", "--api-key", "k", "--env-file", missing)
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	if !strings.Contains(out, "validation completed successfully") {
		t.Fatalf("unexpected output:\n%s", out)
	}
	if _, err := runCmd(t, "config", "validate", "-k", "k", "--days", "1000", "--env-file", missing); !errors.Is(err, apperr.ErrConfiguration) {
		t.Fatalf("out of range days should fail, got %v", err)
	}
}

func TestValidateAsset(t *testing.T) {
	for _, ok := range []string{"btc", " Bitcoin ", "usd-coin", "wrapped.eth"} {
		if err := ValidateAsset(ok); err != nil {
			t.Errorf("ValidateAsset(%q): %v", ok, err)
		}
	}
	for _, bad := range []any{"", "   ", "bit coin", "$btc", strings.Repeat("a", 65), 42} {
		if err := ValidateAsset(bad); err == nil {
			t.Errorf("ValidateAsset(%v) should fail", bad)
		}
	}
}

func TestDisplayErrorShowsHint(t *testing.T) {
	var buf bytes.Buffer
	DisplayError(&buf, apperr.Wrap(apperr.ErrNotFound, "no coin"))
	if !strings.Contains(buf.String(), "no coin") || !strings.Contains(buf.String(), "Check the coin identifier") {
		t.Fatalf("unexpected error output %q", buf.String())
	}
}
