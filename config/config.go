package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dyike/CoinCortex/internal/apperr"
	"github.com/dyike/CoinCortex/internal/logger"
)

const (
	ProviderGemini   = "gemini"
	ProviderOpenAI   = "openai"
	ProviderDeepSeek = "deepseek"

	SourceCoinGecko = "coingecko"
	SourceYahoo     = "yahoo"

	// CredentialVar is the variable that carries the Gemini key in the
	// environment and in the local .env file.
	CredentialVar = "GEMINI_API_KEY"

	DefaultEnvFile = ".env"
)

type Config struct {
	LLMProvider    string `json:"llm_provider"`
	LLMModel       string `json:"llm_model"`
	GeminiAPIKey   string `json:"gemini_api_key"`
	GeminiBaseURL  string `json:"gemini_base_url"`
	OpenAIAPIKey   string `json:"openai_api_key"`
	OpenAIBaseURL  string `json:"openai_base_url"`
	DeepSeekAPIKey string `json:"deepseek_api_key"`

	MarketSource     string `json:"market_source"`
	CoinGeckoBaseURL string `json:"coingecko_base_url"`
	VsCurrency       string `json:"vs_currency"`
	HistoryDays      int    `json:"history_days"`

	SMAWindows     []int         `json:"sma_windows"`
	RSIPeriod      int           `json:"rsi_period"`
	RequestTimeout time.Duration `json:"request_timeout"`
	MaxPromptChars int           `json:"max_prompt_chars"`

	News       bool   `json:"news"`
	Structured bool   `json:"structured"`
	LogLevel   string `json:"log_level"`
	EnvFile    string `json:"env_file"`

	// CredentialSource records where the active provider key came from:
	// "flag", "env", "file" or "" when missing.
	CredentialSource string `json:"credential_source"`

	keySources map[string]string
}

// Options carries values that came from the command line. Empty fields mean
// "not given".
type Options struct {
	APIKey     string
	Provider   string
	Model      string
	Source     string
	Days       int
	EnvFile    string
	News       bool
	Structured bool
	Debug      bool

	// Getenv replaces os.Getenv in tests.
	Getenv func(string) string
}

func DefaultConfig() *Config {
	return &Config{
		LLMProvider:      ProviderGemini,
		GeminiBaseURL:    "https://generativelanguage.googleapis.com/v1beta",
		OpenAIBaseURL:    "https://api.openai.com/v1",
		MarketSource:     SourceCoinGecko,
		CoinGeckoBaseURL: "https://api.coingecko.com/api/v3",
		VsCurrency:       "usd",
		HistoryDays:      90,
		SMAWindows:       []int{7, 20},
		RSIPeriod:        14,
		RequestTimeout:   30 * time.Second,
		MaxPromptChars:   4000,
		LogLevel:         "warn",
		EnvFile:          DefaultEnvFile,
	}
}

// DefaultModel returns the model used for provider when none is configured.
func DefaultModel(provider string) string {
	switch provider {
	case ProviderOpenAI:
		return "gpt-4o-mini"
	case ProviderDeepSeek:
		return "deepseek-chat"
	default:
		return "gemini-2.5-flash"
	}
}

// Load builds the run configuration once: defaults, then the optional env
// file, then the process environment, then explicit options. The process
// environment is never modified.
func Load(opts Options) (*Config, error) {
	getenv := opts.Getenv
	if getenv == nil {
		getenv = os.Getenv
	}

	cfg := DefaultConfig()
	if opts.EnvFile != "" {
		cfg.EnvFile = opts.EnvFile
	}

	file, err := ReadEnvFile(cfg.EnvFile)
	if err != nil {
		return nil, err
	}

	lookup := func(key string) (string, string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			return v, "env"
		}
		if v := strings.TrimSpace(file[key]); v != "" {
			return v, "file"
		}
		return "", ""
	}
	if err := cfg.apply(lookup); err != nil {
		return nil, err
	}
	cfg.applyOptions(opts)

	if cfg.LLMModel == "" {
		cfg.LLMModel = DefaultModel(cfg.LLMProvider)
	}
	return cfg, nil
}

// ReadEnvFile parses a KEY=VALUE file. A missing file yields an empty map.
func ReadEnvFile(path string) (map[string]string, error) {
	if path == "" {
		return map[string]string{}, nil
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, apperr.Wrap(apperr.ErrConfiguration, "parse %s: %w", path, err)
	}
	return values, nil
}

func (c *Config) apply(lookup func(string) (string, string)) error {
	if v, _ := lookup("LLM_PROVIDER"); v != "" {
		c.LLMProvider = strings.ToLower(v)
	}
	if v, _ := lookup("LLM_MODEL"); v != "" {
		c.LLMModel = v
	}
	if v, _ := lookup("GEMINI_BASE_URL"); v != "" {
		c.GeminiBaseURL = v
	}
	if v, _ := lookup("OPENAI_BASE_URL"); v != "" {
		c.OpenAIBaseURL = v
	}
	if v, _ := lookup("MARKET_SOURCE"); v != "" {
		c.MarketSource = strings.ToLower(v)
	}
	if v, _ := lookup("COINGECKO_BASE_URL"); v != "" {
		c.CoinGeckoBaseURL = v
	}
	if v, _ := lookup("VS_CURRENCY"); v != "" {
		c.VsCurrency = strings.ToLower(v)
	}
	if v, _ := lookup("HISTORY_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return apperr.Wrap(apperr.ErrConfiguration, "HISTORY_DAYS: %w", err)
		}
		c.HistoryDays = days
	}
	if v, _ := lookup("REQUEST_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return apperr.Wrap(apperr.ErrConfiguration, "REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	if v, _ := lookup("COINCORTEX_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}

	c.keySources = map[string]string{}
	var src string
	c.GeminiAPIKey, src = lookup(CredentialVar)
	c.keySources[ProviderGemini] = src
	c.OpenAIAPIKey, src = lookup("OPENAI_API_KEY")
	c.keySources[ProviderOpenAI] = src
	c.DeepSeekAPIKey, src = lookup("DEEPSEEK_API_KEY")
	c.keySources[ProviderDeepSeek] = src
	return nil
}

func (c *Config) applyOptions(opts Options) {
	if opts.Provider != "" {
		c.LLMProvider = strings.ToLower(opts.Provider)
	}
	if opts.Model != "" {
		c.LLMModel = opts.Model
	}
	if opts.Source != "" {
		c.MarketSource = strings.ToLower(opts.Source)
	}
	if opts.Days > 0 {
		c.HistoryDays = opts.Days
	}
	if opts.News {
		c.News = true
	}
	if opts.Structured {
		c.Structured = true
	}
	if opts.Debug {
		c.LogLevel = "debug"
	}

	c.CredentialSource = c.keySources[c.LLMProvider]
	if key := strings.TrimSpace(opts.APIKey); key != "" {
		c.setAPIKey(key)
		c.CredentialSource = "flag"
	}
}

func (c *Config) setAPIKey(key string) {
	switch c.LLMProvider {
	case ProviderOpenAI:
		c.OpenAIAPIKey = key
	case ProviderDeepSeek:
		c.DeepSeekAPIKey = key
	default:
		c.GeminiAPIKey = key
	}
}

// APIKey returns the credential for the active provider.
func (c *Config) APIKey() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return c.OpenAIAPIKey
	case ProviderDeepSeek:
		return c.DeepSeekAPIKey
	default:
		return c.GeminiAPIKey
	}
}

// CredentialVarName is the environment/file variable for the active provider.
func (c *Config) CredentialVarName() string {
	switch c.LLMProvider {
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderDeepSeek:
		return "DEEPSEEK_API_KEY"
	default:
		return CredentialVar
	}
}

// Validate reports an apperr.ErrConfiguration for anything that would make
// the run fail before it reaches the network.
func (c *Config) Validate() error {
	switch c.LLMProvider {
	case ProviderGemini, ProviderOpenAI, ProviderDeepSeek:
	default:
		return apperr.Wrap(apperr.ErrConfiguration, "unknown llm provider %q", c.LLMProvider)
	}
	switch c.MarketSource {
	case SourceCoinGecko, SourceYahoo:
	default:
		return apperr.Wrap(apperr.ErrConfiguration, "unknown market source %q", c.MarketSource)
	}
	if c.APIKey() == "" {
		return apperr.Wrap(apperr.ErrConfiguration, "%s not provided", c.CredentialVarName())
	}
	if c.HistoryDays < 2 || c.HistoryDays > 365 {
		return apperr.Wrap(apperr.ErrConfiguration, "history days must be between 2 and 365, got %d", c.HistoryDays)
	}
	for _, w := range c.SMAWindows {
		if w < 1 {
			return apperr.Wrap(apperr.ErrConfiguration, "sma window must be positive, got %d", w)
		}
	}
	if c.RSIPeriod < 1 {
		return apperr.Wrap(apperr.ErrConfiguration, "rsi period must be positive, got %d", c.RSIPeriod)
	}
	if c.RequestTimeout <= 0 {
		return apperr.Wrap(apperr.ErrConfiguration, "request timeout must be positive")
	}
	if c.MaxPromptChars < 200 {
		return apperr.Wrap(apperr.ErrConfiguration, "max prompt chars must be at least 200")
	}
	return nil
}

// Summary lists the resolved settings with secrets masked.
func (c *Config) Summary() [][2]string {
	windows := make([]string, len(c.SMAWindows))
	for i, w := range c.SMAWindows {
		windows[i] = strconv.Itoa(w)
	}
	credential := "❌ Not configured"
	if c.APIKey() != "" {
		credential = fmt.Sprintf("✅ %s (from %s)", logger.Mask(c.APIKey()), c.CredentialSource)
	}
	return [][2]string{
		{"LLM Provider", c.LLMProvider},
		{"Model", c.LLMModel},
		{"Credential", credential},
		{"Market Source", c.MarketSource},
		{"Quote Currency", c.VsCurrency},
		{"History Days", strconv.Itoa(c.HistoryDays)},
		{"SMA Windows", strings.Join(windows, ", ")},
		{"RSI Period", strconv.Itoa(c.RSIPeriod)},
		{"Request Timeout", c.RequestTimeout.String()},
		{"News Sentiment", strconv.FormatBool(c.News)},
		{"Structured Output", strconv.FormatBool(c.Structured)},
		{"Env File", c.EnvFile},
		{"Log Level", c.LogLevel},
	}
}
