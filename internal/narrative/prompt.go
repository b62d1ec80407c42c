// Package narrative turns market data into a prompt and asks a generative
// model for the analysis text.
package narrative

import (
	"context"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/cloudwego/eino/components/prompt"
	"github.com/cloudwego/eino/schema"
	"github.com/shopspring/decimal"

	"github.com/dyike/CoinCortex/internal/models"
)

// newsLimit caps the externally sourced news text inside the prompt.
const newsLimit = 800

const analysisTemplate = `Analyze the market for {name} (market id: {id}).

Here is the live data:
{data}
{news}
Analysis guidance:
{guidance}`

// PromptInput is everything the analysis prompt may mention.
type PromptInput struct {
	Asset      models.Asset
	Latest     models.PriceSample
	HasLatest  bool
	Currency   string
	Indicators models.IndicatorSet
	News       string
	Structured bool
}

// PromptBuilder renders analysis and news prompts. The user message of an
// analysis prompt never exceeds maxChars bytes.
type PromptBuilder struct {
	maxChars   int
	persona    string
	structured string
	analysis   prompt.ChatTemplate
	news       prompt.ChatTemplate
}

func NewPromptBuilder(maxChars int) *PromptBuilder {
	return &PromptBuilder{
		maxChars:   maxChars,
		persona:    mustPrompt("analyst"),
		structured: mustPrompt("structured"),
		analysis: prompt.FromMessages(schema.FString,
			schema.SystemMessage("{system_message}"),
			schema.UserMessage(analysisTemplate),
		),
		news: prompt.FromMessages(schema.FString,
			schema.UserMessage(mustPrompt("news")),
		),
	}
}

// Analysis builds the system and user messages for the main call.
func (b *PromptBuilder) Analysis(ctx context.Context, in PromptInput) ([]*schema.Message, error) {
	system := b.persona
	if in.Structured {
		system += "\n\n" + b.structured
	}
	name := in.Asset.Name
	if name == "" {
		name = in.Asset.ID
	}

	vars := map[string]any{
		"system_message": system,
		"name":           name,
		"id":             in.Asset.ID,
		"data":           dataLines(in),
		"news":           newsSection(in.News),
		"guidance":       guidanceLines(in.Indicators),
	}
	msgs, err := b.analysis.Format(ctx, vars)
	if err != nil {
		return nil, fmt.Errorf("format analysis prompt: %w", err)
	}
	if n := len(msgs); n > 0 {
		msgs[n-1].Content = truncate(msgs[n-1].Content, b.maxChars)
	}
	return msgs, nil
}

// News builds the single message used for the sentiment lookup.
func (b *PromptBuilder) News(ctx context.Context, name string) ([]*schema.Message, error) {
	msgs, err := b.news.Format(ctx, map[string]any{"name": name})
	if err != nil {
		return nil, fmt.Errorf("format news prompt: %w", err)
	}
	return msgs, nil
}

func dataLines(in PromptInput) string {
	var sb strings.Builder
	if in.HasLatest {
		fmt.Fprintf(&sb, "- Current Price: %s\n", FormatPrice(in.Latest.Price, in.Currency))
		if !in.Latest.Time.IsZero() {
			fmt.Fprintf(&sb, "- As of: %s\n", in.Latest.Time.UTC().Format("2006-01-02 15:04 MST"))
		}
	}
	for _, ind := range in.Indicators {
		fmt.Fprintf(&sb, "- %s: %s\n", ind.Label, FormatValue(ind, in.Currency))
	}
	if len(in.Indicators) == 0 {
		sb.WriteString("- No indicators could be computed from the available history.\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

func newsSection(news string) string {
	news = strings.TrimSpace(news)
	if news == "" {
		return ""
	}
	return "\nHere is the latest news sentiment:\n\"" + truncate(news, newsLimit) + "\"\n"
}

func guidanceLines(set models.IndicatorSet) string {
	var hasSMA, hasRSI bool
	for _, ind := range set {
		hasSMA = hasSMA || strings.HasPrefix(ind.Name, "sma_")
		hasRSI = hasRSI || strings.HasPrefix(ind.Name, "rsi_")
	}
	var lines []string
	if hasSMA {
		lines = append(lines, "- If Price > SMA, it's a bullish signal. If Price < SMA, it's bearish.")
	}
	if hasRSI {
		lines = append(lines, "- If RSI > 70, it's overbought (bearish). If RSI < 30, it's oversold (bullish).")
	}
	lines = append(lines, "- Synthesize the available signals into a short, balanced conclusion.")
	return strings.Join(lines, "\n")
}

// FormatPrice renders a price with two decimals, or six below one unit.
func FormatPrice(v float64, currency string) string {
	places := int32(2)
	if math.Abs(v) < 1 {
		places = 6
	}
	s := decimal.NewFromFloat(v).StringFixed(places)
	if currency == "" || strings.EqualFold(currency, "usd") {
		return "$" + s
	}
	return s + " " + strings.ToUpper(currency)
}

func FormatValue(ind models.Indicator, currency string) string {
	switch ind.Unit {
	case models.UnitPrice:
		return FormatPrice(ind.Value, currency)
	case models.UnitPercent:
		return fmt.Sprintf("%.2f%%", ind.Value)
	default:
		return fmt.Sprintf("%.2f", ind.Value)
	}
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	const ellipsis = "..."
	cut := max - len(ellipsis)
	if cut < 0 {
		cut = 0
	}
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + ellipsis
}
