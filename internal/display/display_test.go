package display

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dyike/CoinCortex/internal/models"
)

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		v        float64
		currency string
		want     string
	}{
		{67123.456, "usd", "$67,123.46"},
		{1234567.5, "", "$1,234,567.50"},
		{999, "usd", "$999.00"},
		{0.08123, "usd", "$0.081230"},
		{-1500, "eur", "-1,500.00 EUR"},
	}
	for _, tt := range tests {
		if got := FormatMoney(tt.v, tt.currency); got != tt.want {
			t.Errorf("FormatMoney(%v, %q) = %q, want %q", tt.v, tt.currency, got, tt.want)
		}
	}
}

func report() *models.AnalysisReport {
	return &models.AnalysisReport{
		Asset:    models.Asset{ID: "bitcoin", Name: "Bitcoin"},
		Latest:   models.PriceSample{Price: 67000},
		Currency: "usd",
		Source:   "coingecko",
		Samples:  90,
		Indicators: models.IndicatorSet{
			{Name: "sma_20", Label: "20-Day SMA", Value: 65000, Unit: models.UnitPrice},
			{Name: "pct_change", Label: "Change over period", Value: 4.5, Unit: models.UnitPercent},
			{Name: "rsi_14", Label: "14-Day RSI", Value: 61.2, Unit: models.UnitIndex},
		},
		Narrative: "Bitcoin trades above its 20-day average.",
		Provider:  "gemini",
		Model:     "gemini-2.5-flash",
	}
}

func TestShowNarrative(t *testing.T) {
	var buf bytes.Buffer
	NewResultsDisplay(&buf).Show(report())
	out := buf.String()
	for _, want := range []string{"Bitcoin (bitcoin)", "$67,000.00", "$65,000.00", "+4.50%", "61.20", "Bitcoin trades above", "90 samples from coingecko"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestShowVerdict(t *testing.T) {
	r := report()
	r.Verdict = &models.Verdict{Analysis: "Uptrend intact.", Recommendation: "Buy", Confidence: "High"}
	r.News = "Mostly positive."
	var buf bytes.Buffer
	NewResultsDisplay(&buf).Show(r)
	out := buf.String()
	for _, want := range []string{"Uptrend intact.", "Buy", "High", "News Sentiment", "Mostly positive."} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestJSONOmitsPrompt(t *testing.T) {
	r := report()
	r.Prompt = "secret prompt"
	var buf bytes.Buffer
	if err := NewResultsDisplay(&buf).JSON(r); err != nil {
		t.Fatalf("JSON: %v", err)
	}
	if strings.Contains(buf.String(), "secret prompt") {
		t.Fatalf("prompt should not be serialized")
	}
	var back models.AnalysisReport
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		t.Fatalf("output is not JSON: %v", err)
	}
	if back.Asset.ID != "bitcoin" || len(back.Indicators) != 3 {
		t.Fatalf("unexpected round trip %+v", back)
	}
}
