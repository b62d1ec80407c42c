package display

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/dyike/CoinCortex/internal/models"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#10B981"))

	labelStyle = lipgloss.NewStyle().Bold(true)

	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))

	narrativeStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	bullishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true)
	bearishStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true)
	neutralStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true)
)

const labelWidth = 18

// ResultsDisplay renders a finished report.
type ResultsDisplay struct {
	out   io.Writer
	width int
}

func NewResultsDisplay(out io.Writer) *ResultsDisplay {
	return &ResultsDisplay{out: out, width: 80}
}

// Show prints the technical data, the narrative and the verdict if any.
func (d *ResultsDisplay) Show(r *models.AnalysisReport) {
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, titleStyle.Render(fmt.Sprintf("📈 %s (%s)", r.Asset.Name, r.Asset.ID)))
	d.showTechnical(r)
	if r.News != "" {
		d.section("--- News Sentiment ---")
		fmt.Fprintln(d.out, "  "+r.News)
	}
	d.showNarrative(r)
	d.showFooter(r)
}

// JSON writes the report as indented JSON.
func (d *ResultsDisplay) JSON(r *models.AnalysisReport) error {
	enc := json.NewEncoder(d.out)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

func (d *ResultsDisplay) showTechnical(r *models.AnalysisReport) {
	d.section("--- Live Technical Data ---")
	d.row("Current Price:", FormatMoney(r.Latest.Price, r.Currency))
	for _, ind := range r.Indicators {
		d.row(ind.Label+":", formatIndicator(ind, r.Currency))
	}
	if len(r.Indicators) == 0 {
		fmt.Fprintln(d.out, mutedStyle.Render("  Not enough history to compute indicators."))
	}
}

func (d *ResultsDisplay) showNarrative(r *models.AnalysisReport) {
	d.section("--- AI Analyst Report ---")
	if r.Verdict == nil {
		fmt.Fprintln(d.out, narrativeStyle.Width(d.width).Render(strings.TrimSpace(r.Narrative)))
		return
	}
	d.row("Analysis:", r.Verdict.Analysis)
	d.row("Recommendation:", recommendationStyle(r.Verdict.Recommendation).Render(r.Verdict.Recommendation))
	d.row("Confidence:", r.Verdict.Confidence)
}

func (d *ResultsDisplay) showFooter(r *models.AnalysisReport) {
	footer := fmt.Sprintf("%d samples from %s · %s/%s", r.Samples, r.Source, r.Provider, r.Model)
	if !r.Latest.Time.IsZero() {
		footer += " · as of " + r.Latest.Time.UTC().Format("2006-01-02 15:04 MST")
	}
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, mutedStyle.Render(footer))
}

func (d *ResultsDisplay) section(title string) {
	fmt.Fprintln(d.out)
	fmt.Fprintln(d.out, sectionStyle.Render(title))
}

func (d *ResultsDisplay) row(label, value string) {
	fmt.Fprintf(d.out, "  %s %s\n", labelStyle.Render(fmt.Sprintf("%-*s", labelWidth, label)), value)
}

func recommendationStyle(rec string) lipgloss.Style {
	switch rec {
	case "Strong Buy", "Buy":
		return bullishStyle
	case "Sell", "Strong Sell":
		return bearishStyle
	default:
		return neutralStyle
	}
}

func formatIndicator(ind models.Indicator, currency string) string {
	switch ind.Unit {
	case models.UnitPrice:
		return FormatMoney(ind.Value, currency)
	case models.UnitPercent:
		if ind.Name == "pct_change" && ind.Value > 0 {
			return fmt.Sprintf("+%.2f%%", ind.Value)
		}
		return fmt.Sprintf("%.2f%%", ind.Value)
	default:
		return fmt.Sprintf("%.2f", ind.Value)
	}
}

// FormatMoney renders v with thousands separators, two decimals, or six
// below one unit.
func FormatMoney(v float64, currency string) string {
	places := int32(2)
	if math.Abs(v) < 1 {
		places = 6
	}
	s := decimal.NewFromFloat(v).StringFixed(places)

	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac, _ := strings.Cut(s, ".")
	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	s = sign + b.String()
	if frac != "" {
		s += "." + frac
	}

	if currency == "" || strings.EqualFold(currency, "usd") {
		return "$" + s
	}
	return s + " " + strings.ToUpper(currency)
}
