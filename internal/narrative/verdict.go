package narrative

import (
	"encoding/json"
	"strings"

	"github.com/dyike/CoinCortex/internal/apperr"
	"github.com/dyike/CoinCortex/internal/models"
)

var (
	recommendations = []string{"Strong Buy", "Buy", "Hold", "Sell", "Strong Sell"}
	confidences     = []string{"High", "Medium", "Low"}
)

// VerdictSchema is the response schema sent with structured requests.
func VerdictSchema() map[string]any {
	return map[string]any{
		"type": "OBJECT",
		"properties": map[string]any{
			"analysis": map[string]any{
				"type":        "STRING",
				"description": "A concise 2-3 sentence analysis synthesizing the technical data and news.",
			},
			"recommendation": map[string]any{
				"type":        "STRING",
				"description": "A clear recommendation: 'Strong Buy', 'Buy', 'Hold', 'Sell', or 'Strong Sell'.",
			},
			"confidence": map[string]any{
				"type":        "STRING",
				"description": "'High', 'Medium', or 'Low' confidence in the recommendation.",
			},
		},
		"required": []string{"analysis", "recommendation", "confidence"},
	}
}

// ParseVerdict decodes a structured reply. A markdown code fence around the
// object is tolerated; anything else that is not the expected object is a
// parse error.
func ParseVerdict(text string) (*models.Verdict, error) {
	body := stripFence(text)
	var v models.Verdict
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, apperr.Wrap(apperr.ErrParse, "model returned invalid JSON: %w", err)
	}

	v.Analysis = strings.TrimSpace(v.Analysis)
	v.Recommendation = canonical(v.Recommendation, recommendations)
	v.Confidence = canonical(v.Confidence, confidences)

	var missing []string
	if v.Analysis == "" {
		missing = append(missing, "analysis")
	}
	if v.Recommendation == "" {
		missing = append(missing, "recommendation")
	}
	if v.Confidence == "" {
		missing = append(missing, "confidence")
	}
	if len(missing) > 0 {
		return nil, apperr.Wrap(apperr.ErrParse, "verdict is missing %s", strings.Join(missing, ", "))
	}
	return &v, nil
}

func stripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "```"))
}

// canonical fixes the case of known values and keeps unknown ones as given.
func canonical(v string, known []string) string {
	v = strings.TrimSpace(v)
	for _, k := range known {
		if strings.EqualFold(v, k) {
			return k
		}
	}
	return v
}
