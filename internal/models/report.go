package models

import "time"

// Verdict is the optional structured answer requested with --structured.
type Verdict struct {
	Analysis       string `json:"analysis"`
	Recommendation string `json:"recommendation"`
	Confidence     string `json:"confidence"`
}

// AnalysisReport is everything one run produces.
type AnalysisReport struct {
	Asset      Asset        `json:"asset"`
	Latest     PriceSample  `json:"latest"`
	Currency   string       `json:"currency"`
	Source     string       `json:"source"`
	Samples    int          `json:"samples"`
	Indicators IndicatorSet `json:"indicators"`
	News       string       `json:"news,omitempty"`
	Prompt     string       `json:"-"`
	Narrative  string       `json:"narrative"`
	Verdict    *Verdict     `json:"verdict,omitempty"`
	Provider   string       `json:"provider"`
	Model      string       `json:"model"`
	CreatedAt  time.Time    `json:"created_at"`
}
