package models

import (
	"sort"
	"time"
)

// Asset is a user query resolved to the identifier the market source uses.
type Asset struct {
	Query       string `json:"query"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	YahooTicker string `json:"yahoo_ticker"`
	Aliased     bool   `json:"aliased"`
}

// PriceSample is one point of a price history.
type PriceSample struct {
	Time      time.Time `json:"time"`
	Price     float64   `json:"price"`
	Volume    float64   `json:"volume,omitempty"`
	HasVolume bool      `json:"has_volume"`
}

// Quote is a current-price snapshot taken alongside the history.
type Quote struct {
	Price float64   `json:"price"`
	At    time.Time `json:"at"`
}

// PriceSeries holds samples ordered ascending by time.
type PriceSeries struct {
	AssetID  string        `json:"asset_id"`
	Currency string        `json:"currency"`
	Source   string        `json:"source"`
	Samples  []PriceSample `json:"samples"`
	Quote    *Quote        `json:"quote,omitempty"`
}

// Normalize sorts samples by time and drops duplicate timestamps, keeping the
// later entry for each.
func (s *PriceSeries) Normalize() {
	sort.SliceStable(s.Samples, func(i, j int) bool {
		return s.Samples[i].Time.Before(s.Samples[j].Time)
	})
	out := s.Samples[:0]
	for _, p := range s.Samples {
		if n := len(out); n > 0 && out[n-1].Time.Equal(p.Time) {
			out[n-1] = p
			continue
		}
		out = append(out, p)
	}
	s.Samples = out
}

func (s *PriceSeries) Len() int {
	return len(s.Samples)
}

// Prices returns the price column in time order.
func (s *PriceSeries) Prices() []float64 {
	prices := make([]float64, len(s.Samples))
	for i, p := range s.Samples {
		prices[i] = p.Price
	}
	return prices
}

// Latest returns the most recent sample. When a quote is present its price
// and time replace the last historical point.
func (s *PriceSeries) Latest() (PriceSample, bool) {
	if len(s.Samples) == 0 {
		if s.Quote == nil {
			return PriceSample{}, false
		}
		return PriceSample{Time: s.Quote.At, Price: s.Quote.Price}, true
	}
	last := s.Samples[len(s.Samples)-1]
	if s.Quote != nil && s.Quote.Price > 0 {
		last.Price = s.Quote.Price
		if !s.Quote.At.IsZero() {
			last.Time = s.Quote.At
		}
	}
	return last, true
}
