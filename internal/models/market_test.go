package models

import (
	"testing"
	"time"
)

func day(n int) time.Time {
	return time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, n)
}

func TestNormalizeSortsAndDedupes(t *testing.T) {
	s := &PriceSeries{Samples: []PriceSample{
		{Time: day(2), Price: 3},
		{Time: day(0), Price: 1},
		{Time: day(1), Price: 2},
		{Time: day(2), Price: 4},
	}}
	s.Normalize()

	if s.Len() != 3 {
		t.Fatalf("expected 3 samples, got %d", s.Len())
	}
	prices := s.Prices()
	want := []float64{1, 2, 4}
	for i := range want {
		if prices[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, prices)
		}
	}
}

func TestLatestPrefersQuote(t *testing.T) {
	s := &PriceSeries{Samples: []PriceSample{{Time: day(0), Price: 100, Volume: 5, HasVolume: true}}}
	latest, ok := s.Latest()
	if !ok || latest.Price != 100 {
		t.Fatalf("unexpected latest: %+v", latest)
	}

	s.Quote = &Quote{Price: 105, At: day(1)}
	latest, _ = s.Latest()
	if latest.Price != 105 || !latest.Time.Equal(day(1)) {
		t.Fatalf("expected quote to replace last point, got %+v", latest)
	}
	if latest.Volume != 5 {
		t.Fatalf("expected volume to carry over, got %v", latest.Volume)
	}

	empty := &PriceSeries{}
	if _, ok := empty.Latest(); ok {
		t.Fatal("expected no latest sample for empty series")
	}
}

func TestIndicatorSetGet(t *testing.T) {
	set := IndicatorSet{{Name: "sma_7", Value: 10}, {Name: "pct_change", Value: -2.5}}
	if v, ok := set.Get("pct_change"); !ok || v != -2.5 {
		t.Fatalf("unexpected pct_change: %v %v", v, ok)
	}
	if set.Has("rsi_14") {
		t.Fatal("rsi_14 should be absent")
	}
	if names := set.Names(); len(names) != 2 || names[0] != "sma_7" {
		t.Fatalf("unexpected names: %v", names)
	}
}
