package dataflows

import "testing"

func TestResolveAliases(t *testing.T) {
	r := NewResolver()
	tests := []struct {
		in, id, name string
	}{
		{"btc", "bitcoin", "Bitcoin"},
		{"  BTC ", "bitcoin", "Bitcoin"},
		{"Bitcoin", "bitcoin", "Bitcoin"},
		{"eth", "ethereum", "Ethereum"},
		{"sol", "solana", "Solana"},
		{"DOGE", "dogecoin", "Dogecoin"},
	}
	for _, tt := range tests {
		a := r.Resolve(tt.in)
		if a.ID != tt.id || a.Name != tt.name || !a.Aliased {
			t.Errorf("Resolve(%q) = %+v, want id %q name %q", tt.in, a, tt.id, tt.name)
		}
	}
}

func TestResolvePassThrough(t *testing.T) {
	r := NewResolver()
	tests := []struct {
		in, id, name string
	}{
		{"not-a-real-coin", "not-a-real-coin", "Not-a-real-coin"},
		{"  Cardano\t", "cardano", "Cardano"},
		{"", "", ""},
	}
	for _, tt := range tests {
		a := r.Resolve(tt.in)
		if a.ID != tt.id || a.Name != tt.name || a.Aliased {
			t.Errorf("Resolve(%q) = %+v, want id %q name %q", tt.in, a, tt.id, tt.name)
		}
	}
	if got := r.Resolve("cardano").YahooTicker; got != "CARDANO-USD" {
		t.Errorf("unexpected fallback ticker %q", got)
	}
}

func TestResolverTableIsPrivateCopy(t *testing.T) {
	r := NewResolver()
	defaultAliases["btc"] = alias{"tampered", "Tampered", "X"}
	defer func() { defaultAliases["btc"] = alias{"bitcoin", "Bitcoin", "BTC-USD"} }()
	if got := r.Resolve("btc").ID; got != "bitcoin" {
		t.Fatalf("resolver table changed after construction: %q", got)
	}
}
