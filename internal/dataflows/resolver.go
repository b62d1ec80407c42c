package dataflows

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dyike/CoinCortex/internal/models"
)

type alias struct {
	id    string
	name  string
	yahoo string
}

var defaultAliases = map[string]alias{
	"bitcoin":  {"bitcoin", "Bitcoin", "BTC-USD"},
	"btc":      {"bitcoin", "Bitcoin", "BTC-USD"},
	"ethereum": {"ethereum", "Ethereum", "ETH-USD"},
	"eth":      {"ethereum", "Ethereum", "ETH-USD"},
	"solana":   {"solana", "Solana", "SOL-USD"},
	"sol":      {"solana", "Solana", "SOL-USD"},
	"dogecoin": {"dogecoin", "Dogecoin", "DOGE-USD"},
	"doge":     {"dogecoin", "Dogecoin", "DOGE-USD"},
}

// Resolver maps user input to market identifiers. Its table is fixed at
// construction and safe for concurrent reads.
type Resolver struct {
	aliases map[string]alias
}

func NewResolver() *Resolver {
	table := make(map[string]alias, len(defaultAliases))
	for k, v := range defaultAliases {
		table[k] = v
	}
	return &Resolver{aliases: table}
}

// NormalizeQuery trims and lower-cases input.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.TrimSpace(query))
}

// Resolve never fails. Unknown input passes through normalized so the market
// provider can reject it authoritatively.
func (r *Resolver) Resolve(query string) models.Asset {
	q := NormalizeQuery(query)
	if a, ok := r.aliases[q]; ok {
		return models.Asset{Query: q, ID: a.id, Name: a.name, YahooTicker: a.yahoo, Aliased: true}
	}
	return models.Asset{
		Query:       q,
		ID:          q,
		Name:        capitalize(q),
		YahooTicker: strings.ToUpper(q) + "-USD",
	}
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}
