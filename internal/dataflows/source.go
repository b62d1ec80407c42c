package dataflows

import (
	"context"
	"fmt"
	"time"

	"github.com/dyike/CoinCortex/config"
	"github.com/dyike/CoinCortex/internal/models"
)

// Window selects how much history to request.
type Window struct {
	Days     int
	Currency string
}

func (w Window) withDefaults() Window {
	if w.Days <= 0 {
		w.Days = 90
	}
	if w.Currency == "" {
		w.Currency = "usd"
	}
	return w
}

// Source fetches a price history for a resolved asset. Implementations make
// a small fixed number of requests and never retry.
type Source interface {
	Name() string
	FetchSeries(ctx context.Context, asset models.Asset, w Window) (*models.PriceSeries, error)
}

// NewSource builds the market source named in cfg.
func NewSource(cfg *config.Config) (Source, error) {
	switch cfg.MarketSource {
	case config.SourceCoinGecko:
		return NewCoinGeckoClient(cfg.CoinGeckoBaseURL, cfg.RequestTimeout), nil
	case config.SourceYahoo:
		return NewYahooSource(), nil
	default:
		return nil, fmt.Errorf("unknown market source %q", cfg.MarketSource)
	}
}

func msToTime(ms float64) time.Time {
	return time.UnixMilli(int64(ms)).UTC()
}
