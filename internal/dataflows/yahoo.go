package dataflows

import (
	"context"
	"strings"
	"time"

	finance "github.com/piquette/finance-go"
	"github.com/piquette/finance-go/chart"
	"github.com/piquette/finance-go/datetime"
	"github.com/piquette/finance-go/quote"

	"github.com/dyike/CoinCortex/internal/apperr"
	"github.com/dyike/CoinCortex/internal/logger"
	"github.com/dyike/CoinCortex/internal/models"
)

const yahoo = "yahoo"

// YahooSource reads daily bars for "<SYMBOL>-USD" tickers from Yahoo Finance.
// finance-go does not take a context, so cancellation only applies between
// the chart and quote reads.
type YahooSource struct {
	now func() time.Time
}

func NewYahooSource() *YahooSource {
	return &YahooSource{now: time.Now}
}

func (y *YahooSource) Name() string { return yahoo }

func (y *YahooSource) FetchSeries(ctx context.Context, asset models.Asset, w Window) (*models.PriceSeries, error) {
	ticker := asset.YahooTicker
	if ticker == "" {
		if asset.ID == "" {
			return nil, apperr.Wrap(apperr.ErrNotFound, "asset identifier is empty")
		}
		ticker = strings.ToUpper(asset.ID) + "-USD"
	}
	w = w.withDefaults()

	end := y.now().UTC()
	start := end.AddDate(0, 0, -w.Days)
	iter := chart.Get(&chart.Params{
		Symbol:   ticker,
		Start:    datetime.New(&start),
		End:      datetime.New(&end),
		Interval: datetime.OneDay,
	})

	series := &models.PriceSeries{AssetID: asset.ID, Currency: "usd", Source: yahoo}
	for iter.Next() {
		series.Samples = append(series.Samples, barSample(iter.Bar()))
	}
	if err := iter.Err(); err != nil {
		return nil, classifyYahoo(ticker, err)
	}
	series.Normalize()
	if series.Len() == 0 {
		return nil, apperr.Wrap(apperr.ErrNotFound, "no price history for %q", ticker)
	}

	if err := ctx.Err(); err != nil {
		return nil, apperr.FromTransport(yahoo, err)
	}
	q, err := quote.Get(ticker)
	if err != nil {
		return nil, classifyYahoo(ticker, err)
	}
	if q == nil {
		return nil, apperr.Wrap(apperr.ErrNotFound, "no quote for %q", ticker)
	}
	if q.RegularMarketPrice > 0 {
		at := end
		if q.RegularMarketTime > 0 {
			at = time.Unix(int64(q.RegularMarketTime), 0).UTC()
		}
		series.Quote = &models.Quote{Price: q.RegularMarketPrice, At: at}
	}

	logger.Debugf("yahoo: %d samples for %s", series.Len(), ticker)
	return series, nil
}

func barSample(bar *finance.ChartBar) models.PriceSample {
	price, _ := bar.Close.Float64()
	return models.PriceSample{
		Time:      time.Unix(int64(bar.Timestamp), 0).UTC(),
		Price:     price,
		Volume:    float64(bar.Volume),
		HasVolume: true,
	}
}

// classifyYahoo maps finance-go failures. The library reports remote errors
// as text, so the status is recovered from the message.
func classifyYahoo(ticker string, err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "404"), strings.Contains(msg, "not found"), strings.Contains(msg, "no data"):
		return apperr.Wrap(apperr.ErrNotFound, "yahoo has no data for %q: %w", ticker, err)
	case strings.Contains(msg, "429"), strings.Contains(msg, "too many requests"):
		return apperr.Wrap(apperr.ErrRateLimit, "yahoo throttled %q: %w", ticker, err)
	case strings.Contains(msg, "401"), strings.Contains(msg, "unauthorized"):
		return apperr.Wrap(apperr.ErrAuthentication, "yahoo rejected the request for %q: %w", ticker, err)
	}
	return apperr.FromTransport(yahoo, err)
}
