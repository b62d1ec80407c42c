package dataflows

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/dyike/CoinCortex/internal/apperr"
	"github.com/dyike/CoinCortex/internal/logger"
	"github.com/dyike/CoinCortex/internal/models"
)

const coinGecko = "coingecko"

// CoinGeckoClient reads the public CoinGecko v3 API.
type CoinGeckoClient struct {
	client *resty.Client
}

func NewCoinGeckoClient(baseURL string, timeout time.Duration) *CoinGeckoClient {
	client := resty.New()
	client.SetBaseURL(strings.TrimRight(baseURL, "/"))
	client.SetTimeout(timeout)
	client.SetHeader("Accept", "application/json")
	client.SetHeader("User-Agent", "CoinCortex/1.0")

	return &CoinGeckoClient{client: client}
}

func (c *CoinGeckoClient) Name() string { return coinGecko }

type marketChart struct {
	Prices       [][]float64 `json:"prices"`
	TotalVolumes [][]float64 `json:"total_volumes"`
}

// FetchSeries reads the daily history and a current-price snapshot.
func (c *CoinGeckoClient) FetchSeries(ctx context.Context, asset models.Asset, w Window) (*models.PriceSeries, error) {
	if asset.ID == "" {
		return nil, apperr.Wrap(apperr.ErrNotFound, "asset identifier is empty")
	}
	w = w.withDefaults()

	series, err := c.MarketChart(ctx, asset.ID, w)
	if err != nil {
		return nil, err
	}
	quote, err := c.SimplePrice(ctx, asset.ID, w.Currency)
	if err != nil {
		return nil, err
	}
	series.Quote = quote
	return series, nil
}

// MarketChart reads /coins/{id}/market_chart.
func (c *CoinGeckoClient) MarketChart(ctx context.Context, id string, w Window) (*models.PriceSeries, error) {
	w = w.withDefaults()
	params := map[string]string{
		"vs_currency": w.Currency,
		"days":        strconv.Itoa(w.Days),
	}
	if w.Days > 1 {
		params["interval"] = "daily"
	}

	body, err := c.get(ctx, "/coins/{id}/market_chart", id, params)
	if err != nil {
		return nil, fmt.Errorf("fetch price history for %q: %w", id, err)
	}

	var chart marketChart
	if err := json.Unmarshal(body, &chart); err != nil {
		return nil, apperr.Wrap(apperr.ErrParse, "decode price history for %q: %w", id, err)
	}

	volumes := make(map[int64]float64, len(chart.TotalVolumes))
	for _, v := range chart.TotalVolumes {
		if len(v) >= 2 {
			volumes[int64(v[0])] = v[1]
		}
	}

	series := &models.PriceSeries{
		AssetID:  id,
		Currency: w.Currency,
		Source:   coinGecko,
		Samples:  make([]models.PriceSample, 0, len(chart.Prices)),
	}
	for i, p := range chart.Prices {
		if len(p) < 2 {
			return nil, apperr.Wrap(apperr.ErrParse, "price point %d for %q has %d fields", i, id, len(p))
		}
		sample := models.PriceSample{Time: msToTime(p[0]), Price: p[1]}
		if v, ok := volumes[int64(p[0])]; ok {
			sample.Volume = v
			sample.HasVolume = true
		}
		series.Samples = append(series.Samples, sample)
	}
	series.Normalize()

	if series.Len() == 0 {
		return nil, apperr.Wrap(apperr.ErrNotFound, "no price history for %q", id)
	}
	logger.Debugf("coingecko: %d samples for %s over %d days", series.Len(), id, w.Days)
	return series, nil
}

// SimplePrice reads /simple/price for a single id.
func (c *CoinGeckoClient) SimplePrice(ctx context.Context, id, currency string) (*models.Quote, error) {
	if currency == "" {
		currency = "usd"
	}
	body, err := c.get(ctx, "/simple/price", "", map[string]string{
		"ids":                     id,
		"vs_currencies":           currency,
		"include_last_updated_at": "true",
	})
	if err != nil {
		return nil, fmt.Errorf("fetch current price for %q: %w", id, err)
	}

	var prices map[string]map[string]float64
	if err := json.Unmarshal(body, &prices); err != nil {
		return nil, apperr.Wrap(apperr.ErrParse, "decode current price for %q: %w", id, err)
	}
	entry, ok := prices[id]
	if !ok {
		return nil, apperr.Wrap(apperr.ErrNotFound, "no current price for %q", id)
	}
	price, ok := entry[currency]
	if !ok {
		return nil, apperr.Wrap(apperr.ErrNotFound, "no %s price for %q", currency, id)
	}

	quote := &models.Quote{Price: price, At: time.Now().UTC()}
	if ts, ok := entry["last_updated_at"]; ok && ts > 0 {
		quote.At = time.Unix(int64(ts), 0).UTC()
	}
	return quote, nil
}

func (c *CoinGeckoClient) get(ctx context.Context, path, id string, params map[string]string) ([]byte, error) {
	req := c.client.R().SetContext(ctx).SetQueryParams(params)
	if id != "" {
		req.SetPathParam("id", id)
	}
	resp, err := req.Get(path)
	if err != nil {
		return nil, apperr.FromTransport(coinGecko, err)
	}
	logger.Debugf("coingecko: GET %s -> %d in %s", resp.Request.URL, resp.StatusCode(), resp.Time())
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		return nil, apperr.FromStatus(coinGecko, resp.StatusCode(), resp.String())
	}
	return resp.Body(), nil
}
