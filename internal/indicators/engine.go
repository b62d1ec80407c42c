// Package indicators derives descriptive statistics from a price series.
package indicators

import (
	"errors"
	"fmt"
	"math"

	"github.com/dyike/CoinCortex/internal/logger"
	"github.com/dyike/CoinCortex/internal/models"
)

// ErrInsufficientData marks an indicator whose preconditions are not met.
// Compute omits such indicators instead of failing.
var ErrInsufficientData = errors.New("insufficient data")

type Params struct {
	SMAWindows []int
	RSIPeriod  int
}

func DefaultParams() Params {
	return Params{SMAWindows: []int{7, 20}, RSIPeriod: 14}
}

// Compute returns, in order, one sma_N per window, pct_change, volatility
// and rsi_N. It is a pure function of its inputs.
func Compute(series *models.PriceSeries, p Params) models.IndicatorSet {
	var prices []float64
	if series != nil {
		prices = series.Prices()
	}
	return ComputePrices(prices, p)
}

func ComputePrices(prices []float64, p Params) models.IndicatorSet {
	set := make(models.IndicatorSet, 0, len(p.SMAWindows)+3)
	add := func(name, label string, unit models.Unit, v float64, err error) {
		if err != nil {
			logger.Debugf("indicators: omit %s: %v", name, err)
			return
		}
		set = append(set, models.Indicator{Name: name, Label: label, Value: v, Unit: unit})
	}

	for _, w := range p.SMAWindows {
		v, err := SMA(prices, w)
		add(fmt.Sprintf("sma_%d", w), fmt.Sprintf("%d-Day SMA", w), models.UnitPrice, v, err)
	}
	v, err := PercentChange(prices)
	add("pct_change", "Change over period", models.UnitPercent, v, err)
	v, err = Volatility(prices)
	add("volatility", "Volatility (daily)", models.UnitPercent, v, err)
	if p.RSIPeriod > 0 {
		v, err = RSI(prices, p.RSIPeriod)
		add(fmt.Sprintf("rsi_%d", p.RSIPeriod), fmt.Sprintf("%d-Day RSI", p.RSIPeriod), models.UnitIndex, v, err)
	}
	return set
}

// SMA averages the last window prices.
func SMA(prices []float64, window int) (float64, error) {
	if window <= 0 {
		return 0, fmt.Errorf("window must be positive, got %d", window)
	}
	if len(prices) < window {
		return 0, fmt.Errorf("%w: need %d prices, have %d", ErrInsufficientData, window, len(prices))
	}
	sum := 0.0
	for _, p := range prices[len(prices)-window:] {
		sum += p
	}
	return sum / float64(window), nil
}

// PercentChange is (last-first)/first*100 over the whole series.
func PercentChange(prices []float64) (float64, error) {
	if len(prices) < 2 {
		return 0, fmt.Errorf("%w: need 2 prices, have %d", ErrInsufficientData, len(prices))
	}
	first, last := prices[0], prices[len(prices)-1]
	if first == 0 {
		return 0, fmt.Errorf("%w: first price is zero", ErrInsufficientData)
	}
	return (last - first) / first * 100, nil
}

// Returns lists period-over-period percentage changes. Steps whose previous
// price is zero are skipped.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			continue
		}
		out = append(out, (prices[i]-prices[i-1])/prices[i-1]*100)
	}
	return out
}

// Volatility is the sample standard deviation of Returns, in percent.
func Volatility(prices []float64) (float64, error) {
	r := Returns(prices)
	if len(r) < 2 {
		return 0, fmt.Errorf("%w: need 2 returns, have %d", ErrInsufficientData, len(r))
	}
	mean := 0.0
	for _, x := range r {
		mean += x
	}
	mean /= float64(len(r))

	ss := 0.0
	for _, x := range r {
		ss += (x - mean) * (x - mean)
	}
	return math.Sqrt(ss / float64(len(r)-1)), nil
}

// RSI uses simple means of the last period gains and losses.
func RSI(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, fmt.Errorf("period must be positive, got %d", period)
	}
	if len(prices) < period+1 {
		return 0, fmt.Errorf("%w: need %d prices, have %d", ErrInsufficientData, period+1, len(prices))
	}

	var gain, loss float64
	for i := len(prices) - period; i < len(prices); i++ {
		change := prices[i] - prices[i-1]
		if change > 0 {
			gain += change
		} else {
			loss -= change
		}
	}
	gain /= float64(period)
	loss /= float64(period)

	switch {
	case gain == 0 && loss == 0:
		return 0, fmt.Errorf("%w: flat series", ErrInsufficientData)
	case loss == 0:
		return 100, nil
	}
	return 100 - 100/(1+gain/loss), nil
}
