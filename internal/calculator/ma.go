package calculator

import (
	"errors"
	"math"

	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
)

// Indicator windows.
const (
	SlowSMAPeriod = 150
	FastSMAPeriod = 75
	SlowEMAPeriod = 50
	FastEMAPeriod = 20
)

// CalculateSMA computes the simple moving average of the given prices over the specified period.
func CalculateSMA(prices []float64, period int) (float64, error) {
	if period <= 0 {
		return 0, errors.New("period must be positive")
	}
	if len(prices) < period {
		return 0, errors.New("not enough data for SMA calculation")
	}
	sum := 0.0
	for i := len(prices) - period; i < len(prices); i++ {
		sum += prices[i]
	}
	return sum / float64(period), nil
}

// SMASeries returns the trailing simple moving average at every index.
// Indices before the window is full are NaN.
func SMASeries(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	for i := range prices {
		sma, err := CalculateSMA(prices[:i+1], period)
		if err != nil {
			out[i] = math.NaN()
			continue
		}
		out[i] = sma
	}
	return out
}

// EMASeries returns the exponential moving average with alpha = 2/(period+1),
// seeded with the first price so every index is defined.
func EMASeries(prices []float64, period int) []float64 {
	out := make([]float64, len(prices))
	if len(prices) == 0 {
		return out
	}
	alpha := 2.0 / float64(period+1)
	out[0] = prices[0]
	for i := 1; i < len(prices); i++ {
		out[i] = prices[i]*alpha + out[i-1]*(1-alpha)
	}
	return out
}

// ComputeIndicators derives SMA150, SMA75, EMA50 and EMA20 for every bar.
func ComputeIndicators(bars []model.PriceBar) model.IndicatorFrame {
	closes := extractCloses(bars)
	sma150 := SMASeries(closes, SlowSMAPeriod)
	sma75 := SMASeries(closes, FastSMAPeriod)
	ema50 := EMASeries(closes, SlowEMAPeriod)
	ema20 := EMASeries(closes, FastEMAPeriod)

	samples := make([]model.IndicatorSample, len(bars))
	for i, b := range bars {
		samples[i] = model.IndicatorSample{
			Time:   b.Time,
			Close:  b.Close,
			SMA150: sma150[i],
			SMA75:  sma75[i],
			EMA50:  ema50[i],
			EMA20:  ema20[i],
		}
	}
	return model.IndicatorFrame{Samples: samples}
}

func extractCloses(bars []model.PriceBar) []float64 {
	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}
	return closes
}
