package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/Alien67x6/mt5-monitoring-API/internal/calculator"
	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
)

// BarCount is the size of the price window every evaluation works on.
const BarCount = 200

// MockFetcher returns controllable fixed data for development and testing.
type MockFetcher struct {
	Bars  map[string][]model.PriceBar
	Price float64 // used to generate bars for symbols missing from Bars
	Err   error
}

func (m *MockFetcher) Name() string { return "mock" }

func (m *MockFetcher) FetchRecentBars(_ context.Context, symbol string, _ model.Timeframe, count int) ([]model.PriceBar, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if bars, ok := m.Bars[symbol]; ok {
		return trimBars(bars, count), nil
	}
	if m.Price <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	return generateMockBars(m.Price, count), nil
}

func generateMockBars(basePrice float64, count int) []model.PriceBar {
	bars := make([]model.PriceBar, count)
	start := time.Now().UTC().Truncate(time.Minute).Add(-time.Duration(count) * time.Minute)
	for i := 0; i < count; i++ {
		p := basePrice * (1 + float64(i-count/2)*0.0001)
		bars[i] = model.PriceBar{
			Time:   start.Add(time.Duration(i) * time.Minute),
			Open:   p * 0.9999,
			High:   p * 1.0005,
			Low:    p * 0.9995,
			Close:  p,
			Volume: 100,
		}
	}
	return bars
}

// Collector orchestrates data fetching and indicator computation.
type Collector struct {
	Fetcher   Fetcher
	Timeframe model.Timeframe
}

// NewCollector creates a new Collector. An empty timeframe means M1.
func NewCollector(fetcher Fetcher, tf model.Timeframe) *Collector {
	if tf == "" {
		tf = model.TimeframeM1
	}
	return &Collector{Fetcher: fetcher, Timeframe: tf}
}

// Collect fetches the latest window of bars and computes all indicators.
func (c *Collector) Collect(ctx context.Context, symbol string) (model.IndicatorFrame, error) {
	bars, err := c.Fetcher.FetchRecentBars(ctx, symbol, c.Timeframe, BarCount)
	if err != nil {
		return model.IndicatorFrame{}, fmt.Errorf("fetch %s bars for %s: %w", c.Timeframe, symbol, err)
	}
	if len(bars) == 0 {
		return model.IndicatorFrame{}, fmt.Errorf("%w: %s", ErrNoData, symbol)
	}
	return calculator.ComputeIndicators(bars), nil
}

// CheckSource verifies the data source answers for symbol. Used at startup.
func (c *Collector) CheckSource(ctx context.Context, symbol string) error {
	bars, err := c.Fetcher.FetchRecentBars(ctx, symbol, c.Timeframe, 1)
	if err != nil {
		return fmt.Errorf("%s source check: %w", c.Fetcher.Name(), err)
	}
	if len(bars) == 0 {
		return fmt.Errorf("%s source check: %w: %s", c.Fetcher.Name(), ErrNoData, symbol)
	}
	return nil
}
