package collector

import (
	"context"
	"errors"

	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
)

// ErrNoData is returned when a source answers but has no bars for the symbol.
var ErrNoData = errors.New("no market data")

// Fetcher defines the interface for fetching market data.
type Fetcher interface {
	FetchRecentBars(ctx context.Context, symbol string, tf model.Timeframe, count int) ([]model.PriceBar, error)
	Name() string
}
