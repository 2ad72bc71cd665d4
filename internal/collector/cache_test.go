package collector

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
)

type countingFetcher struct {
	Fetcher
	calls int
}

func (c *countingFetcher) FetchRecentBars(ctx context.Context, symbol string, tf model.Timeframe, count int) ([]model.PriceBar, error) {
	c.calls++
	return c.Fetcher.FetchRecentBars(ctx, symbol, tf, count)
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedFetcherReadThrough(t *testing.T) {
	mr, client := newTestRedis(t)
	inner := &countingFetcher{Fetcher: &MockFetcher{Bars: map[string][]model.PriceBar{"EURUSD": flatBars(200, 1.1)}}}
	c := NewCachedFetcher(inner, client, 10*time.Second)
	ctx := context.Background()

	first, err := c.FetchRecentBars(ctx, "EURUSD", model.TimeframeM1, 200)
	require.NoError(t, err)
	second, err := c.FetchRecentBars(ctx, "EURUSD", model.TimeframeM1, 200)
	require.NoError(t, err)

	assert.Equal(t, 1, inner.calls)
	require.Len(t, second, len(first))
	assert.True(t, first[0].Time.Equal(second[0].Time))
	assert.Equal(t, first[199].Close, second[199].Close)

	mr.FastForward(11 * time.Second)
	_, err = c.FetchRecentBars(ctx, "EURUSD", model.TimeframeM1, 200)
	require.NoError(t, err)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedFetcherFallsThroughWhenRedisDown(t *testing.T) {
	mr, client := newTestRedis(t)
	inner := &countingFetcher{Fetcher: &MockFetcher{Price: 1.2}}
	c := NewCachedFetcher(inner, client, 0)
	mr.Close()

	bars, err := c.FetchRecentBars(context.Background(), "GBPUSD", model.TimeframeM1, 20)
	require.NoError(t, err)
	assert.Len(t, bars, 20)
	assert.Equal(t, 1, inner.calls)
}

func TestCachedFetcherDoesNotCacheErrors(t *testing.T) {
	_, client := newTestRedis(t)
	inner := &countingFetcher{Fetcher: &MockFetcher{Err: errors.New("down")}}
	c := NewCachedFetcher(inner, client, time.Minute)

	for i := 0; i < 2; i++ {
		_, err := c.FetchRecentBars(context.Background(), "EURUSD", model.TimeframeM1, 200)
		require.Error(t, err)
	}
	assert.Equal(t, 2, inner.calls)
	assert.Equal(t, "mock+redis", c.Name())
}
