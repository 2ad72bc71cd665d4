package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Alien67x6/mt5-monitoring-API/internal/logger"
	"github.com/Alien67x6/mt5-monitoring-API/internal/model"
)

// CachedFetcher is a Redis read-through cache in front of another Fetcher.
// The periodic job, /monitor and /check often hit the same minute; a short TTL
// lets them share one upstream request.
type CachedFetcher struct {
	next   Fetcher
	client *redis.Client
	ttl    time.Duration
}

// NewCachedFetcher wraps next. A zero ttl defaults to five seconds.
func NewCachedFetcher(next Fetcher, client *redis.Client, ttl time.Duration) *CachedFetcher {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}
	return &CachedFetcher{next: next, client: client, ttl: ttl}
}

func (c *CachedFetcher) Name() string { return c.next.Name() + "+redis" }

func cacheKey(source, symbol string, tf model.Timeframe, count int) string {
	return fmt.Sprintf("crossmon:bars:%s:%s:%s:%d", source, symbol, tf, count)
}

// FetchRecentBars serves from Redis when possible. Redis failures are logged
// and fall through to the wrapped fetcher.
func (c *CachedFetcher) FetchRecentBars(ctx context.Context, symbol string, tf model.Timeframe, count int) ([]model.PriceBar, error) {
	key := cacheKey(c.next.Name(), symbol, tf, count)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var bars []model.PriceBar
		if jerr := json.Unmarshal(raw, &bars); jerr == nil {
			return bars, nil
		}
		logger.Warn("bar cache: corrupt entry %s, refetching", key)
	case err != redis.Nil:
		logger.Warn("bar cache: get %s: %v", key, err)
	}

	bars, err := c.next.FetchRecentBars(ctx, symbol, tf, count)
	if err != nil {
		return nil, err
	}
	if payload, jerr := json.Marshal(bars); jerr == nil {
		if serr := c.client.Set(ctx, key, payload, c.ttl).Err(); serr != nil {
			logger.Warn("bar cache: set %s: %v", key, serr)
		}
	}
	return bars, nil
}
