package redis

import (
	"context"
	"fmt"
	"time"

	"vega/internal/adapters/redis"
	"vega/internal/domain/contract"
	"vega/internal/domain/marketdata"
	"vega/internal/metrics"
	"vega/pkg/logger"
)

// Compile-time check
var _ marketdata.Cache = (*MarketCache)(nil)

// MarketCache implements marketdata.Cache on Redis with a short TTL. The
// cache is a fetch deduplicator only, so every failure degrades to a miss.
type MarketCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

// NewMarketCache creates a Redis-backed market data cache
func NewMarketCache(client *redis.Client, ttl time.Duration) *MarketCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &MarketCache{client: client, ttl: ttl, log: logger.Get()}
}

// GetQuote retrieves a cached quote
func (c *MarketCache) GetQuote(ctx context.Context, symbol string) (*marketdata.Quote, bool) {
	var q marketdata.Quote
	if !c.get(ctx, "quote", quoteKey(symbol), &q) {
		return nil, false
	}
	return &q, true
}

// SetQuote caches a quote
func (c *MarketCache) SetQuote(ctx context.Context, symbol string, q *marketdata.Quote) {
	c.set(ctx, "quote", quoteKey(symbol), q)
}

// GetChain retrieves a cached option chain
func (c *MarketCache) GetChain(ctx context.Context, symbol string) (*contract.ChainSnapshot, bool) {
	var snap contract.ChainSnapshot
	if !c.get(ctx, "chain", chainKey(symbol), &snap) {
		return nil, false
	}
	return &snap, true
}

// SetChain caches an option chain
func (c *MarketCache) SetChain(ctx context.Context, symbol string, snap *contract.ChainSnapshot) {
	c.set(ctx, "chain", chainKey(symbol), snap)
}

func (c *MarketCache) get(ctx context.Context, kind, key string, dest interface{}) bool {
	err := c.client.Get(ctx, key, dest)
	if err == redis.Nil {
		metrics.CacheOps.WithLabelValues(kind, "miss").Inc()
		return false
	}
	if err != nil {
		metrics.CacheOps.WithLabelValues(kind, "error").Inc()
		c.log.Debugf("market cache read failed for %s: %v", key, err)
		return false
	}
	metrics.CacheOps.WithLabelValues(kind, "hit").Inc()
	return true
}

func (c *MarketCache) set(ctx context.Context, kind, key string, value interface{}) {
	if err := c.client.Set(ctx, key, value, c.ttl); err != nil {
		metrics.CacheOps.WithLabelValues(kind, "error").Inc()
		c.log.Debugf("market cache write failed for %s: %v", key, err)
	}
}

func quoteKey(symbol string) string { return fmt.Sprintf("md:quote:%s", symbol) }
func chainKey(symbol string) string { return fmt.Sprintf("md:chain:%s", symbol) }
