package marketdata

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/quantcore/engine/pkg/candle"
	"github.com/quantcore/engine/pkg/decimal"
)

// RedisCache is the optional L2Cache for live-mode price lookups,
// shared across process restarts so a fresh process doesn't start with
// a cold in-memory cache.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache wraps client with a fixed TTL for every cached price.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// GetPrice looks up pair's cached price. A miss or a Redis error both
// return ok=false; callers fall through to the next source.
func (r *RedisCache) GetPrice(ctx context.Context, pair candle.TradingPair) (decimal.Decimal, bool) {
	key := cacheKey(pair)
	cached, err := r.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", key).Msg("marketdata: redis get failed")
		}
		return decimal.Decimal{}, false
	}

	price, err := decimal.FromString(cached)
	if err != nil {
		log.Warn().Err(err).Str("key", key).Msg("marketdata: cached price unparseable")
		return decimal.Decimal{}, false
	}
	return price, true
}

// SetPrice caches price for pair. Write failures are logged and
// swallowed: a cache-write failure must never fail the caller's read.
func (r *RedisCache) SetPrice(ctx context.Context, pair candle.TradingPair, price decimal.Decimal) {
	key := cacheKey(pair)
	if err := r.client.Set(ctx, key, price.String(), r.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", key).Msg("marketdata: redis set failed")
	}
}

func cacheKey(pair candle.TradingPair) string {
	return "quantcore:price:" + pair.String()
}
