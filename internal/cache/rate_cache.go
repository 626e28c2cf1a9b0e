// Package cache implements the Redis-backed rate cache. A cache entry maps a
// "<BASE>:<TARGET>" currency pair to its reconciled rate and expires passively
// after the configured lifetime.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"fxquote/internal/metrics"
	"fxquote/internal/provider"
)

// ErrRateUnavailable indicates that even after a refresh no usable rate
// exists for the requested pair. Callers must treat this as a
// service-unavailable condition, not as a miss to retry.
var ErrRateUnavailable = errors.New("no usable rate for currency pair")

// RatesFetcher produces the reconciled rates for a base currency.
type RatesFetcher interface {
	MaxRates(ctx context.Context, base string) provider.RateMap
}

// RateStore is the cache contract the quote engine depends on.
type RateStore interface {
	Get(ctx context.Context, base, target string) (decimal.Decimal, bool, error)
	Refresh(ctx context.Context, base string) error
	GetOrRefresh(ctx context.Context, base, target string) (decimal.Decimal, error)
}

var _ RateStore = (*RedisRateCache)(nil)

// RedisRateCache is a RateStore backed by a shared Redis instance.
type RedisRateCache struct {
	rdb        *redis.Client
	reconciler RatesFetcher
	ttl        time.Duration
	log        *zap.SugaredLogger

	// refreshGroup deduplicates concurrent refreshes for the same base.
	// Writes are idempotent overwrites, so this changes nothing observable.
	refreshGroup singleflight.Group
}

// NewRedisRateCache creates a RedisRateCache with the given entry lifetime.
func NewRedisRateCache(rdb *redis.Client, reconciler RatesFetcher, ttl time.Duration, log *zap.SugaredLogger) *RedisRateCache {
	return &RedisRateCache{
		rdb:        rdb,
		reconciler: reconciler,
		ttl:        ttl,
		log:        log,
	}
}

func rateKey(base, target string) string {
	return base + ":" + target
}

// Get reads the cached rate for a pair. The second return value reports
// whether an unexpired entry was present.
func (c *RedisRateCache) Get(ctx context.Context, base, target string) (decimal.Decimal, bool, error) {
	val, err := c.rdb.Get(ctx, rateKey(base, target)).Result()
	if errors.Is(err, redis.Nil) {
		return decimal.Decimal{}, false, nil
	}
	if err != nil {
		return decimal.Decimal{}, false, fmt.Errorf("cache read %s: %w", rateKey(base, target), err)
	}

	d, err := decimal.NewFromString(val)
	if err != nil {
		// A corrupt entry is treated as absent so the next refresh overwrites it.
		c.log.Warnw("Corrupt cache entry", "key", rateKey(base, target), "value", val, "error", err)
		return decimal.Decimal{}, false, nil
	}
	return d, true, nil
}

// Refresh reconciles fresh rates for the base currency and stores every
// (base, target) pair with the configured lifetime, overwriting existing
// entries. A refresh that yields no rates is not an error: the affected
// pairs simply stay absent until a later refresh succeeds.
func (c *RedisRateCache) Refresh(ctx context.Context, base string) error {
	_, err, _ := c.refreshGroup.Do(base, func() (interface{}, error) {
		rates := c.reconciler.MaxRates(ctx, base)
		if len(rates) == 0 {
			c.log.Warnw("Refresh yielded no rates", "base", base)
			return nil, nil
		}

		pipe := c.rdb.Pipeline()
		for target, rate := range rates {
			pipe.Set(ctx, rateKey(base, target), rate.String(), c.ttl)
		}
		if _, err := pipe.Exec(ctx); err != nil {
			return nil, fmt.Errorf("write rates for %s: %w", base, err)
		}

		c.log.Infow("Rates refreshed", "base", base, "pairs", len(rates))
		return nil, nil
	})
	return err
}

// GetOrRefresh returns the cached rate for a pair, refreshing all pairs for
// the base currency in one round trip on a miss. If the pair is still absent
// after the refresh it returns ErrRateUnavailable.
func (c *RedisRateCache) GetOrRefresh(ctx context.Context, base, target string) (decimal.Decimal, error) {
	rate, ok, err := c.Get(ctx, base, target)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if ok {
		metrics.CacheLookupsTotal.WithLabelValues("hit").Inc()
		return rate, nil
	}
	metrics.CacheLookupsTotal.WithLabelValues("miss").Inc()

	if err := c.Refresh(ctx, base); err != nil {
		return decimal.Decimal{}, err
	}

	rate, ok, err = c.Get(ctx, base, target)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !ok {
		return decimal.Decimal{}, ErrRateUnavailable
	}
	return rate, nil
}
