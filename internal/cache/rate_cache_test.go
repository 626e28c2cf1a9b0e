package cache

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"fxquote/internal/provider"
)

// stubFetcher returns canned rates and counts invocations.
type stubFetcher struct {
	rates provider.RateMap
	calls atomic.Int64
}

func (f *stubFetcher) MaxRates(ctx context.Context, base string) provider.RateMap {
	f.calls.Add(1)
	return f.rates
}

func newTestCache(t *testing.T, fetcher RatesFetcher, ttl time.Duration) (*RedisRateCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisRateCache(rdb, fetcher, ttl, zap.NewNop().Sugar()), mr
}

func TestRedisRateCache_RoundTrip(t *testing.T) {
	fetcher := &stubFetcher{rates: provider.RateMap{
		"EUR": decimal.RequireFromString("0.84"),
		"ILS": decimal.RequireFromString("3.32"),
	}}
	c, _ := newTestCache(t, fetcher, 10*time.Second)
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx, "USD"))
	assert.EqualValues(t, 1, fetcher.calls.Load())

	// Every pair for the base was populated in one refresh.
	rate, ok, err := c.Get(ctx, "USD", "EUR")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0.84", rate.String())

	rate, ok, err = c.Get(ctx, "USD", "ILS")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "3.32", rate.String())

	// Reads never hit upstream.
	assert.EqualValues(t, 1, fetcher.calls.Load())
}

func TestRedisRateCache_Expiry(t *testing.T) {
	fetcher := &stubFetcher{rates: provider.RateMap{"EUR": decimal.RequireFromString("0.84")}}
	ttl := 10 * time.Second
	c, mr := newTestCache(t, fetcher, ttl)
	ctx := context.Background()

	require.NoError(t, c.Refresh(ctx, "USD"))

	_, ok, err := c.Get(ctx, "USD", "EUR")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(ttl + time.Second)

	_, ok, err = c.Get(ctx, "USD", "EUR")
	require.NoError(t, err)
	assert.False(t, ok, "entry should expire after the configured lifetime")
}

func TestRedisRateCache_GetOrRefresh(t *testing.T) {
	t.Run("miss refreshes then serves from cache", func(t *testing.T) {
		fetcher := &stubFetcher{rates: provider.RateMap{"EUR": decimal.RequireFromString("0.84")}}
		c, _ := newTestCache(t, fetcher, 10*time.Second)
		ctx := context.Background()

		rate, err := c.GetOrRefresh(ctx, "USD", "EUR")
		require.NoError(t, err)
		assert.Equal(t, "0.84", rate.String())
		assert.EqualValues(t, 1, fetcher.calls.Load())

		// Warm cache: identical result, zero additional upstream calls.
		rate, err = c.GetOrRefresh(ctx, "USD", "EUR")
		require.NoError(t, err)
		assert.Equal(t, "0.84", rate.String())
		assert.EqualValues(t, 1, fetcher.calls.Load())
	})

	t.Run("pair absent after refresh is unavailable", func(t *testing.T) {
		fetcher := &stubFetcher{rates: provider.RateMap{}}
		c, _ := newTestCache(t, fetcher, 10*time.Second)

		_, err := c.GetOrRefresh(context.Background(), "USD", "EUR")
		assert.ErrorIs(t, err, ErrRateUnavailable)
		assert.EqualValues(t, 1, fetcher.calls.Load())
	})

	t.Run("corrupt entry is refreshed", func(t *testing.T) {
		fetcher := &stubFetcher{rates: provider.RateMap{"EUR": decimal.RequireFromString("0.84")}}
		c, mr := newTestCache(t, fetcher, 10*time.Second)
		require.NoError(t, mr.Set("USD:EUR", "garbage"))

		rate, err := c.GetOrRefresh(context.Background(), "USD", "EUR")
		require.NoError(t, err)
		assert.Equal(t, "0.84", rate.String())
		assert.EqualValues(t, 1, fetcher.calls.Load())
	})
}
