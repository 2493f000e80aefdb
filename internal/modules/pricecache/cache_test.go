package pricecache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskdesk/internal/domain"
	testingpkg "github.com/aristath/riskdesk/internal/testing"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time { return c.t }

func setup(t *testing.T, ttl time.Duration) (*Cache, *testingpkg.MockPriceProvider, *fakeClock) {
	provider := testingpkg.NewMockPriceProvider(testingpkg.NewPriceFixtures())
	cache := New(testingpkg.NewMemoryDB(t, "cache"), provider, ttl, zerolog.Nop())
	clock := &fakeClock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
	cache.now = clock.now
	return cache, provider, clock
}

func TestCache_ServesFreshEntries(t *testing.T) {
	cache, provider, clock := setup(t, time.Hour)
	ctx := context.Background()

	first, err := cache.Fetch(ctx, []string{"AAPL", "SPY"}, "1y")
	require.NoError(t, err)
	assert.Equal(t, 1, provider.Calls())

	clock.t = clock.t.Add(30 * time.Minute)
	second, err := cache.Fetch(ctx, []string{"AAPL", "SPY"}, "1y")
	require.NoError(t, err)

	assert.Equal(t, 1, provider.Calls(), "fresh entries must not refetch")
	assert.Equal(t, first, second)
}

func TestCache_RoundTripPreservesSeries(t *testing.T) {
	cache, _, _ := setup(t, time.Hour)
	ctx := context.Background()
	_, err := cache.Fetch(ctx, []string{"BND"}, "1y")
	require.NoError(t, err)

	e, found, err := cache.load(ctx, "BND", "1y")
	require.NoError(t, err)
	require.True(t, found)

	expected := testingpkg.NewPriceFixtures()["BND"]
	require.Len(t, e.series, len(expected))
	for i := range expected {
		assert.True(t, expected[i].Date.Equal(e.series[i].Date))
		assert.Equal(t, expected[i].Close, e.series[i].Close)
	}
}

func TestCache_ExpiredEntriesRefetchOnlyMissing(t *testing.T) {
	cache, provider, clock := setup(t, time.Hour)
	ctx := context.Background()
	_, err := cache.Fetch(ctx, []string{"AAPL"}, "1y")
	require.NoError(t, err)

	clock.t = clock.t.Add(2 * time.Hour)
	_, err = cache.Fetch(ctx, []string{"AAPL", "SPY"}, "1y")
	require.NoError(t, err)

	assert.Equal(t, 2, provider.Calls())
	assert.ElementsMatch(t, []string{"AAPL", "SPY"}, provider.LastRequest())

	_, err = cache.Fetch(ctx, []string{"AAPL", "SPY"}, "1y")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.Calls())
}

func TestCache_PeriodIsPartOfTheKey(t *testing.T) {
	cache, provider, _ := setup(t, time.Hour)
	ctx := context.Background()

	_, err := cache.Fetch(ctx, []string{"AAPL"}, "1y")
	require.NoError(t, err)
	_, err = cache.Fetch(ctx, []string{"AAPL"}, "6mo")
	require.NoError(t, err)

	assert.Equal(t, 2, provider.Calls())
}

func TestCache_ProviderFailureServesStale(t *testing.T) {
	cache, provider, clock := setup(t, time.Hour)
	ctx := context.Background()
	_, err := cache.Fetch(ctx, []string{"AAPL"}, "1y")
	require.NoError(t, err)

	clock.t = clock.t.Add(24 * time.Hour)
	provider.SetError(errors.New("rate limited"))

	prices, err := cache.Fetch(ctx, []string{"AAPL", "SPY"}, "1y")
	require.NoError(t, err)
	assert.Len(t, prices["AAPL"], 15)
	assert.Empty(t, prices["SPY"])
}

func TestCache_ProviderFailureWithoutCache(t *testing.T) {
	cache, provider, _ := setup(t, time.Hour)
	provider.SetError(errors.New("rate limited"))

	_, err := cache.Fetch(context.Background(), []string{"AAPL"}, "1y")

	assert.EqualError(t, err, "rate limited")
}

func TestCache_EmptySeriesNotStored(t *testing.T) {
	cache, provider, _ := setup(t, time.Hour)
	ctx := context.Background()

	prices, err := cache.Fetch(ctx, []string{"UNKNOWN"}, "1y")
	require.NoError(t, err)
	assert.Equal(t, domain.PriceSeries{}, prices["UNKNOWN"])

	_, err = cache.Fetch(ctx, []string{"UNKNOWN"}, "1y")
	require.NoError(t, err)
	assert.Equal(t, 2, provider.Calls())
}

func TestCache_ZeroTTLAlwaysFetches(t *testing.T) {
	cache, provider, _ := setup(t, 0)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := cache.Fetch(ctx, []string{"AAPL"}, "1y")
		require.NoError(t, err)
	}
	assert.Equal(t, 2, provider.Calls())
}

func TestCache_PruneAndInvalidate(t *testing.T) {
	cache, _, clock := setup(t, time.Hour)
	ctx := context.Background()
	_, err := cache.Fetch(ctx, []string{"AAPL"}, "1y")
	require.NoError(t, err)
	clock.t = clock.t.Add(48 * time.Hour)
	_, err = cache.Fetch(ctx, []string{"SPY"}, "1y")
	require.NoError(t, err)

	n, err := cache.Prune(ctx, clock.t.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, found, err := cache.load(ctx, "SPY", "1y")
	require.NoError(t, err)
	assert.True(t, found)

	require.NoError(t, cache.Invalidate(ctx))
	_, found, err = cache.load(ctx, "SPY", "1y")
	require.NoError(t, err)
	assert.False(t, found)
}
