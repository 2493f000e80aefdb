package yahoo

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"golang.org/x/time/rate"

	"github.com/aristath/riskdesk/internal/domain"
)

var start = time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC)

func bars(closes ...float64) []models.Bar {
	out := make([]models.Bar, len(closes))
	for i, c := range closes {
		out[i] = models.Bar{Date: start.AddDate(0, 0, i), Close: c}
	}
	return out
}

func newTestClient(download batchDownloader, history historyLoader) *Client {
	c := NewClient(zerolog.Nop())
	c.download = download
	c.history = history
	c.limiter = rate.NewLimiter(rate.Inf, 1)
	return c
}

func noHistory(symbol, period string) ([]models.Bar, error) {
	return nil, errors.New("not found")
}

func TestFetch_BatchResults(t *testing.T) {
	var gotPeriod string
	var gotSymbols []string
	client := newTestClient(func(symbols []string, period string) (map[string][]models.Bar, map[string]error, error) {
		gotSymbols, gotPeriod = symbols, period
		return map[string][]models.Bar{
			"AAPL": bars(150, 151, 152),
			"BND":  bars(80, 80.5),
		}, nil, nil
	}, noHistory)

	prices, err := client.Fetch(context.Background(), []string{"aapl", "BND", "AAPL", " "}, "")
	require.NoError(t, err)

	assert.Equal(t, DefaultPeriod, gotPeriod)
	assert.Equal(t, []string{"AAPL", "BND"}, gotSymbols)
	require.Len(t, prices["AAPL"], 3)
	last, ok := prices["AAPL"].Last()
	require.True(t, ok)
	assert.Equal(t, 152.0, last)
	assert.Len(t, prices["BND"], 2)
}

func TestFetch_UnknownSymbolFallsBackThenEmpty(t *testing.T) {
	var retried []string
	client := newTestClient(func(symbols []string, period string) (map[string][]models.Bar, map[string]error, error) {
		return map[string][]models.Bar{"SPY": bars(400, 401)},
			map[string]error{"GLD": errors.New("timeout"), "DELISTED": errors.New("404")}, nil
	}, func(symbol, period string) ([]models.Bar, error) {
		retried = append(retried, symbol)
		if symbol == "GLD" {
			return bars(180, 181, 182), nil
		}
		return nil, errors.New("no data")
	})

	prices, err := client.Fetch(context.Background(), []string{"SPY", "GLD", "DELISTED"}, "6mo")
	require.NoError(t, err)

	assert.Equal(t, []string{"GLD", "DELISTED"}, retried)
	assert.Len(t, prices["SPY"], 2)
	assert.Len(t, prices["GLD"], 3)
	series, ok := prices["DELISTED"]
	assert.True(t, ok, "unknown symbols are present with an empty series")
	assert.Empty(t, series)
}

func TestFetch_WholeBatchFailure(t *testing.T) {
	client := newTestClient(func(symbols []string, period string) (map[string][]models.Bar, map[string]error, error) {
		return nil, nil, errors.New("connection refused")
	}, noHistory)

	prices, err := client.Fetch(context.Background(), []string{"AAPL"}, "1y")

	assert.Nil(t, prices)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestFetch_ContextCancelled(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	client := newTestClient(func(symbols []string, period string) (map[string][]models.Bar, map[string]error, error) {
		<-release
		return nil, nil, nil
	}, noHistory)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Fetch(ctx, []string{"AAPL"}, "1y")
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestFetch_NoSymbols(t *testing.T) {
	client := newTestClient(func(symbols []string, period string) (map[string][]models.Bar, map[string]error, error) {
		t.Fatal("download must not be called")
		return nil, nil, nil
	}, noHistory)

	prices, err := client.Fetch(context.Background(), nil, "1y")
	require.NoError(t, err)
	assert.Empty(t, prices)
}

func TestToSeries_CleansBars(t *testing.T) {
	input := []models.Bar{
		{Date: start.AddDate(0, 0, 2), Close: 12},
		{Date: start, Close: 10},
		{Date: start.AddDate(0, 0, 1), Close: math.NaN()},
		{Date: start.AddDate(0, 0, 3), Close: 0},
		{Date: start.AddDate(0, 0, 2).Add(time.Hour), Close: 12.5},
	}

	series := toSeries(input)

	require.Len(t, series, 2)
	assert.Equal(t, domain.PricePoint{Date: start, Close: 10}, series[0])
	assert.Equal(t, 12.5, series[1].Close)
}

func TestClient_ImplementsPriceProvider(t *testing.T) {
	var _ domain.PriceProvider = NewClient(zerolog.Nop())
}

func TestFetch_RetriesAreRateLimited(t *testing.T) {
	client := newTestClient(func(symbols []string, period string) (map[string][]models.Bar, map[string]error, error) {
		return map[string][]models.Bar{}, nil, nil
	}, noHistory)
	client.limiter = rate.NewLimiter(rate.Every(time.Hour), 1)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// The first retry uses the burst token; the second would wait an hour.
	_, err := client.Fetch(ctx, []string{"A", "B"}, "1y")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cancelled")
}
