// Package yahoo fetches daily closing prices from Yahoo Finance.
package yahoo

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/wnjoon/go-yfinance/pkg/models"
	"github.com/wnjoon/go-yfinance/pkg/multi"
	"github.com/wnjoon/go-yfinance/pkg/ticker"
	"golang.org/x/time/rate"

	"github.com/aristath/riskdesk/internal/domain"
)

// DefaultPeriod is the lookback used when the caller passes none
const DefaultPeriod = "1y"

// retryInterval spaces single-symbol retries so a failed batch does not turn
// into a burst of requests.
const retryInterval = 500 * time.Millisecond

// batchDownloader downloads daily bars for several symbols at once. Per-symbol
// failures are reported in the error map rather than failing the batch.
type batchDownloader func(symbols []string, period string) (map[string][]models.Bar, map[string]error, error)

// historyLoader downloads daily bars for one symbol
type historyLoader func(symbol, period string) ([]models.Bar, error)

// Client implements domain.PriceProvider on top of go-yfinance
type Client struct {
	download batchDownloader
	history  historyLoader
	limiter  *rate.Limiter
	log      zerolog.Logger
}

// NewClient creates a Yahoo Finance price client
func NewClient(log zerolog.Logger) *Client {
	return &Client{
		download: downloadBatch,
		history:  loadHistory,
		limiter:  rate.NewLimiter(rate.Every(retryInterval), 1),
		log:      log.With().Str("client", "yahoo").Logger(),
	}
}

// Fetch downloads daily closes for every symbol. Symbols Yahoo does not know, or
// that fail even after a single-symbol retry, map to an empty series. Only a
// failure of the whole batch is returned as an error.
func (c *Client) Fetch(ctx context.Context, symbols []string, period string) (map[string]domain.PriceSeries, error) {
	if period == "" {
		period = DefaultPeriod
	}
	symbols = uniqueSymbols(symbols)
	out := make(map[string]domain.PriceSeries, len(symbols))
	if len(symbols) == 0 {
		return out, nil
	}

	type batchResult struct {
		data   map[string][]models.Bar
		errors map[string]error
		err    error
	}
	done := make(chan batchResult, 1)
	go func() {
		data, errs, err := c.download(symbols, period)
		done <- batchResult{data: data, errors: errs, err: err}
	}()

	var res batchResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("price download cancelled: %w", ctx.Err())
	case res = <-done:
	}
	if res.err != nil {
		return nil, fmt.Errorf("failed to download prices: %w", res.err)
	}

	for _, symbol := range symbols {
		bars, ok := res.data[symbol]
		if !ok || len(bars) == 0 {
			if err, failed := res.errors[symbol]; failed {
				c.log.Warn().Err(err).Str("symbol", symbol).Msg("Batch download failed for symbol, retrying alone")
			}
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, fmt.Errorf("price download cancelled: %w", err)
			}
			bars = c.retrySingle(symbol, period)
		}
		out[symbol] = toSeries(bars)
	}

	c.log.Debug().Int("symbols", len(symbols)).Str("period", period).Msg("Fetched price history")
	return out, nil
}

func (c *Client) retrySingle(symbol, period string) []models.Bar {
	bars, err := c.history(symbol, period)
	if err != nil {
		c.log.Warn().Err(err).Str("symbol", symbol).Msg("No price history available")
		return nil
	}
	return bars
}

// toSeries keeps finite closes, one per calendar date, in date order.
func toSeries(bars []models.Bar) domain.PriceSeries {
	byDate := make(map[string]domain.PricePoint, len(bars))
	for _, bar := range bars {
		if math.IsNaN(bar.Close) || math.IsInf(bar.Close, 0) || bar.Close <= 0 {
			continue
		}
		// Later bars for the same date win
		byDate[bar.Date.Format(domain.DateLayout)] = domain.PricePoint{Date: bar.Date, Close: bar.Close}
	}

	series := make(domain.PriceSeries, 0, len(byDate))
	for _, p := range byDate {
		series = append(series, p)
	}
	sort.Slice(series, func(i, j int) bool { return series[i].Date.Before(series[j].Date) })
	return series
}

func uniqueSymbols(symbols []string) []string {
	seen := make(map[string]bool, len(symbols))
	out := make([]string, 0, len(symbols))
	for _, s := range symbols {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func downloadBatch(symbols []string, period string) (map[string][]models.Bar, map[string]error, error) {
	params := models.DefaultDownloadParams()
	params.Symbols = symbols
	params.Period = period
	params.Interval = "1d"

	result, err := multi.Download(symbols, &params)
	if err != nil {
		return nil, nil, err
	}
	return result.Data, result.Errors, nil
}

func loadHistory(symbol, period string) ([]models.Bar, error) {
	t, err := ticker.New(symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to create ticker: %w", err)
	}
	defer t.Close()

	bars, err := t.History(models.HistoryParams{
		Period:     period,
		Interval:   "1d",
		AutoAdjust: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get historical prices: %w", err)
	}
	return bars, nil
}
