// Package pricecache keeps fetched price series in SQLite so repeated analysis
// runs within the TTL do not hit the market data provider.
package pricecache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/aristath/riskdesk/internal/database"
	"github.com/aristath/riskdesk/internal/domain"
)

// point is the stored form of a domain.PricePoint
type point struct {
	Date  int64   `msgpack:"d"` // Unix seconds
	Close float64 `msgpack:"c"`
}

type entry struct {
	series    domain.PriceSeries
	fetchedAt time.Time
}

// Cache wraps a PriceProvider with a TTL cache in the cache database.
type Cache struct {
	db   *sql.DB
	next domain.PriceProvider
	ttl  time.Duration
	now  func() time.Time
	log  zerolog.Logger
}

// New creates a caching provider. A non-positive ttl disables reads from the
// cache; fetched series are still stored as a fallback for provider outages.
func New(db *sql.DB, next domain.PriceProvider, ttl time.Duration, log zerolog.Logger) *Cache {
	return &Cache{
		db:   db,
		next: next,
		ttl:  ttl,
		now:  time.Now,
		log:  log.With().Str("component", "price_cache").Logger(),
	}
}

// Fetch serves fresh cached series and asks the wrapped provider for the rest.
// If the provider fails, stale entries are served instead; the error is only
// returned when nothing at all could be served.
func (c *Cache) Fetch(ctx context.Context, symbols []string, period string) (map[string]domain.PriceSeries, error) {
	out := make(map[string]domain.PriceSeries, len(symbols))
	stale := make(map[string]domain.PriceSeries)
	var missing []string

	for _, symbol := range symbols {
		if _, done := out[symbol]; done {
			continue
		}
		e, found, err := c.load(ctx, symbol, period)
		if err != nil {
			c.log.Warn().Err(err).Str("symbol", symbol).Msg("Failed to read cached prices")
		}
		if found && c.ttl > 0 && c.now().Sub(e.fetchedAt) < c.ttl {
			out[symbol] = e.series
			continue
		}
		if found {
			stale[symbol] = e.series
		}
		missing = append(missing, symbol)
	}

	if len(missing) == 0 {
		c.log.Debug().Int("symbols", len(out)).Msg("Served prices from cache")
		return out, nil
	}

	fetched, err := c.next.Fetch(ctx, missing, period)
	if err != nil {
		if len(stale) == 0 && len(out) == 0 {
			return nil, err
		}
		c.log.Warn().Err(err).Int("stale", len(stale)).Msg("Price provider failed, serving cached prices")
		for symbol, series := range stale {
			out[symbol] = series
		}
		return out, nil
	}

	if err := c.store(ctx, period, fetched); err != nil {
		c.log.Warn().Err(err).Msg("Failed to cache fetched prices")
	}
	for _, symbol := range missing {
		series := fetched[symbol]
		if len(series) == 0 && len(stale[symbol]) > 0 {
			series = stale[symbol]
		}
		out[symbol] = series
	}
	return out, nil
}

// Prune removes entries fetched before cutoff and returns how many were deleted.
func (c *Cache) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := c.db.ExecContext(ctx, `DELETE FROM price_cache WHERE fetched_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to prune price cache: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// Invalidate drops every cached series
func (c *Cache) Invalidate(ctx context.Context) error {
	if _, err := c.db.ExecContext(ctx, `DELETE FROM price_cache`); err != nil {
		return fmt.Errorf("failed to clear price cache: %w", err)
	}
	return nil
}

func (c *Cache) load(ctx context.Context, symbol, period string) (entry, bool, error) {
	var (
		payload   []byte
		fetchedAt int64
	)
	err := c.db.QueryRowContext(ctx, `SELECT payload, fetched_at FROM price_cache WHERE symbol = ? AND period = ?`,
		symbol, period).Scan(&payload, &fetchedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return entry{}, false, nil
	}
	if err != nil {
		return entry{}, false, err
	}

	series, err := decode(payload)
	if err != nil {
		return entry{}, false, fmt.Errorf("corrupt cache entry for %s: %w", symbol, err)
	}
	return entry{series: series, fetchedAt: time.Unix(fetchedAt, 0)}, true, nil
}

// store saves non-empty series; empty ones are retried on the next run.
func (c *Cache) store(ctx context.Context, period string, fetched map[string]domain.PriceSeries) error {
	fetchedAt := c.now().Unix()
	return database.WithTransaction(c.db, func(tx *sql.Tx) error {
		for symbol, series := range fetched {
			if len(series) == 0 {
				continue
			}
			payload, err := encode(series)
			if err != nil {
				return fmt.Errorf("failed to encode %s: %w", symbol, err)
			}
			_, err = tx.ExecContext(ctx, `INSERT OR REPLACE INTO price_cache (symbol, period, payload, fetched_at)
				VALUES (?, ?, ?, ?)`, symbol, period, payload, fetchedAt)
			if err != nil {
				return fmt.Errorf("failed to store %s: %w", symbol, err)
			}
		}
		return nil
	})
}

func encode(series domain.PriceSeries) ([]byte, error) {
	points := make([]point, len(series))
	for i, p := range series {
		points[i] = point{Date: p.Date.Unix(), Close: p.Close}
	}
	return msgpack.Marshal(points)
}

func decode(payload []byte) (domain.PriceSeries, error) {
	var points []point
	if err := msgpack.Unmarshal(payload, &points); err != nil {
		return nil, err
	}
	series := make(domain.PriceSeries, len(points))
	for i, p := range points {
		series[i] = domain.PricePoint{Date: time.Unix(p.Date, 0).UTC(), Close: p.Close}
	}
	return series, nil
}
