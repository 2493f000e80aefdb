package testing

import (
	"time"

	"github.com/aristath/riskdesk/internal/domain"
)

// FixtureStart is the first date of every generated price series
var FixtureStart = time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

// NewHoldingFixtures returns a small diversified portfolio
func NewHoldingFixtures() []domain.Holding {
	return []domain.Holding{
		{Symbol: "AAPL", Quantity: 10, PurchasePrice: 150, PurchaseDate: FixtureStart, AssetClass: "Equity"},
		{Symbol: "SPY", Quantity: 20, PurchasePrice: 400, PurchaseDate: FixtureStart, AssetClass: "ETF"},
		{Symbol: "BND", Quantity: 15, PurchasePrice: 80, PurchaseDate: FixtureStart, AssetClass: "Bond ETF"},
	}
}

// NewPriceFixtures returns three weeks of daily closes for NewHoldingFixtures.
func NewPriceFixtures() map[string]domain.PriceSeries {
	return map[string]domain.PriceSeries{
		"AAPL": SeriesFromCloses(FixtureStart, 150, 152, 149, 155, 158, 154, 160, 162, 159, 165, 168, 166, 170, 172, 169),
		"SPY":  SeriesFromCloses(FixtureStart, 400, 402, 399, 404, 406, 405, 408, 410, 407, 412, 414, 413, 416, 418, 415),
		"BND":  SeriesFromCloses(FixtureStart, 80, 80.1, 80.3, 80.2, 80, 79.8, 79.9, 80.1, 80.2, 80.4, 80.3, 80.5, 80.4, 80.6, 80.7),
	}
}

// SeriesFromCloses builds a daily series starting at start
func SeriesFromCloses(start time.Time, closes ...float64) domain.PriceSeries {
	series := make(domain.PriceSeries, len(closes))
	for i, c := range closes {
		series[i] = domain.PricePoint{Date: start.AddDate(0, 0, i), Close: c}
	}
	return series
}

// FlatSeries returns n days at a constant close.
func FlatSeries(start time.Time, n int, close float64) domain.PriceSeries {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = close
	}
	return SeriesFromCloses(start, closes...)
}
