package metrics

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/aristath/riskdesk/internal/domain"
)

// priceMatrix is the inner join of several price series on calendar date.
// rows[t][j] is the close of symbols[j] on dates[t].
type priceMatrix struct {
	symbols []string
	dates   []time.Time
	rows    [][]float64
}

func (m *priceMatrix) len() int {
	return len(m.dates)
}

// column returns the prices of symbol j over all aligned dates
func (m *priceMatrix) column(j int) []float64 {
	col := make([]float64, len(m.rows))
	for t, row := range m.rows {
		col[t] = row[j]
	}
	return col
}

func dateKey(t time.Time) string {
	return t.Format(domain.DateLayout)
}

// validateSeries rejects closes that cannot be priced.
func validateSeries(symbol string, series domain.PriceSeries) error {
	for _, p := range series {
		if math.IsNaN(p.Close) || math.IsInf(p.Close, 0) || p.Close < 0 {
			return fmt.Errorf("%w: %s on %s: %v", ErrInvalidPrice, symbol, dateKey(p.Date), p.Close)
		}
	}
	return nil
}

// alignPrices keeps only the dates present for every symbol that has at least one
// price point. Symbols without any price are left out of the matrix.
func alignPrices(symbols []string, prices map[string]domain.PriceSeries) *priceMatrix {
	m := &priceMatrix{}

	byDate := make([]map[string]float64, 0, len(symbols))
	dateOf := make(map[string]time.Time)
	for _, symbol := range symbols {
		series := prices[symbol]
		if len(series) == 0 {
			continue
		}
		closes := make(map[string]float64, len(series))
		for _, p := range series {
			key := dateKey(p.Date)
			closes[key] = p.Close
			if _, ok := dateOf[key]; !ok {
				dateOf[key] = p.Date
			}
		}
		m.symbols = append(m.symbols, symbol)
		byDate = append(byDate, closes)
	}
	if len(m.symbols) == 0 {
		return m
	}

	keys := make([]string, 0, len(byDate[0]))
	for key := range byDate[0] {
		shared := true
		for _, closes := range byDate[1:] {
			if _, ok := closes[key]; !ok {
				shared = false
				break
			}
		}
		if shared {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	m.dates = make([]time.Time, len(keys))
	m.rows = make([][]float64, len(keys))
	for t, key := range keys {
		m.dates[t] = dateOf[key]
		row := make([]float64, len(m.symbols))
		for j, closes := range byDate {
			row[j] = closes[key]
		}
		m.rows[t] = row
	}
	return m
}
