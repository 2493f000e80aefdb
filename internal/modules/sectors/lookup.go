// Package sectors provides symbol to sector reference data.
package sectors

import "strings"

// Unknown is reported for symbols missing from the table.
const Unknown = "Unknown"

// Table is an injectable symbol -> sector lookup.
type Table struct {
	sectors  map[string]string
	fallback string
}

// NewTable builds a lookup from the given mapping. Symbols are matched case-insensitively.
func NewTable(mapping map[string]string) *Table {
	t := &Table{
		sectors:  make(map[string]string, len(mapping)),
		fallback: Unknown,
	}
	for symbol, sector := range mapping {
		t.sectors[normalize(symbol)] = sector
	}
	return t
}

// DefaultTable returns the reference mapping for the sample portfolio.
func DefaultTable() *Table {
	return NewTable(map[string]string{
		"AAPL":  "Technology",
		"MSFT":  "Technology",
		"GOOGL": "Technology",
		"TSLA":  "Technology",
		"SPY":   "Broad Market ETF",
		"BND":   "Fixed Income",
		"GLD":   "Commodities",
	})
}

// SectorOf returns the sector for symbol, or the fallback when unknown.
func (t *Table) SectorOf(symbol string) string {
	if sector, ok := t.sectors[normalize(symbol)]; ok && sector != "" {
		return sector
	}
	return t.fallback
}

// Len returns the number of mapped symbols
func (t *Table) Len() int {
	return len(t.sectors)
}

func normalize(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
