package sectors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultTable(t *testing.T) {
	table := DefaultTable()

	assert.Equal(t, "Technology", table.SectorOf("AAPL"))
	assert.Equal(t, "Fixed Income", table.SectorOf("bnd"))
	assert.Equal(t, "Commodities", table.SectorOf(" GLD "))
	assert.Equal(t, Unknown, table.SectorOf("NVDA"))
	assert.Equal(t, 7, table.Len())
}

func TestNewTable(t *testing.T) {
	table := NewTable(map[string]string{"spy": "ETF"})

	assert.Equal(t, "ETF", table.SectorOf("SPY"))
	assert.Equal(t, Unknown, table.SectorOf("XYZ"))
}

func TestTable_EmptySectorUsesFallback(t *testing.T) {
	table := NewTable(map[string]string{"ABC": ""})

	assert.Equal(t, Unknown, table.SectorOf("ABC"))
}
