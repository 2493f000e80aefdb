package portfolio

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aristath/riskdesk/internal/domain"
	testingpkg "github.com/aristath/riskdesk/internal/testing"
)

func newHoldingRepo(t *testing.T) *HoldingRepository {
	return NewHoldingRepository(testingpkg.NewMemoryDB(t, "portfolio"), zerolog.Nop())
}

func TestHoldingRepository_AddAndList(t *testing.T) {
	repo := newHoldingRepo(t)
	ctx := context.Background()
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	require.NoError(t, repo.AddHolding(ctx, domain.Holding{
		Symbol: " aapl ", Quantity: 10, PurchasePrice: 150, PurchaseDate: date, AssetClass: "Equity",
	}))
	require.NoError(t, repo.AddHolding(ctx, domain.Holding{
		Symbol: "BND", Quantity: 15, PurchasePrice: 80, PurchaseDate: date, AssetClass: "Bond ETF",
	}))

	holdings, err := repo.ListHoldings(ctx)
	require.NoError(t, err)
	require.Len(t, holdings, 2)

	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.Equal(t, 10.0, holdings[0].Quantity)
	assert.Equal(t, 150.0, holdings[0].PurchasePrice)
	assert.True(t, holdings[0].PurchaseDate.Equal(date))
	assert.Equal(t, "Equity", holdings[0].AssetClass)
	assert.NotZero(t, holdings[0].ID)
	assert.Equal(t, "BND", holdings[1].Symbol)
}

func TestHoldingRepository_ListEmpty(t *testing.T) {
	holdings, err := newHoldingRepo(t).ListHoldings(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, holdings)
	assert.Empty(t, holdings)
}

func TestHoldingRepository_RejectsInvalid(t *testing.T) {
	repo := newHoldingRepo(t)
	date := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		holding domain.Holding
	}{
		{"blank symbol", domain.Holding{Symbol: "  ", Quantity: 1, PurchasePrice: 1, PurchaseDate: date}},
		{"negative price", domain.Holding{Symbol: "A", Quantity: 1, PurchasePrice: -1, PurchaseDate: date}},
		{"nan quantity", domain.Holding{Symbol: "A", Quantity: math.NaN(), PurchasePrice: 1, PurchaseDate: date}},
		{"missing date", domain.Holding{Symbol: "A", Quantity: 1, PurchasePrice: 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.AddHolding(context.Background(), tt.holding)
			assert.True(t, errors.Is(err, ErrInvalidHolding))
		})
	}

	n, err := repo.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestHoldingRepository_ShortPositionAllowed(t *testing.T) {
	repo := newHoldingRepo(t)

	err := repo.AddHolding(context.Background(), domain.Holding{
		Symbol: "TSLA", Quantity: -3, PurchasePrice: 200, PurchaseDate: time.Now(),
	})

	assert.NoError(t, err)
}

func TestHoldingRepository_ReplaceAll(t *testing.T) {
	repo := newHoldingRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.AddHolding(ctx, domain.Holding{Symbol: "OLD", Quantity: 1, PurchasePrice: 1, PurchaseDate: time.Now()}))

	require.NoError(t, repo.ReplaceAll(ctx, SampleHoldings()))

	holdings, err := repo.ListHoldings(ctx)
	require.NoError(t, err)
	require.Len(t, holdings, 7)
	assert.Equal(t, "AAPL", holdings[0].Symbol)
	assert.Equal(t, "GLD", holdings[6].Symbol)
}

func TestHoldingRepository_ReplaceAllKeepsOldSetOnInvalidInput(t *testing.T) {
	repo := newHoldingRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.AddHolding(ctx, domain.Holding{Symbol: "KEEP", Quantity: 1, PurchasePrice: 1, PurchaseDate: time.Now()}))

	err := repo.ReplaceAll(ctx, []domain.Holding{{Symbol: "", Quantity: 1}})
	assert.True(t, errors.Is(err, ErrInvalidHolding))

	holdings, err := repo.ListHoldings(ctx)
	require.NoError(t, err)
	require.Len(t, holdings, 1)
	assert.Equal(t, "KEEP", holdings[0].Symbol)
}
