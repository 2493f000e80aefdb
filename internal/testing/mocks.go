package testing

import (
	"context"
	"sync"

	"github.com/aristath/riskdesk/internal/domain"
)

// MockHoldingsStore is an in-memory domain.HoldingsStore
type MockHoldingsStore struct {
	mu       sync.RWMutex
	holdings []domain.Holding
	err      error
}

// NewMockHoldingsStore creates a store preloaded with holdings
func NewMockHoldingsStore(holdings ...domain.Holding) *MockHoldingsStore {
	return &MockHoldingsStore{holdings: append([]domain.Holding(nil), holdings...)}
}

// SetError makes every call fail with err
func (m *MockHoldingsStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// ListHoldings returns a copy of the stored holdings
func (m *MockHoldingsStore) ListHoldings(ctx context.Context) ([]domain.Holding, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.Holding{}, m.holdings...), nil
}

// AddHolding appends a holding and assigns it the next ID
func (m *MockHoldingsStore) AddHolding(ctx context.Context, h domain.Holding) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	h.ID = int64(len(m.holdings) + 1)
	m.holdings = append(m.holdings, h)
	return nil
}

// MockLimitsStore is an in-memory domain.RiskLimitsStore
type MockLimitsStore struct {
	mu     sync.RWMutex
	limits []domain.RiskLimit
	err    error
}

// NewMockLimitsStore creates a store preloaded with limits
func NewMockLimitsStore(limits ...domain.RiskLimit) *MockLimitsStore {
	return &MockLimitsStore{limits: append([]domain.RiskLimit(nil), limits...)}
}

// SetError makes every call fail with err
func (m *MockLimitsStore) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// GetLimits returns the configured limits in order
func (m *MockLimitsStore) GetLimits(ctx context.Context) ([]domain.RiskLimit, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]domain.RiskLimit{}, m.limits...), nil
}

// SetLimits replaces the whole limit set
func (m *MockLimitsStore) SetLimits(ctx context.Context, limits []domain.RiskLimit) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.limits = append([]domain.RiskLimit(nil), limits...)
	return nil
}

// MockPriceProvider serves canned series and records what was requested.
type MockPriceProvider struct {
	mu      sync.Mutex
	series  map[string]domain.PriceSeries
	err     error
	calls   int
	lastReq []string
}

// NewMockPriceProvider creates a provider backed by series
func NewMockPriceProvider(series map[string]domain.PriceSeries) *MockPriceProvider {
	return &MockPriceProvider{series: series}
}

// SetError makes Fetch fail with err
func (m *MockPriceProvider) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Fetch returns the canned series for each symbol; unknown symbols get an empty series.
func (m *MockPriceProvider) Fetch(ctx context.Context, symbols []string, period string) (map[string]domain.PriceSeries, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	m.lastReq = append([]string(nil), symbols...)
	if m.err != nil {
		return nil, m.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make(map[string]domain.PriceSeries, len(symbols))
	for _, s := range symbols {
		out[s] = append(domain.PriceSeries{}, m.series[s]...)
	}
	return out, nil
}

// Calls returns how many times Fetch ran
func (m *MockPriceProvider) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the symbols passed to the latest Fetch
func (m *MockPriceProvider) LastRequest() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastReq
}
