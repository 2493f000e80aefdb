package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("RISKDESK_DATA_DIR", dir)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.DataDir)
	assert.Equal(t, filepath.Join(dir, "static"), cfg.StaticDir)
	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, 0.02, cfg.RiskFreeRate)
	assert.Equal(t, 252, cfg.TradingDaysPerYear)
	assert.Equal(t, "1y", cfg.PricePeriod)
	assert.Equal(t, 6*time.Hour, cfg.PriceCacheTTL)
	assert.Equal(t, 60*time.Second, cfg.AnalysisTimeout)
	assert.Equal(t, "0 30 22 * * MON-FRI", cfg.SnapshotSchedule)
	assert.False(t, cfg.Artifacts.Enabled())
	assert.Equal(t, filepath.Join(dir, "portfolio.db"), cfg.DatabasePath("portfolio"))
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("RISKDESK_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "9090")
	t.Setenv("RISK_FREE_RATE", "0.045")
	t.Setenv("TRADING_DAYS_PER_YEAR", "260")
	t.Setenv("PRICE_PERIOD", "6mo")
	t.Setenv("PRICE_CACHE_TTL", "0s")
	t.Setenv("ANALYSIS_TIMEOUT", "15s")
	t.Setenv("DEV_MODE", "true")
	t.Setenv("ARTIFACT_S3_BUCKET", "reports")
	t.Setenv("ARTIFACT_S3_ENDPOINT", "https://example.r2.cloudflarestorage.com")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 0.045, cfg.RiskFreeRate)
	assert.Equal(t, 260, cfg.TradingDaysPerYear)
	assert.Equal(t, "6mo", cfg.PricePeriod)
	assert.Equal(t, time.Duration(0), cfg.PriceCacheTTL)
	assert.Equal(t, 15*time.Second, cfg.AnalysisTimeout)
	assert.True(t, cfg.DevMode)
	assert.True(t, cfg.Artifacts.Enabled())
	assert.Equal(t, "riskdesk", cfg.Artifacts.Prefix)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("RISKDESK_DATA_DIR", t.TempDir())
	t.Setenv("PORT", "eighty")
	t.Setenv("ANALYSIS_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8001, cfg.Port)
	assert.Equal(t, 60*time.Second, cfg.AnalysisTimeout)
}

func TestLoad_InvalidTradingDays(t *testing.T) {
	t.Setenv("RISKDESK_DATA_DIR", t.TempDir())
	t.Setenv("TRADING_DAYS_PER_YEAR", "0")

	_, err := Load()

	assert.ErrorContains(t, err, "TRADING_DAYS_PER_YEAR")
}

func TestValidate(t *testing.T) {
	valid := Config{Port: 8001, TradingDaysPerYear: 252, AnalysisTimeout: time.Second, PricePeriod: "1y"}
	assert.NoError(t, valid.Validate())

	noTimeout := valid
	noTimeout.AnalysisTimeout = 0
	assert.Error(t, noTimeout.Validate())

	negativeTTL := valid
	negativeTTL.PriceCacheTTL = -time.Minute
	assert.Error(t, negativeTTL.Validate())

	badPort := valid
	badPort.Port = 70000
	assert.Error(t, badPort.Validate())
}
