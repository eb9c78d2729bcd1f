package app

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/quantlab/internal/backtest"
	"github.com/newthinker/quantlab/internal/config"
	"github.com/newthinker/quantlab/internal/core"
)

func writeCSV(t *testing.T, dir, symbol string, closes ...string) {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,Close\n")
	for i, c := range closes {
		b.WriteString("2024-01-0")
		b.WriteByte(byte('1' + i))
		b.WriteString("," + c + "\n")
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, symbol+".csv"), []byte(b.String()), 0o644))
}

func csvConfig(t *testing.T) (*config.Config, string) {
	t.Helper()
	dataDir := t.TempDir()
	cfg := config.Defaults()
	cfg.Collector.Default = "csv"
	cfg.Collector.CSV.Dir = dataDir
	cfg.Storage.Cache.Enabled = true
	cfg.Storage.Cache.Type = "localfs"
	cfg.Storage.Cache.Path = t.TempDir()
	return cfg, dataDir
}

func TestNew(t *testing.T) {
	cfg, _ := csvConfig(t)

	a, err := New(cfg, nil)
	require.NoError(t, err)

	assert.Equal(t, []string{"bollinger", "buy_hold", "macd_cross", "pairs", "rsi_extreme", "sma_crossover"},
		a.Strategies().Names())
	assert.Equal(t, []string{"csv", "yahoo"}, a.collectors.Names())
	assert.NotNil(t, a.Metrics())
	assert.Same(t, cfg, a.Config())
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.Defaults()
	cfg.Backtest.ZWindow = 1

	_, err := New(cfg, nil)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	cfg = config.Defaults()
	cfg.Collector.Default = "bloomberg"
	_, err = New(cfg, nil)
	assert.ErrorIs(t, err, core.ErrConfigInvalid)
}

func TestApp_BacktestReadsThroughCache(t *testing.T) {
	cfg, dataDir := csvConfig(t)
	writeCSV(t, dataDir, "SPY", "100", "110", "104.5", "106.59")

	a, err := New(cfg, nil)
	require.NoError(t, err)

	strats, err := a.Strategies().Lookup("buy_hold")
	require.NoError(t, err)

	result, err := a.Backtester().Run(context.Background(), strats[0], backtest.Request{Symbol: "SPY"})
	require.NoError(t, err)
	assert.InDelta(t, 0.0659, result.Summary.TotalReturn, 1e-9)

	cached := filepath.Join(cfg.Storage.Cache.Path, "history", "csv", "SPY", "1d", "open_latest.json")
	assert.FileExists(t, cached)

	// The second run is served from the cache even with the source gone.
	require.NoError(t, os.Remove(filepath.Join(dataDir, "SPY.csv")))
	again, err := a.Backtester().Run(context.Background(), strats[0], backtest.Request{Symbol: "SPY"})
	require.NoError(t, err)
	assert.Equal(t, result.Equity, again.Equity)

	n, err := a.PurgeCache(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.NoFileExists(t, cached)
}

func TestApp_Explore(t *testing.T) {
	cfg, dataDir := csvConfig(t)
	cfg.Storage.Cache.Enabled = false
	writeCSV(t, dataDir, "SPY", "100", "110", "104.5", "106.59")

	a, err := New(cfg, nil)
	require.NoError(t, err)

	ex, err := a.Explore(context.Background(), backtest.Request{Symbol: "SPY"})
	require.NoError(t, err)

	assert.Equal(t, "SPY", ex.Symbol)
	assert.Equal(t, 4, ex.Points)
	assert.Equal(t, 106.59, ex.LastPrice)
	assert.InDelta(t, 2.09, ex.DailyChange, 1e-9)
	assert.InDelta(t, 0.0659, ex.TotalReturn, 1e-9)
	assert.Greater(t, ex.AnnualizedVolatility, 0.0)
	assert.False(t, math.IsNaN(ex.AnnualizedVolatility))
}

func TestApp_Explore_Errors(t *testing.T) {
	cfg, dataDir := csvConfig(t)
	writeCSV(t, dataDir, "ONE", "100")

	a, err := New(cfg, nil)
	require.NoError(t, err)

	_, err = a.Explore(context.Background(), backtest.Request{Symbol: "ONE"})
	assert.ErrorIs(t, err, core.ErrInsufficientData)

	_, err = a.Explore(context.Background(), backtest.Request{Symbol: "MISSING"})
	assert.ErrorIs(t, err, core.ErrSymbolNotFound)
}
