package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCSV(t *testing.T, dir, symbol string, closes ...float64) {
	t.Helper()
	var b strings.Builder
	b.WriteString("Date,Close\n")
	for i, c := range closes {
		fmt.Fprintf(&b, "2024-01-%02d,%g\n", i+1, c)
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, symbol+".csv"), []byte(b.String()), 0o644))
}

func testConfig(t *testing.T) string {
	t.Helper()
	dataDir := t.TempDir()
	writeCSV(t, dataDir, "SPY", 100, 110, 104.5, 106.59)
	writeCSV(t, dataDir, "KO", 10, 10, 10, 10, 13, 10, 10, 7, 10)
	writeCSV(t, dataDir, "PEP", 1, 1, 1, 1, 1, 1, 1, 1, 1)

	cfg := fmt.Sprintf(`
collector:
  default: csv
  csv:
    dir: %s
backtest:
  sma_fast: 2
  sma_slow: 3
  z_window: 3
  entry_threshold: 1
log:
  level: error
`, dataDir)
	path := filepath.Join(t.TempDir(), "quantlab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(cfg), 0o644))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "quantlab dev")
}

func TestBacktestCommand(t *testing.T) {
	cfg := testConfig(t)

	out, err := execute(t, "backtest", "buy_hold", "--symbol", "SPY", "--trades", "-c", cfg)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Strategy: buy_hold")
	assert.Contains(t, out, "2024-01-01 to 2024-01-04 (4 bars)")
	assert.Contains(t, out, "6.59%")
	assert.Contains(t, out, "(open)")
}

func TestBacktestCommand_Errors(t *testing.T) {
	cfg := testConfig(t)

	_, err := execute(t, "backtest", "martingale", "--symbol", "SPY", "-c", cfg)
	assert.Error(t, err)

	_, err = execute(t, "backtest", "buy_hold", "--symbol", "SPY", "--from", "Jan 1", "-c", cfg)
	assert.Error(t, err)

	_, err = execute(t, "backtest", "pairs", "--symbol", "KO", "--from", "", "-c", cfg)
	assert.Error(t, err, "pairs needs --pair")
}

func TestShowdownCommand(t *testing.T) {
	cfg := testConfig(t)

	out, err := execute(t, "showdown", "--symbol", "SPY", "-c", cfg)
	require.NoError(t, err, out)

	for _, name := range []string{"buy_hold", "sma_crossover", "rsi_extreme", "macd_cross", "bollinger"} {
		assert.Contains(t, out, name)
	}
	assert.NotContains(t, out, "pairs")
}

func TestExploreCommand(t *testing.T) {
	cfg := testConfig(t)

	out, err := execute(t, "explore", "SPY", "-c", cfg)
	require.NoError(t, err, out)

	assert.Contains(t, out, "=== SPY ===")
	assert.Contains(t, out, "106.59")
	assert.Contains(t, out, "2.09")
	assert.Contains(t, out, "6.59%")
}

func TestPairsCommand(t *testing.T) {
	cfg := testConfig(t)

	out, err := execute(t, "pairs", "--a", "KO", "--b", "PEP", "-c", cfg)
	require.NoError(t, err, out)

	assert.Contains(t, out, "Symbols:  KO / PEP")
	assert.Contains(t, out, "0.58")
	assert.Contains(t, out, "FLAT")
}
