package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/newthinker/quantlab/internal/app"
	"github.com/newthinker/quantlab/internal/backtest"
	"github.com/newthinker/quantlab/internal/config"
	"github.com/newthinker/quantlab/internal/logger"
)

var (
	cfgFile string
	debug   bool
	source  string
)

var rootCmd = &cobra.Command{
	Use:   "quantlab",
	Short: "quantlab - signal-driven backtesting",
	Long: `quantlab computes technical indicators, turns them into trading signals
and pairs positions, and backtests them against historical prices.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug mode")
	rootCmd.PersistentFlags().StringVar(&source, "source", "", "price source (yahoo, csv); overrides the config")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file, or the defaults when none is given,
// and applies the persistent flags.
func loadConfig() (*config.Config, error) {
	cfg := config.Defaults()
	if cfgFile != "" {
		var err error
		if cfg, err = config.Load(cfgFile); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}
	if debug {
		cfg.Log.Level = "debug"
		cfg.Log.Development = true
	}
	if source != "" {
		cfg.Collector.Default = source
	}
	return cfg, nil
}

// newApp builds the application from the persistent flags.
func newApp() (*app.App, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Development)
	if err != nil {
		return nil, nil, err
	}
	if cfgFile == "" {
		log.Debug("no config file specified, using defaults")
	}

	a, err := app.New(cfg, log)
	if err != nil {
		log.Sync()
		return nil, nil, fmt.Errorf("config validation failed: %w", err)
	}
	return a, log, nil
}

// rangeFlags are the data selection flags shared by the analysis commands.
type rangeFlags struct {
	from     string
	to       string
	interval string
}

func (f *rangeFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.from, "from", "", "start date YYYY-MM-DD (default: all history)")
	cmd.Flags().StringVar(&f.to, "to", "", "end date YYYY-MM-DD (default: latest)")
	cmd.Flags().StringVar(&f.interval, "interval", "1d", "bar interval (1d, 1wk, 1mo)")
}

func (f *rangeFlags) request(symbol, pairSymbol string) (backtest.Request, error) {
	req := backtest.Request{Symbol: symbol, PairSymbol: pairSymbol, Interval: f.interval}

	var err error
	if f.from != "" {
		if req.Start, err = time.Parse(time.DateOnly, f.from); err != nil {
			return req, fmt.Errorf("invalid from date format (expected YYYY-MM-DD): %w", err)
		}
	}
	if f.to != "" {
		if req.End, err = time.Parse(time.DateOnly, f.to); err != nil {
			return req, fmt.Errorf("invalid to date format (expected YYYY-MM-DD): %w", err)
		}
	}
	return req, req.Validate()
}
