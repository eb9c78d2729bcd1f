package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	backtestSymbol string
	backtestPair   string
	backtestTrades bool
	backtestRange  rangeFlags
)

var backtestCmd = &cobra.Command{
	Use:   "backtest [strategy]",
	Short: "Run backtest on a strategy",
	Long: `Run a strategy against historical data and show performance statistics.

Strategies: buy_hold, sma_crossover, rsi_extreme, macd_cross, bollinger, pairs.
The pairs strategy needs --pair.`,
	Args: cobra.ExactArgs(1),
	RunE: runBacktest,
}

func init() {
	backtestCmd.Flags().StringVar(&backtestSymbol, "symbol", "", "Symbol to backtest (required)")
	backtestCmd.Flags().StringVar(&backtestPair, "pair", "", "Second symbol for pair strategies")
	backtestCmd.Flags().BoolVar(&backtestTrades, "trades", false, "List individual trades")
	backtestRange.register(backtestCmd)

	backtestCmd.MarkFlagRequired("symbol")

	rootCmd.AddCommand(backtestCmd)
}

func runBacktest(cmd *cobra.Command, args []string) error {
	req, err := backtestRange.request(backtestSymbol, backtestPair)
	if err != nil {
		return err
	}

	a, log, err := newApp()
	if err != nil {
		return err
	}
	defer log.Sync()

	strats, err := a.Strategies().Lookup(args[0])
	if err != nil {
		return err
	}

	result, err := a.Backtester().Run(cmd.Context(), strats[0], req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, "quantlab Backtest", result)
	if err := printSummary(out, result.Summary); err != nil {
		return err
	}
	if backtestTrades {
		fmt.Fprintln(out)
		return printTrades(out, result.Trades)
	}
	return nil
}
