package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/newthinker/quantlab/internal/strategy/builtin"
)

var (
	showdownSymbol string
	showdownRange  rangeFlags
)

var showdownCmd = &cobra.Command{
	Use:   "showdown",
	Short: "Compare every signal strategy against buy-and-hold",
	RunE:  runShowdown,
}

func init() {
	showdownCmd.Flags().StringVar(&showdownSymbol, "symbol", "", "Symbol to compare on (required)")
	showdownRange.register(showdownCmd)

	showdownCmd.MarkFlagRequired("symbol")

	rootCmd.AddCommand(showdownCmd)
}

func runShowdown(cmd *cobra.Command, args []string) error {
	req, err := showdownRange.request(showdownSymbol, "")
	if err != nil {
		return err
	}

	a, log, err := newApp()
	if err != nil {
		return err
	}
	defer log.Sync()

	names := append([]string{"buy_hold"}, builtin.SignalStrategies...)
	strats, err := a.Strategies().Lookup(names...)
	if err != nil {
		return err
	}

	results, err := a.Backtester().Compare(cmd.Context(), strats, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	first := results[0]
	fmt.Fprintf(out, "=== quantlab Showdown: %s ===\n", first.Symbol)
	fmt.Fprintf(out, "Period: %s to %s (%d bars)\n\n",
		first.StartDate.Format(time.DateOnly), first.EndDate.Format(time.DateOnly), len(first.Times))
	return printComparison(out, results)
}
