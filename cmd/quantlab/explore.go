package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var exploreRange rangeFlags

var exploreCmd = &cobra.Command{
	Use:   "explore [symbol]",
	Short: "Summarize a symbol's price history",
	Args:  cobra.ExactArgs(1),
	RunE:  runExplore,
}

func init() {
	exploreRange.register(exploreCmd)
	rootCmd.AddCommand(exploreCmd)
}

func runExplore(cmd *cobra.Command, args []string) error {
	req, err := exploreRange.request(args[0], "")
	if err != nil {
		return err
	}

	a, log, err := newApp()
	if err != nil {
		return err
	}
	defer log.Sync()

	ex, err := a.Explore(cmd.Context(), req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "=== %s ===\n", ex.Symbol)
	t := newTable(out)
	fmt.Fprintf(t, "Period\t%s to %s (%d bars)\n",
		ex.Start.Format(time.DateOnly), ex.End.Format(time.DateOnly), ex.Points)
	fmt.Fprintf(t, "Last price\t%s\n", num(ex.LastPrice))
	fmt.Fprintf(t, "Daily change\t%s\n", num(ex.DailyChange))
	fmt.Fprintf(t, "Total return\t%s\n", pct(ex.TotalReturn))
	fmt.Fprintf(t, "Annualized volatility\t%s\n", pct(ex.AnnualizedVolatility))
	return t.Flush()
}
