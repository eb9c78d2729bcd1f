package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/newthinker/quantlab/internal/position"
	"github.com/newthinker/quantlab/internal/strategy/pairs"
)

var (
	pairsA         string
	pairsB         string
	pairsWindow    int
	pairsThreshold float64
	pairsRange     rangeFlags
)

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "Backtest a mean-reverting pair",
	Long: `Trade the z-score of the price ratio A/B: enter when it breaches the
threshold, exit when it crosses back through zero.`,
	RunE: runPairs,
}

func init() {
	pairsCmd.Flags().StringVar(&pairsA, "a", "", "first leg (required)")
	pairsCmd.Flags().StringVar(&pairsB, "b", "", "second leg (required)")
	pairsCmd.Flags().IntVar(&pairsWindow, "window", 0, "z-score window (default: config z_window)")
	pairsCmd.Flags().Float64Var(&pairsThreshold, "threshold", 0, "entry threshold (default: config entry_threshold)")
	pairsRange.register(pairsCmd)

	pairsCmd.MarkFlagRequired("a")
	pairsCmd.MarkFlagRequired("b")

	rootCmd.AddCommand(pairsCmd)
}

func runPairs(cmd *cobra.Command, args []string) error {
	req, err := pairsRange.request(pairsA, pairsB)
	if err != nil {
		return err
	}

	a, log, err := newApp()
	if err != nil {
		return err
	}
	defer log.Sync()

	bt := a.Config().Backtest
	window, threshold := bt.ZWindow, bt.EntryThreshold
	if pairsWindow != 0 {
		window = pairsWindow
	}
	if pairsThreshold != 0 {
		threshold = pairsThreshold
	}
	strat, err := pairs.New(window, threshold)
	if err != nil {
		return err
	}

	result, err := a.Backtester().Run(cmd.Context(), strat, req)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printHeader(out, "quantlab Pairs", result)

	t := newTable(out)
	if z := result.Indicators["zscore"]; len(z) > 0 {
		fmt.Fprintf(t, "Latest z-score\t%s\n", num(z[len(z)-1]))
	}
	if ratio := result.Indicators["ratio"]; len(ratio) > 0 {
		fmt.Fprintf(t, "Latest ratio\t%s\n", num(ratio[len(ratio)-1]))
	}
	state := position.Flat
	if n := len(result.Exposure); n > 0 {
		state = position.State(result.Exposure[n-1])
	}
	fmt.Fprintf(t, "Position\t%s\n", state)
	fmt.Fprintf(t, "Window / threshold\t%d / %s\n", window, num(threshold))
	if err := t.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(out)

	return printSummary(out, result.Summary)
}
