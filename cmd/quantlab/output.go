package main

import (
	"fmt"
	"io"
	"math"
	"text/tabwriter"
	"time"

	"github.com/newthinker/quantlab/internal/backtest"
	"github.com/newthinker/quantlab/internal/core"
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func pct(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f%%", v*100)
}

func num(v float64) string {
	if core.IsUndefined(v) || math.IsInf(v, 0) {
		return "n/a"
	}
	return fmt.Sprintf("%.2f", v)
}

func printHeader(w io.Writer, title string, r *backtest.Result) {
	fmt.Fprintf(w, "=== %s ===\n", title)
	fmt.Fprintf(w, "Strategy: %s\n", r.Strategy)
	if r.PairSymbol != "" {
		fmt.Fprintf(w, "Symbols:  %s / %s\n", r.Symbol, r.PairSymbol)
	} else {
		fmt.Fprintf(w, "Symbol:   %s\n", r.Symbol)
	}
	fmt.Fprintf(w, "Period:   %s to %s (%d bars)\n",
		r.StartDate.Format(time.DateOnly), r.EndDate.Format(time.DateOnly), len(r.Times))
	fmt.Fprintln(w)
}

func printSummary(w io.Writer, s backtest.Summary) error {
	if s.Status == backtest.StatusInsufficientData {
		fmt.Fprintln(w, "Not enough history for performance statistics.")
	}

	t := newTable(w)
	fmt.Fprintf(t, "Current state\t%s\n", s.CurrentState)
	fmt.Fprintf(t, "Last price\t%s\n", num(s.LastPrice))
	fmt.Fprintf(t, "Daily change\t%s\n", num(s.DailyChange))
	if s.Status == backtest.StatusOK {
		fmt.Fprintf(t, "Total return\t%s\n", pct(s.TotalReturn))
		fmt.Fprintf(t, "Annualized volatility\t%s\n", pct(s.AnnualizedVolatility))
		fmt.Fprintf(t, "Sharpe ratio\t%s\n", num(s.SharpeRatio))
		fmt.Fprintf(t, "Max drawdown\t%s\n", pct(s.MaxDrawdown))
		fmt.Fprintf(t, "Trades\t%d (%d winning, %s win rate)\n", s.TotalTrades, s.WinningTrades, pct(s.WinRate))
	}
	return t.Flush()
}

func printTrades(w io.Writer, trades []backtest.Trade) error {
	if len(trades) == 0 {
		fmt.Fprintln(w, "No trades.")
		return nil
	}
	t := newTable(w)
	fmt.Fprintln(t, "DIRECTION\tENTRY\tEXIT\tENTRY PRICE\tEXIT PRICE\tRETURN\t")
	for _, tr := range trades {
		exit := tr.ExitTime.Format(time.DateOnly)
		if tr.Open {
			exit += " (open)"
		}
		fmt.Fprintf(t, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			tr.Direction, tr.EntryTime.Format(time.DateOnly), exit,
			num(tr.EntryPrice), num(tr.ExitPrice), pct(tr.Return))
	}
	return t.Flush()
}

func printComparison(w io.Writer, results []*backtest.Result) error {
	t := newTable(w)
	fmt.Fprintln(t, "STRATEGY\tSTATE\tTOTAL RETURN\tVOLATILITY\tSHARPE\tMAX DRAWDOWN\tTRADES\t")
	for _, r := range results {
		s := r.Summary
		if s.Status != backtest.StatusOK {
			fmt.Fprintf(t, "%s\t%s\tn/a\tn/a\tn/a\tn/a\t%d\t\n", r.Strategy, s.CurrentState, s.TotalTrades)
			continue
		}
		fmt.Fprintf(t, "%s\t%s\t%s\t%s\t%s\t%s\t%d\t\n",
			r.Strategy, s.CurrentState, pct(s.TotalReturn), pct(s.AnnualizedVolatility),
			num(s.SharpeRatio), pct(s.MaxDrawdown), s.TotalTrades)
	}
	return t.Flush()
}
