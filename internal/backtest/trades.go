package backtest

import (
	"time"

	"github.com/newthinker/quantlab/internal/core"
)

// Trades splits an exposure series into holding periods. A trade entered at
// bar t (exposure changes to non-flat) earns strategyReturns from t+1 until
// the bar where exposure changes again. A trade still held at the last bar is
// returned with Open set and valued at that bar.
func Trades(exposure []core.Direction, strategyReturns, prices []float64, times []time.Time) []Trade {
	var trades []Trade
	var openTrade *Trade
	growth := 1.0

	closeAt := func(i int, open bool) {
		openTrade.ExitIndex = i
		if i < len(times) {
			openTrade.ExitTime = times[i]
		}
		if i < len(prices) {
			openTrade.ExitPrice = prices[i]
		}
		openTrade.Return = growth - 1
		openTrade.Open = open
		trades = append(trades, *openTrade)
		openTrade = nil
	}

	for i, d := range exposure {
		if openTrade != nil {
			if i < len(strategyReturns) && !core.IsUndefined(strategyReturns[i]) {
				growth *= 1 + strategyReturns[i]
			}
			if d != openTrade.Direction {
				closeAt(i, false)
			}
		}

		if openTrade == nil && d != core.Flat {
			openTrade = &Trade{Direction: d, EntryIndex: i}
			if i < len(times) {
				openTrade.EntryTime = times[i]
			}
			if i < len(prices) {
				openTrade.EntryPrice = prices[i]
			}
			growth = 1.0
		}
	}

	// Append any open trade at end (position still held)
	if openTrade != nil {
		closeAt(len(exposure)-1, true)
	}

	return trades
}
