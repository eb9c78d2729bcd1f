package indicator

import (
	"github.com/newthinker/quantlab/internal/core"
)

// Default MACD spans.
const (
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// MACDResult holds the MACD line, its signal line and their difference.
type MACDResult struct {
	Line      []float64
	Signal    []float64
	Histogram []float64
}

// ValidateMACDSpans checks fast < slow and that every span is positive.
func ValidateMACDSpans(fast, slow, signal int) error {
	if fast < 1 {
		return core.InvalidParameter("macd_fast", fast, "must be >= 1")
	}
	if slow <= fast {
		return core.InvalidParameter("macd_slow", slow, "must be greater than macd_fast")
	}
	if signal < 1 {
		return core.InvalidParameter("macd_signal", signal, "must be >= 1")
	}
	return nil
}

// MACD calculates EMA(fast) - EMA(slow) and its EMA(signal) smoothing.
func MACD(prices []float64, fast, slow, signal int) (MACDResult, error) {
	if err := ValidateMACDSpans(fast, slow, signal); err != nil {
		return MACDResult{}, err
	}

	fastEMA, _ := EMA(prices, fast)
	slowEMA, _ := EMA(prices, slow)

	line := undefinedSeries(len(prices))
	for i := range prices {
		if core.IsUndefined(fastEMA[i]) || core.IsUndefined(slowEMA[i]) {
			continue
		}
		line[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine, _ := EMA(line, signal)

	hist := undefinedSeries(len(prices))
	for i := range prices {
		if core.IsUndefined(line[i]) || core.IsUndefined(signalLine[i]) {
			continue
		}
		hist[i] = line[i] - signalLine[i]
	}

	return MACDResult{Line: line, Signal: signalLine, Histogram: hist}, nil
}
