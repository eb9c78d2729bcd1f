// Package signal maps indicator values to memoryless discrete signals.
//
// Every rule reads only the indicator values at bar t. Where any input at t is
// undefined the signal is Flat.
package signal

import (
	"math"

	"github.com/newthinker/quantlab/internal/core"
)

// Default RSI thresholds.
const (
	DefaultOversold   = 30.0
	DefaultOverbought = 70.0
)

func checkLengths(names []string, series ...[]float64) error {
	for i := 1; i < len(series); i++ {
		if len(series[i]) != len(series[0]) {
			return core.InvalidParameter("len("+names[i]+")", len(series[i]),
				"must equal len("+names[0]+")")
		}
	}
	return nil
}

func defined(vs ...float64) bool {
	for _, v := range vs {
		if core.IsUndefined(v) {
			return false
		}
	}
	return true
}

// SMACrossover is long while the fast average is above the slow one, flat
// otherwise. It never goes short.
func SMACrossover(fast, slow []float64) ([]core.Direction, error) {
	if err := checkLengths([]string{"fast", "slow"}, fast, slow); err != nil {
		return nil, err
	}
	out := make([]core.Direction, len(fast))
	for i := range fast {
		if defined(fast[i], slow[i]) && fast[i] > slow[i] {
			out[i] = core.Long
		}
	}
	return out, nil
}

// RSIExtreme is long below oversold, short above overbought, flat between.
func RSIExtreme(rsi []float64, oversold, overbought float64) ([]core.Direction, error) {
	if err := ValidateRSIThresholds(oversold, overbought); err != nil {
		return nil, err
	}

	out := make([]core.Direction, len(rsi))
	for i, v := range rsi {
		switch {
		case !defined(v):
		case v < oversold:
			out[i] = core.Long
		case v > overbought:
			out[i] = core.Short
		}
	}
	return out, nil
}

// ValidateRSIThresholds checks 0 < oversold < overbought < 100.
func ValidateRSIThresholds(oversold, overbought float64) error {
	if !(oversold > 0) || oversold >= 100 {
		return core.InvalidParameter("rsi_oversold", oversold, "must be in (0, 100)")
	}
	if !(overbought > oversold) || overbought >= 100 {
		return core.InvalidParameter("rsi_overbought", overbought, "must be in (rsi_oversold, 100)")
	}
	return nil
}

// MACDCross is long while the MACD line is above its signal line and short
// otherwise, so it is never flat once both lines are defined.
func MACDCross(line, signalLine []float64) ([]core.Direction, error) {
	if err := checkLengths([]string{"line", "signal"}, line, signalLine); err != nil {
		return nil, err
	}
	out := make([]core.Direction, len(line))
	for i := range line {
		if !defined(line[i], signalLine[i]) {
			continue
		}
		if line[i] > signalLine[i] {
			out[i] = core.Long
		} else {
			out[i] = core.Short
		}
	}
	return out, nil
}

// BollingerBreakout is long below the lower band and short above the upper
// band (mean reversion), flat inside the bands.
func BollingerBreakout(prices, lower, upper []float64) ([]core.Direction, error) {
	if err := checkLengths([]string{"prices", "lower", "upper"}, prices, lower, upper); err != nil {
		return nil, err
	}
	out := make([]core.Direction, len(prices))
	for i, p := range prices {
		switch {
		case !defined(p, lower[i], upper[i]):
		case p < lower[i]:
			out[i] = core.Long
		case p > upper[i]:
			out[i] = core.Short
		}
	}
	return out, nil
}

// Crossings returns the indices where line - signal changes sign relative to
// the previous defined bar. A zero difference counts as non-positive.
func Crossings(line, signalLine []float64) []int {
	var idx []int
	prev := math.NaN()
	for i := range line {
		if i >= len(signalLine) || !defined(line[i], signalLine[i]) {
			continue
		}
		above := 0.0
		if line[i] > signalLine[i] {
			above = 1
		}
		if !math.IsNaN(prev) && above != prev {
			idx = append(idx, i)
		}
		prev = above
	}
	return idx
}

// Changes returns the indices where a direction series differs from the
// previous bar.
func Changes(dirs []core.Direction) []int {
	var idx []int
	for i := 1; i < len(dirs); i++ {
		if dirs[i] != dirs[i-1] {
			idx = append(idx, i)
		}
	}
	return idx
}
