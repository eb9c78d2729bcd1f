package indicator

import (
	"github.com/newthinker/quantlab/internal/core"
)

// SMA calculates Simple Moving Average
// Returns a slice aligned with prices; the first window-1 entries are undefined,
// as is any window that contains an undefined input.
// Each window is averaged on its own so a constant window yields exactly its value.
func SMA(prices []float64, window int) ([]float64, error) {
	if window < 1 {
		return nil, core.InvalidParameter("window", window, "must be >= 1")
	}

	result := undefinedSeries(len(prices))
	for i := window - 1; i < len(prices); i++ {
		if mean, ok := shiftedMean(prices[i-window+1 : i+1]); ok {
			result[i] = mean
		}
	}

	return result, nil
}

// EMA calculates Exponential Moving Average with alpha = 2/(span+1).
// The average is seeded with the first defined price (no bias adjustment),
// so it is defined from that index on.
func EMA(prices []float64, span int) ([]float64, error) {
	if span < 1 {
		return nil, core.InvalidParameter("span", span, "must be >= 1")
	}
	return smooth(prices, 2.0/float64(span+1)), nil
}

// smooth applies y[t] = y[t-1] + alpha*(x[t]-y[t-1]). An undefined input
// after seeding carries the previous average forward.
func smooth(values []float64, alpha float64) []float64 {
	result := undefinedSeries(len(values))

	var avg float64
	seeded := false
	for i, v := range values {
		switch {
		case core.IsUndefined(v):
			if !seeded {
				continue
			}
		case !seeded:
			avg = v
			seeded = true
		default:
			avg = (v-avg)*alpha + avg
		}
		result[i] = avg
	}

	return result
}
