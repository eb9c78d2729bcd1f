package indicator

import (
	"github.com/newthinker/quantlab/internal/core"
)

// RSI calculates the Relative Strength Index with Wilder smoothing
// (alpha = 1/period), seeded with the first price change.
//
// A bar with zero average loss saturates to 100 when the average gain is
// positive; when both averages are zero the value is undefined.
func RSI(prices []float64, period int) ([]float64, error) {
	if period < 1 {
		return nil, core.InvalidParameter("period", period, "must be >= 1")
	}

	gains := undefinedSeries(len(prices))
	losses := undefinedSeries(len(prices))
	for i := 1; i < len(prices); i++ {
		if core.IsUndefined(prices[i]) || core.IsUndefined(prices[i-1]) {
			continue
		}
		change := prices[i] - prices[i-1]
		gains[i] = max(change, 0)
		losses[i] = max(-change, 0)
	}

	alpha := 1.0 / float64(period)
	avgGain := smooth(gains, alpha)
	avgLoss := smooth(losses, alpha)

	result := undefinedSeries(len(prices))
	for i := range prices {
		g, l := avgGain[i], avgLoss[i]
		if core.IsUndefined(g) || core.IsUndefined(l) {
			continue
		}
		switch {
		case l == 0 && g > 0:
			result[i] = 100
		case l == 0:
			// flat market: no gains, no losses
		default:
			rs := g / l
			result[i] = 100 - 100/(1+rs)
		}
	}

	return result, nil
}
