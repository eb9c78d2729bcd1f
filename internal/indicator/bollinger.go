package indicator

import (
	"github.com/newthinker/quantlab/internal/core"
)

// BollingerResult holds the bands aligned with the input prices.
type BollingerResult struct {
	Mid   []float64
	Std   []float64
	Upper []float64
	Lower []float64
}

// Bollinger calculates mid = SMA(window), upper/lower = mid ± k*std,
// where std is the rolling sample standard deviation. Mid and std share
// the same per-window mean, so a flat window puts all three bands on the price.
func Bollinger(prices []float64, window int, k float64) (BollingerResult, error) {
	if !(k > 0) {
		return BollingerResult{}, core.InvalidParameter("bb_num_std_dev", k, "must be > 0")
	}
	std, err := RollingStd(prices, window)
	if err != nil {
		return BollingerResult{}, err
	}
	mid, err := SMA(prices, window)
	if err != nil {
		return BollingerResult{}, err
	}

	upper := undefinedSeries(len(prices))
	lower := undefinedSeries(len(prices))
	for i := range prices {
		if core.IsUndefined(mid[i]) || core.IsUndefined(std[i]) {
			continue
		}
		upper[i] = mid[i] + k*std[i]
		lower[i] = mid[i] - k*std[i]
	}

	return BollingerResult{Mid: mid, Std: std, Upper: upper, Lower: lower}, nil
}
