package indicator

import (
	"math"

	"github.com/newthinker/quantlab/internal/core"
)

func undefinedSeries(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = core.Undefined()
	}
	return out
}

// Returns calculates simple period returns p[t]/p[t-1] - 1.
// The first entry is undefined, and so is any entry whose previous price is
// undefined or zero.
func Returns(prices []float64) []float64 {
	result := undefinedSeries(len(prices))
	for i := 1; i < len(prices); i++ {
		prev, curr := prices[i-1], prices[i]
		if core.IsUndefined(prev) || core.IsUndefined(curr) || prev == 0 {
			continue
		}
		result[i] = curr/prev - 1
	}
	return result
}

// Ratio divides a by b element-wise; a zero divisor yields undefined.
func Ratio(a, b []float64) ([]float64, error) {
	if len(a) != len(b) {
		return nil, core.InvalidParameter("len(b)", len(b), "must equal len(a)")
	}
	result := undefinedSeries(len(a))
	for i := range a {
		if b[i] == 0 || core.IsUndefined(a[i]) || core.IsUndefined(b[i]) {
			continue
		}
		result[i] = a[i] / b[i]
	}
	return result, nil
}

// RollingStd calculates the rolling sample standard deviation (n-1 denominator).
// Each window is evaluated with a two-pass, first-value-shifted sum so that a
// constant window yields exactly zero.
func RollingStd(values []float64, window int) ([]float64, error) {
	if window < 2 {
		return nil, core.InvalidParameter("window", window, "sample standard deviation needs >= 2")
	}

	result := undefinedSeries(len(values))
	for i := window - 1; i < len(values); i++ {
		w := values[i-window+1 : i+1]
		mean, ok := shiftedMean(w)
		if !ok {
			continue
		}
		var ss float64
		for _, v := range w {
			d := v - mean
			ss += d * d
		}
		result[i] = math.Sqrt(ss / float64(window-1))
	}

	return result, nil
}

// ZScore calculates (x - rollingMean) / rollingStd over a trailing window.
// A zero standard deviation leaves the entry undefined.
func ZScore(values []float64, window int) ([]float64, error) {
	std, err := RollingStd(values, window)
	if err != nil {
		return nil, err
	}

	result := undefinedSeries(len(values))
	for i := window - 1; i < len(values); i++ {
		if core.IsUndefined(std[i]) || std[i] == 0 {
			continue
		}
		mean, _ := shiftedMean(values[i-window+1 : i+1])
		result[i] = (values[i] - mean) / std[i]
	}

	return result, nil
}

func shiftedMean(w []float64) (float64, bool) {
	if len(w) == 0 || core.IsUndefined(w[0]) {
		return 0, false
	}
	base := w[0]
	var sum float64
	for _, v := range w {
		if core.IsUndefined(v) {
			return 0, false
		}
		sum += v - base
	}
	return base + sum/float64(len(w)), true
}
