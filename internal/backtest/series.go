package backtest

import (
	"github.com/newthinker/quantlab/internal/core"
)

// Lag shifts an exposure series forward by one period so that a decision
// taken at the close of bar t is realized over bar t+1. The first value is Flat.
func Lag(exposure []core.Direction) []core.Direction {
	out := make([]core.Direction, len(exposure))
	if len(exposure) > 1 {
		copy(out[1:], exposure[:len(exposure)-1])
	}
	return out
}

// StrategyReturns realizes periodReturns[t] with the exposure fixed at t-1.
// An undefined period return stays undefined.
func StrategyReturns(exposure []core.Direction, periodReturns []float64) ([]float64, error) {
	if len(exposure) != len(periodReturns) {
		return nil, core.InvalidParameter("len(period_returns)", len(periodReturns),
			"must equal len(exposure)")
	}

	lagged := Lag(exposure)
	out := make([]float64, len(periodReturns))
	for i, r := range periodReturns {
		if core.IsUndefined(r) {
			out[i] = core.Undefined()
			continue
		}
		out[i] = float64(lagged[i]) * r
	}
	return out, nil
}

// SpreadReturns is returnA - returnB, the payoff of one unit long the spread.
func SpreadReturns(returnsA, returnsB []float64) ([]float64, error) {
	if len(returnsA) != len(returnsB) {
		return nil, core.InvalidParameter("len(returns_b)", len(returnsB),
			"must equal len(returns_a)")
	}

	out := make([]float64, len(returnsA))
	for i := range returnsA {
		if core.IsUndefined(returnsA[i]) || core.IsUndefined(returnsB[i]) {
			out[i] = core.Undefined()
			continue
		}
		out[i] = returnsA[i] - returnsB[i]
	}
	return out, nil
}

// EquityCurve compounds returns into the growth of one unit of capital,
// aligned with returns: curve[t] = prod(1 + r[k]) for k <= t, where undefined
// terms contribute a factor of 1. Strategy returns always have a neutral first
// term (lagged exposure is Flat), so the curve starts at 1.
func EquityCurve(returns []float64) []float64 {
	out := make([]float64, len(returns))
	equity := 1.0
	for i, r := range returns {
		if !core.IsUndefined(r) {
			equity *= 1 + r
		}
		out[i] = equity
	}
	return out
}
