package backtest

import (
	"fmt"
	"math"

	"github.com/newthinker/quantlab/internal/core"
)

// DefaultPeriodsPerYear is the number of daily bars in a trading year.
const DefaultPeriodsPerYear = 252

// TotalReturn is equity.last / equity.first - 1.
func TotalReturn(equity []float64) (float64, error) {
	if len(equity) < 2 {
		return 0, core.InsufficientData("equity curve", len(equity), 2)
	}
	first, last := equity[0], equity[len(equity)-1]
	if core.IsUndefined(first) || core.IsUndefined(last) || first == 0 {
		return 0, core.WrapError(core.ErrInsufficientData, fmt.Errorf("equity curve endpoints %v, %v", first, last))
	}
	return last/first - 1, nil
}

// AnnualizedVolatility is the sample standard deviation of the defined
// returns scaled by sqrt(periodsPerYear).
func AnnualizedVolatility(returns []float64, periodsPerYear int) (float64, error) {
	if periodsPerYear < 1 {
		return 0, core.InvalidParameter("periods_per_year", periodsPerYear, "must be >= 1")
	}
	std, err := sampleStdDev(definedValues(returns))
	if err != nil {
		return 0, err
	}
	return std * math.Sqrt(float64(periodsPerYear)), nil
}

// CurrentState labels the last exposure value.
func CurrentState(exposure []core.Direction) string {
	if len(exposure) == 0 {
		return core.Flat.String()
	}
	return exposure[len(exposure)-1].String()
}

// Summarize computes performance statistics for a result. Series shorter
// than two points produce StatusInsufficientData instead of NaN.
func Summarize(r *Result, periodsPerYear int) Summary {
	s := Summary{
		Status:       StatusInsufficientData,
		Points:       len(r.Equity),
		CurrentState: CurrentState(r.Exposure),
	}
	if n := len(r.Prices); n > 0 {
		s.LastPrice = r.Prices[n-1]
		if n > 1 {
			s.DailyChange = r.Prices[n-1] - r.Prices[n-2]
		}
	}

	total, err := TotalReturn(r.Equity)
	if err != nil {
		return s
	}
	s.Status = StatusOK
	s.TotalReturn = total
	s.MaxDrawdown = calculateMaxDrawdown(r.Equity)

	// a single defined return has no sample deviation; report zero risk
	if vol, err := AnnualizedVolatility(r.StrategyReturns, periodsPerYear); err == nil {
		s.AnnualizedVolatility = vol
	}
	s.SharpeRatio = calculateSharpeRatio(definedValues(r.StrategyReturns), periodsPerYear)

	var closed int
	for _, t := range r.Trades {
		if !t.IsClosed() {
			continue
		}
		closed++
		if t.IsWin() {
			s.WinningTrades++
		}
	}
	s.TotalTrades = len(r.Trades)
	if closed > 0 {
		s.WinRate = float64(s.WinningTrades) / float64(closed)
	}

	return s
}

// withoutPerformance keeps the descriptive fields and trade counts of s and
// clears the return and risk scalars.
func withoutPerformance(s Summary) Summary {
	return Summary{
		Status:        StatusInsufficientData,
		Points:        s.Points,
		CurrentState:  s.CurrentState,
		LastPrice:     s.LastPrice,
		DailyChange:   s.DailyChange,
		TotalTrades:   s.TotalTrades,
		WinningTrades: s.WinningTrades,
		WinRate:       s.WinRate,
	}
}

func definedValues(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !core.IsUndefined(v) {
			out = append(out, v)
		}
	}
	return out
}

func sampleStdDev(values []float64) (float64, error) {
	if len(values) < 2 {
		return 0, core.InsufficientData("returns", len(values), 2)
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))

	var variance float64
	for _, v := range values {
		variance += (v - mean) * (v - mean)
	}
	return math.Sqrt(variance / float64(len(values)-1)), nil
}

// calculateMaxDrawdown finds the largest peak-to-trough decline of the curve
func calculateMaxDrawdown(equity []float64) float64 {
	var maxDD float64
	var peak float64

	for _, v := range equity {
		if core.IsUndefined(v) {
			continue
		}
		if v > peak {
			peak = v
		}
		if peak > 0 {
			dd := (peak - v) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}
	}

	return maxDD
}

// calculateSharpeRatio computes risk-adjusted return
// Assumes risk-free rate of 0 for simplicity
func calculateSharpeRatio(returns []float64, periodsPerYear int) float64 {
	if periodsPerYear < 1 {
		return 0
	}
	stdDev, err := sampleStdDev(returns)
	if err != nil || stdDev == 0 {
		return 0
	}

	var sum float64
	for _, r := range returns {
		sum += r
	}
	mean := sum / float64(len(returns))

	annualizedReturn := mean * float64(periodsPerYear)
	annualizedStdDev := stdDev * math.Sqrt(float64(periodsPerYear))

	return annualizedReturn / annualizedStdDev
}
