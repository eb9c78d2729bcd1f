package rsi_extreme

import (
	"fmt"

	"github.com/newthinker/quantlab/internal/core"
	"github.com/newthinker/quantlab/internal/indicator"
	"github.com/newthinker/quantlab/internal/signal"
	"github.com/newthinker/quantlab/internal/strategy"
)

// RSIExtreme buys oversold and sells overbought readings of Wilder's RSI.
type RSIExtreme struct {
	period     int
	oversold   float64
	overbought float64
}

// New creates a new RSI strategy
func New(period int, oversold, overbought float64) (*RSIExtreme, error) {
	if period < 1 {
		return nil, core.InvalidParameter("rsi_period", period, "must be >= 1")
	}
	if err := signal.ValidateRSIThresholds(oversold, overbought); err != nil {
		return nil, err
	}
	return &RSIExtreme{period: period, oversold: oversold, overbought: overbought}, nil
}

func (r *RSIExtreme) Name() string {
	return "rsi_extreme"
}

func (r *RSIExtreme) Description() string {
	return fmt.Sprintf("RSI(%d) mean reversion, long < %.0f, short > %.0f", r.period, r.oversold, r.overbought)
}

func (r *RSIExtreme) RequiredData() strategy.DataRequirements {
	return strategy.DataRequirements{PriceHistory: r.period + 1}
}

func (r *RSIExtreme) Analyze(ctx strategy.AnalysisContext) (*strategy.Output, error) {
	prices := ctx.Primary.Prices()

	rsi, err := indicator.RSI(prices, r.period)
	if err != nil {
		return nil, err
	}
	exposure, err := signal.RSIExtreme(rsi, r.oversold, r.overbought)
	if err != nil {
		return nil, err
	}

	return &strategy.Output{
		Exposure:      exposure,
		PeriodReturns: indicator.Returns(prices),
		Indicators:    map[string][]float64{"rsi": rsi},
	}, nil
}
