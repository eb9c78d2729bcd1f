package bollinger

import (
	"fmt"

	"github.com/newthinker/quantlab/internal/core"
	"github.com/newthinker/quantlab/internal/indicator"
	"github.com/newthinker/quantlab/internal/signal"
	"github.com/newthinker/quantlab/internal/strategy"
)

// Breakout fades moves outside the Bollinger bands.
type Breakout struct {
	window int
	numStd float64
}

// New creates a new Bollinger band strategy
func New(window int, numStd float64) (*Breakout, error) {
	if window < 2 {
		return nil, core.InvalidParameter("bb_window", window, "must be >= 2")
	}
	if !(numStd > 0) {
		return nil, core.InvalidParameter("bb_num_std_dev", numStd, "must be > 0")
	}
	return &Breakout{window: window, numStd: numStd}, nil
}

func (b *Breakout) Name() string {
	return "bollinger"
}

func (b *Breakout) Description() string {
	return fmt.Sprintf("Bollinger(%d, %.1f) band reversion", b.window, b.numStd)
}

func (b *Breakout) RequiredData() strategy.DataRequirements {
	return strategy.DataRequirements{PriceHistory: b.window}
}

func (b *Breakout) Analyze(ctx strategy.AnalysisContext) (*strategy.Output, error) {
	prices := ctx.Primary.Prices()

	bands, err := indicator.Bollinger(prices, b.window, b.numStd)
	if err != nil {
		return nil, err
	}
	exposure, err := signal.BollingerBreakout(prices, bands.Lower, bands.Upper)
	if err != nil {
		return nil, err
	}

	return &strategy.Output{
		Exposure:      exposure,
		PeriodReturns: indicator.Returns(prices),
		Indicators: map[string][]float64{
			"bb_mid":   bands.Mid,
			"bb_upper": bands.Upper,
			"bb_lower": bands.Lower,
		},
	}, nil
}
