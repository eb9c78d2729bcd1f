// Package pairs trades the ratio of two co-moving assets back toward its
// rolling mean.
package pairs

import (
	"fmt"

	"github.com/newthinker/quantlab/internal/backtest"
	"github.com/newthinker/quantlab/internal/core"
	"github.com/newthinker/quantlab/internal/indicator"
	"github.com/newthinker/quantlab/internal/position"
	"github.com/newthinker/quantlab/internal/strategy"
)

// Default parameters.
const (
	DefaultWindow         = 30
	DefaultEntryThreshold = 2.0
)

// Pairs shorts the spread when the ratio z-score is stretched above the
// entry threshold, goes long below its negative, and exits when z crosses zero.
type Pairs struct {
	window         int
	entryThreshold float64
}

// New creates a new pairs strategy
func New(window int, entryThreshold float64) (*Pairs, error) {
	if window < 2 {
		return nil, core.InvalidParameter("z_window", window, "must be >= 2")
	}
	if err := position.ValidateThreshold(entryThreshold); err != nil {
		return nil, err
	}
	return &Pairs{window: window, entryThreshold: entryThreshold}, nil
}

func (p *Pairs) Name() string {
	return "pairs"
}

func (p *Pairs) Description() string {
	return fmt.Sprintf("Pairs ratio z-score(%d), entry at ±%.2f", p.window, p.entryThreshold)
}

func (p *Pairs) RequiredData() strategy.DataRequirements {
	return strategy.DataRequirements{
		PriceHistory: p.window,
		Pair:         true,
	}
}

// Analyze expects Primary and Secondary to be aligned on the same timestamps.
func (p *Pairs) Analyze(ctx strategy.AnalysisContext) (*strategy.Output, error) {
	if ctx.Secondary.Len() == 0 {
		return nil, core.WrapError(core.ErrInvalidSeries,
			fmt.Errorf("pairs strategy needs a second series alongside %q", ctx.Primary.Symbol))
	}
	if ctx.Secondary.Len() != ctx.Primary.Len() {
		return nil, core.InvalidParameter("len("+ctx.Secondary.Symbol+")", ctx.Secondary.Len(),
			"must equal len("+ctx.Primary.Symbol+")")
	}

	pricesA := ctx.Primary.Prices()
	pricesB := ctx.Secondary.Prices()

	ratio, err := indicator.Ratio(pricesA, pricesB)
	if err != nil {
		return nil, err
	}
	z, err := indicator.ZScore(ratio, p.window)
	if err != nil {
		return nil, err
	}
	states, err := position.Run(z, p.entryThreshold, position.Flat)
	if err != nil {
		return nil, err
	}
	spread, err := backtest.SpreadReturns(indicator.Returns(pricesA), indicator.Returns(pricesB))
	if err != nil {
		return nil, err
	}

	return &strategy.Output{
		Exposure:      position.Directions(states),
		PeriodReturns: spread,
		Indicators: map[string][]float64{
			"ratio":  ratio,
			"zscore": z,
		},
	}, nil
}
