package buy_hold

import (
	"github.com/newthinker/quantlab/internal/core"
	"github.com/newthinker/quantlab/internal/indicator"
	"github.com/newthinker/quantlab/internal/strategy"
)

// BuyHold is long from the first bar to the last. It is the benchmark the
// other strategies are compared against.
type BuyHold struct{}

// New creates a new buy and hold strategy
func New() *BuyHold {
	return &BuyHold{}
}

func (b *BuyHold) Name() string {
	return "buy_hold"
}

func (b *BuyHold) Description() string {
	return "Buy & Hold"
}

func (b *BuyHold) RequiredData() strategy.DataRequirements {
	return strategy.DataRequirements{PriceHistory: 2}
}

func (b *BuyHold) Analyze(ctx strategy.AnalysisContext) (*strategy.Output, error) {
	prices := ctx.Primary.Prices()

	exposure := make([]core.Direction, len(prices))
	for i := range exposure {
		exposure[i] = core.Long
	}

	return &strategy.Output{
		Exposure:      exposure,
		PeriodReturns: indicator.Returns(prices),
	}, nil
}
