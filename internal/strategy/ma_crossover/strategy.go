package ma_crossover

import (
	"fmt"

	"github.com/newthinker/quantlab/internal/core"
	"github.com/newthinker/quantlab/internal/indicator"
	"github.com/newthinker/quantlab/internal/signal"
	"github.com/newthinker/quantlab/internal/strategy"
)

// MACrossover is long while the fast SMA is above the slow SMA and flat
// otherwise (trend following, never short).
type MACrossover struct {
	fastPeriod int
	slowPeriod int
}

// New creates a new MA Crossover strategy
func New(fastPeriod, slowPeriod int) (*MACrossover, error) {
	if fastPeriod < 1 {
		return nil, core.InvalidParameter("sma_fast", fastPeriod, "must be >= 1")
	}
	if slowPeriod <= fastPeriod {
		return nil, core.InvalidParameter("sma_slow", slowPeriod, "must be greater than sma_fast")
	}
	return &MACrossover{
		fastPeriod: fastPeriod,
		slowPeriod: slowPeriod,
	}, nil
}

func (m *MACrossover) Name() string {
	return "sma_crossover"
}

func (m *MACrossover) Description() string {
	return fmt.Sprintf("SMA Crossover (%d/%d)", m.fastPeriod, m.slowPeriod)
}

func (m *MACrossover) RequiredData() strategy.DataRequirements {
	return strategy.DataRequirements{
		PriceHistory: m.slowPeriod,
	}
}

func (m *MACrossover) Analyze(ctx strategy.AnalysisContext) (*strategy.Output, error) {
	prices := ctx.Primary.Prices()

	fastMA, err := indicator.SMA(prices, m.fastPeriod)
	if err != nil {
		return nil, err
	}
	slowMA, err := indicator.SMA(prices, m.slowPeriod)
	if err != nil {
		return nil, err
	}

	exposure, err := signal.SMACrossover(fastMA, slowMA)
	if err != nil {
		return nil, err
	}

	return &strategy.Output{
		Exposure:      exposure,
		PeriodReturns: indicator.Returns(prices),
		Indicators: map[string][]float64{
			"sma_fast": fastMA,
			"sma_slow": slowMA,
		},
	}, nil
}
