package macd_cross

import (
	"fmt"

	"github.com/newthinker/quantlab/internal/indicator"
	"github.com/newthinker/quantlab/internal/signal"
	"github.com/newthinker/quantlab/internal/strategy"
)

// MACDCross is long while the MACD line is above its signal line and short
// while it is below.
type MACDCross struct {
	fast   int
	slow   int
	signal int
}

// New creates a new MACD strategy
func New(fast, slow, signalSpan int) (*MACDCross, error) {
	if err := indicator.ValidateMACDSpans(fast, slow, signalSpan); err != nil {
		return nil, err
	}
	return &MACDCross{fast: fast, slow: slow, signal: signalSpan}, nil
}

func (m *MACDCross) Name() string {
	return "macd_cross"
}

func (m *MACDCross) Description() string {
	return fmt.Sprintf("MACD(%d,%d,%d) signal line cross", m.fast, m.slow, m.signal)
}

// RequiredData asks for the slow span so the EMAs have settled on something.
func (m *MACDCross) RequiredData() strategy.DataRequirements {
	return strategy.DataRequirements{PriceHistory: m.slow}
}

func (m *MACDCross) Analyze(ctx strategy.AnalysisContext) (*strategy.Output, error) {
	prices := ctx.Primary.Prices()

	macd, err := indicator.MACD(prices, m.fast, m.slow, m.signal)
	if err != nil {
		return nil, err
	}
	exposure, err := signal.MACDCross(macd.Line, macd.Signal)
	if err != nil {
		return nil, err
	}

	return &strategy.Output{
		Exposure:      exposure,
		PeriodReturns: indicator.Returns(prices),
		Indicators: map[string][]float64{
			"macd":        macd.Line,
			"macd_signal": macd.Signal,
			"macd_hist":   macd.Histogram,
		},
	}, nil
}
