package strategy

import (
	"github.com/newthinker/quantlab/internal/core"
)

// DataRequirements specifies what data a strategy needs
type DataRequirements struct {
	PriceHistory int  // bars needed before the first decision can be made
	Pair         bool // needs a second series aligned with the primary one
}

// AnalysisContext provides data to strategies
type AnalysisContext struct {
	Primary   core.PriceSeries
	Secondary core.PriceSeries // only set for pair strategies
}

// Output is what a strategy decides over a whole series. Every slice is
// aligned with the primary series.
type Output struct {
	// Exposure is the signal or position decided at the close of each bar.
	Exposure []core.Direction
	// PeriodReturns is the return series the exposure is applied to: the
	// asset's own return, or the spread return for pairs.
	PeriodReturns []float64
	Indicators    map[string][]float64
}

// Strategy turns price history into an exposure series. Implementations are
// stateless between calls so one instance can serve concurrent runs.
type Strategy interface {
	Name() string
	Description() string
	RequiredData() DataRequirements
	Analyze(ctx AnalysisContext) (*Output, error)
}
