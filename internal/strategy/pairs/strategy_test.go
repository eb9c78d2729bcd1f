package pairs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/quantlab/internal/core"
	"github.com/newthinker/quantlab/internal/strategy"
)

func priceSeries(symbol string, prices ...float64) core.PriceSeries {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]core.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = core.PricePoint{Time: base.AddDate(0, 0, i), Price: p}
	}
	return core.PriceSeries{Symbol: symbol, Points: points}
}

func constant(n int, v float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestPairs_ImplementsStrategy(t *testing.T) {
	var _ strategy.Strategy = (*Pairs)(nil)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(1, 2)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = New(30, 0)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = New(30, -1)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	s, err := New(DefaultWindow, DefaultEntryThreshold)
	require.NoError(t, err)
	assert.Equal(t, "pairs", s.Name())
	assert.Equal(t, strategy.DataRequirements{PriceHistory: 30, Pair: true}, s.RequiredData())
}

func TestPairs_Analyze(t *testing.T) {
	s, err := New(3, 1.0)
	require.NoError(t, err)

	// B is constant so the ratio is A itself.
	// index 2,3: constant windows, z undefined -> flat
	// index 4: [10,10,13] z = 1.155 -> short spread
	// index 5: [10,13,10] z = -0.577 -> crossed zero, flat
	// index 7: [10,10,7] z = -1.155 -> long spread
	// index 8: [10,7,10] z = 0.577 -> flat
	a := []float64{10, 10, 10, 10, 13, 10, 10, 7, 10}
	ctx := strategy.AnalysisContext{
		Primary:   priceSeries("KO", a...),
		Secondary: priceSeries("PEP", constant(len(a), 1)...),
	}

	out, err := s.Analyze(ctx)
	require.NoError(t, err)

	want := []core.Direction{
		core.Flat, core.Flat, core.Flat, core.Flat,
		core.Short, core.Flat, core.Flat, core.Long, core.Flat,
	}
	assert.Equal(t, want, out.Exposure)

	assert.InDelta(t, 1.1547, out.Indicators["zscore"][4], 1e-4)
	assert.True(t, core.IsUndefined(out.Indicators["zscore"][3]))

	// Constant B contributes no return, so the spread return is A's return.
	assert.True(t, core.IsUndefined(out.PeriodReturns[0]))
	assert.InDelta(t, 0.3, out.PeriodReturns[4], 1e-12)
}

func TestPairs_MissingSecondary(t *testing.T) {
	s, _ := New(3, 1.0)
	_, err := s.Analyze(strategy.AnalysisContext{Primary: priceSeries("KO", 1, 2, 3)})
	assert.ErrorIs(t, err, core.ErrInvalidSeries)
}

func TestPairs_LengthMismatch(t *testing.T) {
	s, _ := New(3, 1.0)
	_, err := s.Analyze(strategy.AnalysisContext{
		Primary:   priceSeries("KO", 1, 2, 3),
		Secondary: priceSeries("PEP", 1, 2),
	})
	assert.ErrorIs(t, err, core.ErrInvalidParameter)
}
