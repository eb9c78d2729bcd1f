package macd_cross

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/newthinker/quantlab/internal/core"
	"github.com/newthinker/quantlab/internal/strategy"
)

func series(prices ...float64) strategy.AnalysisContext {
	base := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	points := make([]core.PricePoint, len(prices))
	for i, p := range prices {
		points[i] = core.PricePoint{Time: base.AddDate(0, 0, i), Price: p}
	}
	return strategy.AnalysisContext{Primary: core.PriceSeries{Symbol: "TEST", Points: points}}
}

func TestMACDCross_ImplementsStrategy(t *testing.T) {
	var _ strategy.Strategy = (*MACDCross)(nil)
}

func TestNew_Validation(t *testing.T) {
	_, err := New(26, 12, 9)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	_, err = New(12, 26, 0)
	assert.ErrorIs(t, err, core.ErrInvalidParameter)

	s, err := New(12, 26, 9)
	require.NoError(t, err)
	assert.Equal(t, "macd_cross", s.Name())
	assert.Equal(t, 26, s.RequiredData().PriceHistory)
}

func TestMACDCross_Trend(t *testing.T) {
	s, err := New(2, 4, 2)
	require.NoError(t, err)

	// Steady rise then steady fall.
	out, err := s.Analyze(series(10, 11, 12, 13, 14, 15, 14, 13, 12, 11, 10, 9))
	require.NoError(t, err)
	require.Len(t, out.Exposure, 12)

	// Line and signal both start at zero, which is not above.
	assert.Equal(t, core.Short, out.Exposure[0])
	assert.Equal(t, core.Long, out.Exposure[5], "uptrend should be long")
	assert.Equal(t, core.Short, out.Exposure[11], "downtrend should be short")

	for _, k := range []string{"macd", "macd_signal", "macd_hist"} {
		assert.Len(t, out.Indicators[k], 12, k)
	}
}
