package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// family gathers the registry and returns the named metric family, or nil.
func family(t *testing.T, reg *Registry, name string) *dto.MetricFamily {
	t.Helper()
	mfs, err := reg.Gather()
	require.NoError(t, err)
	for _, mf := range mfs {
		if mf.GetName() == name {
			return mf
		}
	}
	return nil
}

func labelsOf(m *dto.Metric) map[string]string {
	out := make(map[string]string, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		out[l.GetName()] = l.GetValue()
	}
	return out
}

func TestRegistry_ImplementsGatherer(t *testing.T) {
	var _ prometheus.Gatherer = NewRegistry()
}

func TestRegistry_RuntimeMetrics(t *testing.T) {
	mfs, err := NewRegistry().Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, mfs, "go runtime metrics should be registered")
}

func TestRegistry_RecordRequest_StatusClasses(t *testing.T) {
	tests := []struct {
		status   int
		expected string
	}{
		{100, "1xx"},
		{200, "2xx"},
		{301, "3xx"},
		{404, "4xx"},
		{503, "5xx"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			reg := NewRegistry()
			reg.RecordRequest("POST", "/api/backtest", tt.status, 0.01)

			mf := family(t, reg, "http_requests_total")
			require.NotNil(t, mf)
			require.Len(t, mf.GetMetric(), 1)
			assert.Equal(t, tt.expected, labelsOf(mf.GetMetric()[0])["status"])
		})
	}
}

func TestRegistry_DurationHistogram(t *testing.T) {
	reg := NewRegistry()
	reg.RecordRequest("POST", "/api/pairs", 200, 0.123)

	mf := family(t, reg, "http_request_duration_seconds")
	require.NotNil(t, mf)
	hist := mf.GetMetric()[0].GetHistogram()
	assert.Equal(t, uint64(1), hist.GetSampleCount())
	assert.InDelta(t, 0.123, hist.GetSampleSum(), 1e-9)
}

func TestRegistry_InFlight(t *testing.T) {
	reg := NewRegistry()
	reg.InFlightInc()
	reg.InFlightInc()
	reg.InFlightDec()

	mf := family(t, reg, "http_requests_in_flight")
	require.NotNil(t, mf)
	assert.Equal(t, 1.0, mf.GetMetric()[0].GetGauge().GetValue())
}

func TestRegistry_RecordBacktest(t *testing.T) {
	reg := NewRegistry()
	reg.RecordBacktest("pairs", "ok", 500, 0.02)
	reg.RecordBacktest("pairs", "ok", 500, 0.03)
	reg.RecordBacktest("sma_crossover", "insufficient_data", 1, 0.001)

	mf := family(t, reg, "quantlab_backtests_total")
	require.NotNil(t, mf)

	counts := map[string]float64{}
	for _, m := range mf.GetMetric() {
		l := labelsOf(m)
		counts[l["strategy"]+"/"+l["status"]] = m.GetCounter().GetValue()
	}
	assert.Equal(t, 2.0, counts["pairs/ok"])
	assert.Equal(t, 1.0, counts["sma_crossover/insufficient_data"])

	points := family(t, reg, "quantlab_backtest_points")
	require.NotNil(t, points)
	assert.Equal(t, uint64(3), points.GetMetric()[0].GetHistogram().GetSampleCount())
}

func TestRegistry_RecordPriceFetch(t *testing.T) {
	reg := NewRegistry()
	reg.RecordPriceFetch("yahoo", nil)
	reg.RecordPriceFetch("yahoo", errors.New("timeout"))

	mf := family(t, reg, "quantlab_price_fetches_total")
	require.NotNil(t, mf)

	statuses := map[string]float64{}
	for _, m := range mf.GetMetric() {
		statuses[labelsOf(m)["status"]] = m.GetCounter().GetValue()
	}
	assert.Equal(t, map[string]float64{"ok": 1, "error": 1}, statuses)
}

func TestRegistry_RecordCacheLookup(t *testing.T) {
	reg := NewRegistry()
	reg.RecordCacheLookup(true)
	reg.RecordCacheLookup(false)
	reg.RecordCacheLookup(false)

	mf := family(t, reg, "quantlab_price_cache_lookups_total")
	require.NotNil(t, mf)

	results := map[string]float64{}
	for _, m := range mf.GetMetric() {
		results[labelsOf(m)["result"]] = m.GetCounter().GetValue()
	}
	assert.Equal(t, 1.0, results["hit"])
	assert.Equal(t, 2.0, results["miss"])
}
